// Package storetest provides a small synthetic reference data set for tests.
//
// Years run from FirstYear to LastYear. James has the largest total (so its
// first-name weight is 1.0) and the rarest surname sits at rank MaxRank.
package storetest

import (
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/namecrawler/internal/model"
	"github.com/ppiankov/namecrawler/internal/store"
)

const (
	FirstYear = 1920
	LastYear  = 2023
	MaxRank   = 1000
)

type series struct {
	name  string
	sex   model.Sex
	from  int
	count func(year int) int64
}

func constant(n int64) func(int) int64 {
	return func(int) int64 { return n }
}

func peaked(peakYear int, peak, slope, floor int64) func(int) int64 {
	return func(year int) int64 {
		d := int64(year - peakYear)
		if d < 0 {
			d = -d
		}
		if v := peak - slope*d; v > floor {
			return v
		}
		return floor
	}
}

var fixture = []series{
	{"James", model.SexMale, FirstYear, constant(80000)},
	{"John", model.SexMale, FirstYear, constant(70000)},
	{"Michael", model.SexMale, 1940, constant(60000)},
	{"Mary", model.SexFemale, FirstYear, constant(50000)},
	{"Sarah", model.SexFemale, FirstYear, constant(30000)},
	{"Mildred", model.SexFemale, FirstYear, peaked(FirstYear, 20000, 400, 5)},
	{"Paul", model.SexMale, FirstYear, peaked(1950, 40000, 1000, 1000)},
	{"Emma", model.SexFemale, FirstYear, peaked(2008, 20050, 1000, 50)},
	{"Liam", model.SexMale, 1970, func(y int) int64 { return 100 + 400*int64(y-1970) }},
	{"Jessica", model.SexFemale, 1970, func(y int) int64 {
		switch {
		case y < 1980:
			return 10000
		case y < 2000:
			return 30000
		default:
			return 3000
		}
	}},
	{"Taylor", model.SexFemale, 1980, constant(3000)},
	{"Taylor", model.SexMale, 1980, constant(2500)},
	{"Alex", model.SexMale, FirstYear, constant(2000)},
	{"Alex", model.SexFemale, FirstYear, constant(200)},
	{"Jordan", model.SexMale, 1990, constant(1500)},
	{"Jordan", model.SexFemale, 1990, constant(1500)},
	{"Carlos", model.SexMale, 1950, constant(5000)},
	{"May", model.SexFemale, FirstYear, constant(500)},
}

// FirstNames returns the per-year first-name rows
func FirstNames() []model.NameRecord {
	var rows []model.NameRecord
	for _, s := range fixture {
		for y := s.from; y <= LastYear; y++ {
			rows = append(rows, model.NameRecord{Name: s.name, Sex: s.sex, Year: y, Count: s.count(y)})
		}
	}
	return rows
}

// Surnames returns the surname rows
func Surnames() []model.SurnameRecord {
	return []model.SurnameRecord{
		{Name: "SMITH", Rank: 1, Count: 2442977, PctWhite: 73.35, PctBlack: 22.22, PctAPI: 0.40, PctAIAN: 0.85, PctTwoOrMore: 1.63, PctHispanic: 1.56},
		{Name: "JOHNSON", Rank: 2, Count: 1932812, PctWhite: 61.55, PctBlack: 33.80, PctAPI: 0.42, PctAIAN: 0.91, PctTwoOrMore: 1.82, PctHispanic: 1.50},
		{Name: "WILLIAMS", Rank: 3, Count: 1625252, PctWhite: 48.52, PctBlack: 46.72, PctAPI: 0.37, PctAIAN: 0.78, PctTwoOrMore: 2.01, PctHispanic: 1.60},
		{Name: "BROWN", Rank: 4, Count: 1437026, PctWhite: 60.71, PctBlack: 34.54, PctAPI: 0.41, PctAIAN: 0.83, PctTwoOrMore: 1.86, PctHispanic: 1.64},
		{Name: "JONES", Rank: 5, Count: 1425470, PctWhite: 57.69, PctBlack: 37.73, PctAPI: 0.35, PctAIAN: 0.94, PctTwoOrMore: 1.85, PctHispanic: 1.44},
		{Name: "GARCIA", Rank: 8, Count: 1166120, PctWhite: 5.38, PctBlack: 0.45, PctAPI: 1.41, PctAIAN: 0.47, PctTwoOrMore: 0.26, PctHispanic: 92.03},
		{Name: "TAYLOR", Rank: 10, Count: 751209, PctWhite: 65.38, PctBlack: 28.42, PctAPI: 0.48, PctAIAN: 0.80, PctTwoOrMore: 2.48, PctHispanic: 2.44},
		{Name: "JAMES", Rank: 20, Count: 467251, PctWhite: 45.06, PctBlack: 47.69, PctAPI: 0.73, PctAIAN: 0.93, PctTwoOrMore: 2.79, PctHispanic: 2.80},
		{Name: "WASHINGTON", Rank: 138, Count: 177386, PctWhite: 5.18, PctBlack: 89.87, PctAPI: 0.19, PctAIAN: 0.47, PctTwoOrMore: 1.99, PctHispanic: 2.30},
		{Name: "ZUNIGA", Rank: MaxRank, Count: 54000, PctWhite: 1.42, PctBlack: 0.10, PctAPI: 0.35, PctAIAN: 0, PctTwoOrMore: 0.13, PctHispanic: 98.00},
	}
}

// Snapshot builds the fixture snapshot
func Snapshot(t testing.TB) *store.Snapshot {
	t.Helper()
	snap, err := store.Build("storetest", FirstNames(), Surnames())
	if err != nil {
		t.Fatalf("build fixture snapshot: %v", err)
	}
	return snap
}

// WriteSQLite writes rows into a new database at path using the legacy
// text-typed schema, with suppressed zero percentages written as "(S)".
func WriteSQLite(t testing.TB, path string, first []model.NameRecord, surnames []model.SurnameRecord) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE first (first TEXT, sex TEXT, occurences INTEGER, year TEXT)`,
		`CREATE TABLE surnames (name TEXT, rank TEXT, count TEXT, prop100k TEXT, cum_prop100k TEXT,
			pctwhite TEXT, pctblack TEXT, pctapi TEXT, pctaian TEXT, pct2prace TEXT, pcthispanic TEXT)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	insFirst, err := tx.Prepare(`INSERT INTO first (first, sex, occurences, year) VALUES (?, ?, ?, ?)`)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	for _, r := range first {
		if _, err := insFirst.Exec(r.Name, string(r.Sex), r.Count, fmt.Sprint(r.Year)); err != nil {
			t.Fatalf("insert first %s: %v", r.Name, err)
		}
	}
	insFirst.Close()

	pct := func(v float64) string {
		if v == 0 {
			return "(S)"
		}
		return fmt.Sprintf("%.2f", v)
	}

	insSurname, err := tx.Prepare(`INSERT INTO surnames VALUES (?, ?, ?, '', '', ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	for _, r := range surnames {
		_, err := insSurname.Exec(r.Name, fmt.Sprint(r.Rank), fmt.Sprint(r.Count),
			pct(r.PctWhite), pct(r.PctBlack), pct(r.PctAPI), pct(r.PctAIAN), pct(r.PctTwoOrMore), pct(r.PctHispanic))
		if err != nil {
			t.Fatalf("insert surname %s: %v", r.Name, err)
		}
	}
	insSurname.Close()

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}
