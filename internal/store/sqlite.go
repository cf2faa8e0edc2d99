package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/namecrawler/internal/model"
)

// Load reads both reference tables from the SQLite file at path and builds a snapshot.
// Only the per-year schema is accepted; the aggregated one lacks the year rows
// the age and popularity estimators need.
func Load(ctx context.Context, path string) (*Snapshot, error) {
	start := time.Now()

	if _, err := os.Stat(path); err != nil {
		return nil, &model.DataIntegrityError{Source: path, Err: fmt.Errorf("open reference database: %w", err)}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &model.DataIntegrityError{Source: path, Err: err}
	}
	defer db.Close()

	if err := checkSchema(ctx, db, path); err != nil {
		return nil, err
	}

	first, err := readFirstNames(ctx, db, path)
	if err != nil {
		return nil, err
	}

	surnames, err := readSurnames(ctx, db, path)
	if err != nil {
		return nil, err
	}

	snap, err := Build(path, first, surnames)
	if err != nil {
		return nil, err
	}

	stats := snap.Stats()
	slog.Debug("reference store loaded",
		"path", path,
		"first_rows", stats.FirstRows,
		"first_names", stats.FirstNames,
		"surnames", stats.Surnames,
		"elapsed", time.Since(start))

	return snap, nil
}

func columns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     sql.NullString
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}

func checkSchema(ctx context.Context, db *sql.DB, path string) error {
	required := map[string][]string{
		"first":    {"first", "sex", "occurences", "year"},
		"surnames": {"name", "rank", "count", "pctwhite", "pctblack", "pctapi", "pctaian", "pct2prace", "pcthispanic"},
	}

	for _, table := range []string{"first", "surnames"} {
		cols, err := columns(ctx, db, table)
		if err != nil {
			return &model.DataIntegrityError{Source: path, Table: table, Err: err}
		}
		if len(cols) == 0 {
			return &model.DataIntegrityError{Source: path, Table: table, Err: errors.New("table missing")}
		}
		if table == "first" && cols["peak_year"] {
			return &model.DataIntegrityError{Source: path, Table: table, Err: errors.New("aggregated schema has no per-year rows")}
		}
		for _, col := range required[table] {
			if !cols[col] {
				return &model.DataIntegrityError{Source: path, Table: table, Err: fmt.Errorf("column %q missing", col)}
			}
		}
	}
	return nil
}

func readFirstNames(ctx context.Context, db *sql.DB, path string) ([]model.NameRecord, error) {
	rows, err := db.QueryContext(ctx, "SELECT first, sex, occurences, year FROM first")
	if err != nil {
		return nil, &model.DataIntegrityError{Source: path, Table: "first", Err: err}
	}
	defer rows.Close()

	var records []model.NameRecord
	for rows.Next() {
		var name, sex, count, year sql.NullString
		if err := rows.Scan(&name, &sex, &count, &year); err != nil {
			return nil, &model.DataIntegrityError{Source: path, Table: "first", Err: err}
		}

		rowID := fmt.Sprintf("%s/%s/%s", name.String, sex.String, year.String)
		c, err := parseInt(count)
		if err != nil {
			return nil, &model.DataIntegrityError{Source: path, Table: "first", Row: rowID, Err: err}
		}
		y, err := parseInt(year)
		if err != nil {
			return nil, &model.DataIntegrityError{Source: path, Table: "first", Row: rowID, Err: err}
		}

		records = append(records, model.NameRecord{
			Name:  strings.TrimSpace(name.String),
			Sex:   model.Sex(strings.ToUpper(strings.TrimSpace(sex.String))),
			Year:  int(y),
			Count: c,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &model.DataIntegrityError{Source: path, Table: "first", Err: err}
	}
	return records, nil
}

func readSurnames(ctx context.Context, db *sql.DB, path string) ([]model.SurnameRecord, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT name, rank, count, pctwhite, pctblack, pctapi, pctaian, pct2prace, pcthispanic FROM surnames")
	if err != nil {
		return nil, &model.DataIntegrityError{Source: path, Table: "surnames", Err: err}
	}
	defer rows.Close()

	var records []model.SurnameRecord
	for rows.Next() {
		var name, rank, count sql.NullString
		var pct [6]sql.NullString
		if err := rows.Scan(&name, &rank, &count, &pct[0], &pct[1], &pct[2], &pct[3], &pct[4], &pct[5]); err != nil {
			return nil, &model.DataIntegrityError{Source: path, Table: "surnames", Err: err}
		}

		r, err := parseInt(rank)
		if err != nil {
			return nil, &model.DataIntegrityError{Source: path, Table: "surnames", Row: name.String, Err: err}
		}
		c, err := parseInt(count)
		if err != nil {
			return nil, &model.DataIntegrityError{Source: path, Table: "surnames", Row: name.String, Err: err}
		}

		var p [6]float64
		for i := range pct {
			v, err := parsePercentage(pct[i])
			if err != nil {
				return nil, &model.DataIntegrityError{Source: path, Table: "surnames", Row: name.String, Err: err}
			}
			p[i] = v
		}

		records = append(records, model.SurnameRecord{
			Name:         strings.TrimSpace(name.String),
			Rank:         int(r),
			Count:        c,
			PctWhite:     p[0],
			PctBlack:     p[1],
			PctAPI:       p[2],
			PctAIAN:      p[3],
			PctTwoOrMore: p[4],
			PctHispanic:  p[5],
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &model.DataIntegrityError{Source: path, Table: "surnames", Err: err}
	}
	return records, nil
}

// parseInt accepts integer and legacy text columns, including "1234.0"
func parseInt(v sql.NullString) (int64, error) {
	if !v.Valid {
		return 0, errors.New("unexpected NULL")
	}
	s := strings.TrimSpace(v.String)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid integer %q", v.String)
	}
	return int64(f), nil
}

// parsePercentage maps Census suppression markers to 0
func parsePercentage(v sql.NullString) (float64, error) {
	if !v.Valid {
		return 0, nil
	}
	s := strings.TrimSpace(v.String)
	if s == "" || s == "(S)" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q", v.String)
	}
	return f, nil
}
