package validate

import (
	"strings"
	"testing"

	"github.com/ppiankov/namecrawler/internal/model"
)

func smith() model.SurnameRecord {
	return model.SurnameRecord{
		Name: "SMITH", Rank: 1, Count: 2376206,
		PctWhite: 73.35, PctBlack: 22.22, PctAPI: 0.40,
		PctAIAN: 0.85, PctTwoOrMore: 1.63, PctHispanic: 1.56,
	}
}

func TestNameRecord_Valid(t *testing.T) {
	r := model.NameRecord{Name: "John", Sex: model.SexMale, Year: 1950, Count: 79000}
	if err := NameRecord(r); err != nil {
		t.Errorf("expected valid record, got %v", err)
	}
}

func TestNameRecord_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		record model.NameRecord
		want   string
	}{
		{"empty name", model.NameRecord{Name: " ", Sex: model.SexMale, Year: 1950}, "empty"},
		{"digits only", model.NameRecord{Name: "1234", Sex: model.SexMale, Year: 1950}, "no letters"},
		{"bad sex", model.NameRecord{Name: "John", Sex: "X", Year: 1950}, "sex"},
		{"bad year", model.NameRecord{Name: "John", Sex: model.SexMale, Year: 12}, "year"},
		{"negative count", model.NameRecord{Name: "John", Sex: model.SexMale, Year: 1950, Count: -1}, "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NameRecord(tt.record)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestSurnameRecord_Valid(t *testing.T) {
	if err := SurnameRecord(smith()); err != nil {
		t.Errorf("expected valid record, got %v", err)
	}

	// Suppressed cells load as zero and may leave the sum under 100
	r := smith()
	r.PctAIAN = 0
	r.PctAPI = 0
	if err := SurnameRecord(r); err != nil {
		t.Errorf("expected suppressed cells to be accepted, got %v", err)
	}
}

func TestSurnameRecord_Invalid(t *testing.T) {
	zeroRank := smith()
	zeroRank.Rank = 0

	overflow := smith()
	overflow.PctBlack = 60

	negative := smith()
	negative.PctHispanic = -2

	tests := []struct {
		name   string
		record model.SurnameRecord
		want   string
	}{
		{"zero rank", zeroRank, "rank"},
		{"sum over 100", overflow, "sum"},
		{"negative percentage", negative, "outside"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SurnameRecord(tt.record)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	bad := smith()
	bad.Rank = -4

	first := []model.NameRecord{
		{Name: "John", Sex: model.SexMale, Year: 1950, Count: 10},
		{Name: "", Sex: model.SexMale, Year: 1950, Count: 10},
	}

	issues := NewValidator(0).Validate(first, []model.SurnameRecord{smith(), bad})
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %v", len(issues), issues)
	}
	if issues[0].Table != "first" || issues[1].Table != "surnames" {
		t.Errorf("unexpected issue tables: %v", issues)
	}

	limited := NewValidator(1).Validate(first, []model.SurnameRecord{bad})
	if len(limited) != 1 {
		t.Errorf("expected collection to stop after 1 issue, got %d", len(limited))
	}
}
