package usecases_test

import (
	"testing"

	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/usecases"
)

func TestBuildLegend_CountsAndOrder(t *testing.T) {
	records := []domain.PointRecord{
		rec("1", "python", 0, 0),
		rec("2", "python", 0, 0),
		rec("3", "unknown-lang", 0, 0),
	}

	l := usecases.BuildLegend(records)

	if len(l.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(l.Rows))
	}
	want := []domain.LegendRow{
		{Language: "python", Color: "#3776ab", Count: 2},
		{Language: "unknown-lang", Color: "#6c757d", Count: 1},
	}
	for i, row := range want {
		if l.Rows[i] != row {
			t.Errorf("row %d = %+v, want %+v", i, l.Rows[i], row)
		}
	}
	if l.Sum() != len(records) {
		t.Errorf("expected sum %d, got %d", len(records), l.Sum())
	}
}

func TestBuildLegend_MissingLanguageCounted(t *testing.T) {
	records := []domain.PointRecord{rec("1", "", 0, 0), rec("2", "css", 0, 0), rec("3", "  ", 0, 0)}

	l := usecases.BuildLegend(records)

	if l.Sum() != 3 {
		t.Fatalf("expected every record counted, got %d", l.Sum())
	}
	if l.Rows[0].Language != "unknown" || l.Rows[0].Count != 2 {
		t.Errorf("expected unknown first with 2, got %+v", l.Rows[0])
	}
}

func TestBuildLegend_TiesSortedByName(t *testing.T) {
	records := []domain.PointRecord{rec("1", "sql", 0, 0), rec("2", "css", 0, 0), rec("3", "java", 0, 0)}

	l := usecases.BuildLegend(records)

	got := []string{l.Rows[0].Language, l.Rows[1].Language, l.Rows[2].Language}
	want := []string{"css", "java", "sql"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestBuildLegend_Empty(t *testing.T) {
	l := usecases.BuildLegend(nil)
	if len(l.Rows) != 0 || l.Placeholder != usecases.NoDataText {
		t.Errorf("expected No data placeholder, got %+v", l)
	}
}
