package usecases

import (
	"cmp"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/samirrijal/snippetmap/internal/core/domain"
)

// Legend placeholders.
const (
	NoDataText       = "No data"
	LoadingErrorText = "Error loading"
)

// BuildLegend groups records by language and counts them, most frequent
// first. Records without a language are counted as "unknown".
func BuildLegend(records []domain.PointRecord) domain.Legend {
	if len(records) == 0 {
		return domain.Legend{Placeholder: NoDataText}
	}

	counts := lo.CountValuesBy(records, func(r domain.PointRecord) string {
		return legendKey(r.Language)
	})
	rows := lo.MapToSlice(counts, func(lang string, n int) domain.LegendRow {
		return domain.LegendRow{Language: lang, Color: ColorFor(lang), Count: n}
	})
	slices.SortFunc(rows, func(a, b domain.LegendRow) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Language, b.Language)
	})
	return domain.Legend{Rows: rows}
}

func legendKey(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "unknown"
	}
	return lang
}
