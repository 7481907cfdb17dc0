package usecases

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// DefaultColor is used for any language missing from the palette.
const DefaultColor = "#6c757d"

var languageColors = map[string]string{
	"python":     "#3776ab",
	"javascript": "#f7df1e",
	"typescript": "#3178c6",
	"html":       "#e34c26",
	"css":        "#264de4",
	"django":     "#092e20",
	"sql":        "#336791",
	"java":       "#007396",
	"php":        "#777bb4",
	"kotlin":     "#7f52ff",
	"markdown":   "#083fa1",
}

// ColorFor maps a language identifier to its marker color. The mapping is
// total: unknown or empty identifiers get DefaultColor.
func ColorFor(language string) string {
	if c, ok := languageColors[strings.TrimSpace(language)]; ok {
		return c
	}
	return DefaultColor
}

// KnownLanguages returns the palette's language identifiers in sorted order.
func KnownLanguages() []string {
	langs := lo.Keys(languageColors)
	slices.Sort(langs)
	return langs
}
