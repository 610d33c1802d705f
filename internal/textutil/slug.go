package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugReplacer = strings.NewReplacer(
	" ", "_",
	",", "",
	"'", "",
	"’", "",
)

// TeamSlug converts a team name into the token used in part file names:
// spaces become underscores, commas and apostrophes are dropped, accents
// are folded, and the result is lowercased ("Grim's Reapers" -> "grims_reapers").
func TeamSlug(name string) string {
	folded := FoldDiacritics(strings.TrimSpace(name))
	return strings.ToLower(slugReplacer.Replace(folded))
}

// FoldDiacritics strips combining marks ("Café" -> "Cafe").
func FoldDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// TitleCase renders a label such as a bracket round name in title case.
func TitleCase(value string) string {
	return cases.Title(language.English).String(strings.TrimSpace(value))
}
