// Package textfold reduces free-text labels and unit strings to lookup keys.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key trims s, collapses inner whitespace, strips accents, maps sub- and
// superscript digits to ASCII and lower-cases the result.
// "  Dióxido   de Carbono " and "CO₂" become "dioxido de carbono" and "co2".
func Key(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}

// Compact is Key with all whitespace removed. Used for units: "mg / l" equals "mg/L".
func Compact(s string) string {
	return strings.ReplaceAll(Key(s), " ", "")
}
