package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// The dotless ı carries no combining mark, so NFD stripping alone would
// leave it (and its uppercase forms) behind.
var turkishReplacer = strings.NewReplacer(
	"ı", "i", "İ", "i",
	"ğ", "g", "Ğ", "g",
	"ş", "s", "Ş", "s",
	"ç", "c", "Ç", "c",
	"ö", "o", "Ö", "o",
	"ü", "u", "Ü", "u",
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and strips Turkish characters and other diacritics,
// producing the canonical form used for header and name matching.
func Fold(s string) string {
	s = turkishReplacer.Replace(s)
	if out, _, err := transform.String(diacriticStripper, s); err == nil {
		s = out
	}
	return strings.ToLower(s)
}

// NormalizeName folds a human-entered name and collapses all runs of
// whitespace to a single space.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(Fold(s)), " ")
}
