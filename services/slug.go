package services

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// reservedSlugs are /livro path segments owned by other public pages.
var reservedSlugs = map[string]bool{
	"calendario": true,
	"evento":     true,
}

// IsReservedSlug reports whether slug would shadow a fixed public page.
func IsReservedSlug(slug string) bool {
	return reservedSlugs[slug]
}

// Slugify lowercases name, strips diacritics, collapses every run of other
// characters into one hyphen and trims hyphens at both ends.
//
//	"São José Jr." -> "sao-jose-jr"
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(name))
	if err != nil {
		folded = strings.ToLower(name)
	}
	return strings.Trim(nonAlnumRun.ReplaceAllString(folded, "-"), "-")
}
