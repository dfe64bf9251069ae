package markdown

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	combining  = runes.Remove(runes.Predicate(func(r rune) bool { return r >= 0x0300 && r <= 0x036f }))
	rControl   = regexp.MustCompile(`[\x{0000}-\x{001f}]`)
	rSpecial   = regexp.MustCompile(`[\s~` + "`" + `!@#$%^&*()\-_+=\[\]{}|\\;:"'“”‘’–—<>,.?/]+`)
	rDashes    = regexp.MustCompile(`-{2,}`)
	rEdgeDash  = regexp.MustCompile(`^-+|-+$`)
	rLeadDigit = regexp.MustCompile(`^(\d)`)
)

// Slugify builds the anchor id the host theme assigns to a heading:
// compatibility decomposition, accents dropped, punctuation runs collapsed to
// "-", a leading digit prefixed with "_", lower case.
func Slugify(s string) string {
	decomposed, _, err := transform.String(transform.Chain(norm.NFKD, combining), s)
	if err != nil {
		decomposed = s
	}
	out := rControl.ReplaceAllString(decomposed, "")
	out = rSpecial.ReplaceAllString(out, "-")
	out = rDashes.ReplaceAllString(out, "-")
	out = rEdgeDash.ReplaceAllString(out, "")
	out = rLeadDigit.ReplaceAllString(out, "_$1")
	return strings.ToLower(out)
}
