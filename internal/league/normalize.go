package league

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases, strips diacritics and collapses whitespace so
// provider spellings of a franchise or division name compare equal.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(strings.ToLower(b.String())), " ")
}

// ResolveFranchise accepts a franchise id or a display name and returns
// the canonical id.
func (l *League) ResolveFranchise(ref string) (string, bool) {
	if _, ok := l.Standings[ref]; ok {
		return ref, true
	}
	want := Normalize(ref)
	if want == "" {
		return "", false
	}
	for _, id := range l.FranchiseIDs() {
		if Normalize(id) == want || Normalize(l.Names[id]) == want {
			return id, true
		}
	}
	return "", false
}
