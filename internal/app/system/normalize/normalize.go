// Package normalize canonicalizes user-supplied strings before they are
// stored or compared.
package normalize

import (
	"strings"
	"unicode"
)

// Email trims surrounding whitespace and lowercases.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses internal runs of whitespace. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role trims a requested role. Roles are free text chosen by the requester,
// so only whitespace is touched.
func Role(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Phone keeps digits and a single leading '+'.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Kind lowercases and trims a target kind such as "Project".
func Kind(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
