// Package htmlsanitize cleans user-authored text before it is stored.
//
// Descriptions allow a small set of formatting tags (bluemonday UGC policy).
// Short fields such as join-request messages and roles allow no markup at all.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richOnce   sync.Once
	richPolicy *bluemonday.Policy

	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

func rich() *bluemonday.Policy {
	richOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.RequireNoFollowOnLinks(true)
		richPolicy = p
	})
	return richPolicy
}

func strict() *bluemonday.Policy {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// Sanitize keeps safe formatting markup and removes scripts, event
// handlers, iframes and javascript: links.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(rich().Sanitize(s))
}

// StripTags removes all markup and returns plain text. The entities the
// strict policy emits are decoded again, so "R&D" stays "R&D".
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict().Sanitize(s)))
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
