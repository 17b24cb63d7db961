package validation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// markupPolicy strips every element. Script, style and similar elements are
// dropped together with their content.
var markupPolicy = bluemonday.StrictPolicy()

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeText removes script elements and all HTML markup, then trims.
// Entities are decoded so stored text is plain, not HTML-escaped. Decoding
// can reveal markup ("&lt;b&gt;"), so stripping repeats until the text stops
// changing; the result is a fixed point and NormalizeText is idempotent.
// Every changing pass consumes an entity or a tag, which bounds the loop by
// the input length.
func NormalizeText(s string) string {
	out := s
	for range len(s) + 1 {
		next := html.UnescapeString(markupPolicy.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

// NormalizePhone keeps digits, a leading '+', hyphens, parentheses and spaces.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '-', r == '(', r == ')', r == ' ':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
