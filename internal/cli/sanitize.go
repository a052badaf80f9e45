package cli

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// sanitizer turns backend-supplied text into something safe to print on a
// terminal. Markup is stripped, entities are decoded and control characters
// are dropped so a job description cannot move the cursor or recolour the
// screen.
type sanitizer struct {
	policy *bluemonday.Policy
}

func newSanitizer() *sanitizer {
	return &sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text sanitizes a single-line value.
func (s *sanitizer) Text(raw string) string {
	if raw == "" {
		return ""
	}
	clean := html.UnescapeString(s.policy.Sanitize(raw))
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			if r == '\n' || r == '\t' {
				return ' '
			}
			return -1
		}
		return r
	}, strings.TrimSpace(clean))
}

// Block sanitizes a multi-line value, keeping line breaks.
func (s *sanitizer) Block(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		out = append(out, s.Text(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
