package evals

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns a bare stage or category identifier into a human
// readable label. Platform responses sometimes omit the display name and
// ship only the key ("call_opening", "issue-resolution"); separators become
// spaces and words are title cased.
func DisplayName(identifier string) string {
	if identifier == "" {
		return "Unknown Stage"
	}
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range identifier {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	label := strings.TrimSpace(cleaned.String())
	if label == "" {
		return "Unknown Stage"
	}
	return cases.Title(language.Und).String(label)
}
