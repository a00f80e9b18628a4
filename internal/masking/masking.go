// Package masking protects non-translatable spans across a round trip
// through the translation backend. Pass one lifts fenced code blocks out of
// the text entirely; pass two replaces inline code and platform tokens
// (mentions, custom emoji) with digit-only placeholders the backend leaves
// untouched.
package masking

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	codeBlockPattern = regexp.MustCompile("(?s)```.*?```")
	inlinePattern    = regexp.MustCompile("(?s)`[^`]*`|<(@[!&]?|#|a?:[^:>]+:)[0-9]{17,19}>")
	nonDigit         = regexp.MustCompile(`\D`)
)

// Spans maps placeholder tokens to the literal text they replaced.
type Spans map[string]string

// StripCodeBlocks removes fenced code blocks from text and returns them in
// order of appearance. The blocks are not reinserted inline after
// translation; they travel with the Translation as a separate artifact.
func StripCodeBlocks(text string) (string, []string) {
	var blocks []string
	stripped := codeBlockPattern.ReplaceAllStringFunc(text, func(match string) string {
		blocks = append(blocks, match)
		return ""
	})
	return stripped, blocks
}

// StripInline replaces inline code spans and platform tokens with freshly
// generated placeholders. Repeated identical spans each get their own
// placeholder.
func StripInline(text string) (string, Spans) {
	spans := make(Spans)
	stripped := inlinePattern.ReplaceAllStringFunc(text, func(match string) string {
		token := newPlaceholder(spans)
		spans[token] = match
		return token
	})
	return stripped, spans
}

// Restore substitutes each placeholder back with its original span using
// exact token matches. It is safe to run against untranslated text when the
// translation call failed, so no span is ever lost.
func Restore(text string, spans Spans) string {
	if len(spans) == 0 {
		return text
	}
	pairs := make([]string, 0, len(spans)*2)
	for token, original := range spans {
		pairs = append(pairs, token, original)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// newPlaceholder builds a {digits} token. Digits survive translation reflow,
// and the brace delimiters keep any token from being a substring of another.
func newPlaceholder(used Spans) string {
	for {
		id := nonDigit.ReplaceAllString(uuid.New().String(), "")
		if id == "" {
			continue
		}
		token := "{" + id + "}"
		if _, taken := used[token]; !taken {
			return token
		}
	}
}
