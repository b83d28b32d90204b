// Package summarize holds text bounding helpers and an offline extractive summarizer.
package summarize

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"SecurityNewsScanner/internal/ports"
)

// ErrEmptyInput is returned when there is nothing to summarize.
var ErrEmptyInput = errors.New("summarize: empty input")

// Truncate cuts text to at most max runes; max <= 0 leaves text untouched.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

// Lead builds a summary from the leading sentences of the text.
// Lengths are counted in words.
type Lead struct{}

var _ ports.Summarizer = Lead{}

// Summarize takes whole sentences until minLen words are covered, never exceeding maxLen words.
func (Lead) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	var (
		picked []string
		words  int
	)
	for _, sentence := range sentences(text) {
		fields := strings.Fields(sentence)
		if maxLen > 0 && words+len(fields) > maxLen {
			if words == 0 {
				picked = append(picked, strings.Join(fields[:maxLen], " "))
			}
			break
		}
		picked = append(picked, strings.Join(fields, " "))
		words += len(fields)
		if words >= minLen {
			break
		}
	}

	return strings.Join(picked, " "), nil
}

func sentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
