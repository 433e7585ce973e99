// Package moderation censors configured words in chat content before
// fan-out. Matching is accent/leet tolerant: patterns and input are
// normalized before the Aho-Corasick search, and matches are masked at their
// original positions so spacing and length are preserved.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds the Aho-Corasick automaton over the normalized forms
// of the censored words.
func NewModerator(censoredWords []string, replacement rune) (*Moderator, error) {
	patterns := make([][]rune, 0, len(censoredWords))
	for _, word := range censoredWords {
		if norm := normalizeRunes([]rune(word)); len(norm) > 0 {
			patterns = append(patterns, norm)
		}
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor replaces every character of a forbidden match with the replacement
// rune while leaving the rest of the message untouched.
func (m *Moderator) Censor(original string) string {
	norm, origIdx := normalize(original)
	if len(norm) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(norm, false)
	if len(spans) == 0 {
		return original
	}

	runes := []rune(original)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		// Mask from the first to the last original rune of the match,
		// covering any noise characters the normalization skipped.
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			runes[i] = m.replacement
		}
	}
	return string(runes)
}

// normalize lowercases and de-leets the input and keeps, for every rune that
// survives, the index it had in the original string.
func normalize(input string) ([]rune, []int) {
	orig := []rune(input)
	norm := make([]rune, 0, len(orig))
	origIdx := make([]int, 0, len(orig))

	for i, r := range orig {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return norm, origIdx
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common leet-speak substitutions back to their alphabet
// counterparts so "h4ck" matches a censored "hack".
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	case '7':
		return 't'
	default:
		return r
	}
}

// isNoise drops separators attackers use to break up words ("b.a.d").
func isNoise(r rune) bool {
	return unicode.IsSpace(r) || r == '.' || r == '-' || r == '_' || r == '*'
}
