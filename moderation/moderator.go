// Package moderation censors forbidden words in message content before it
// is persisted or broadcast, so REST readers and socket receivers see the
// same sanitized text.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

type textMapping struct {
	normalized []rune
	origIdx    []int
}

// NewModerator builds the Aho-Corasick automaton from a normalized version
// of the censored word list.
func NewModerator(censoredWords []string, replacement rune) (*Moderator, error) {
	patterns := make([][]rune, len(censoredWords))
	for i, word := range censoredWords {
		patterns[i] = normalizeRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor replaces every character of a matched forbidden pattern with the
// replacement rune, preserving spacing and untouched text. It also returns
// the matched words for logging.
func (m *Moderator) Censor(original string) (string, []string) {
	mapping := m.normalize(original)
	if len(mapping.normalized) == 0 {
		return original, nil
	}

	spans := m.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	origRunes := []rune(original)
	var found []string
	for _, span := range spans {
		normStart := span.Pos
		normEnd := normStart + len(span.Word)
		if normStart < 0 || normEnd > len(mapping.origIdx) {
			continue
		}
		found = append(found, string(span.Word))

		origStart := mapping.origIdx[normStart]
		origEnd := mapping.origIdx[normEnd-1] + 1
		for i := origStart; i < origEnd; i++ {
			origRunes[i] = m.replacement
		}
	}
	return string(origRunes), found
}

// normalize lowercases the input, strips noise characters, and tracks the
// original index of each kept rune so matches can be mapped back.
func (m *Moderator) normalize(input string) textMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		if isNoise(r) {
			continue
		}
		norm = append(norm, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return textMapping{normalized: norm, origIdx: origIdx}
}

func normalizeRunes(runes []rune) []rune {
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		if isNoise(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func isNoise(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}
