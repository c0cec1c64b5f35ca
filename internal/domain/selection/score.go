package selection

import (
	"strings"
	"unicode/utf8"

	"github.com/okian/onthisday/internal/domain/model"
)

// Scoring weights.
const (
	keywordWeight        = 10
	eventKindWeight      = 5
	longDescWeight       = 3
	longDescriptionChars = 50
)

// interestingKeywords boost an event once each when found in its description.
var interestingKeywords = []string{
	"invented", "discovered", "war", "revolution", "expedition",
	"founded", "abolished", "assassinated", "crowned", "treaty",
	"exploration", "scientific", "disaster", "miracle", "scandal",
}

// Keywords returns a copy of the interesting keyword vocabulary.
func Keywords() []string {
	out := make([]string, len(interestingKeywords))
	copy(out, interestingKeywords)
	return out
}

// Score rates how interesting an event is. Keywords match as case-insensitive
// substrings, so "war" also matches "warship".
func Score(e model.Event) int {
	desc := strings.ToLower(e.Description)
	score := 0
	for _, kw := range interestingKeywords {
		if strings.Contains(desc, kw) {
			score += keywordWeight
		}
	}
	if e.Type == model.KindEvent {
		score += eventKindWeight
	}
	if utf8.RuneCountInString(desc) > longDescriptionChars {
		score += longDescWeight
	}
	return score
}
