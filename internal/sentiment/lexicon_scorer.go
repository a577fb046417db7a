package sentiment

import (
	"context"
	"strings"
)

// LexiconScorer is the offline text scorer. It counts positive and
// negative words against the built-in lexicons and never fails, which
// makes it the fallback when the GPT backend is unavailable.
type LexiconScorer struct{}

func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{}
}

func (s *LexiconScorer) Name() string {
	return "lexicon"
}

// ScoreText averages the weights of all matched lexicon words, clamped
// to [-1, 1]. Text with no lexicon hits scores neutral.
func (s *LexiconScorer) ScoreText(_ context.Context, text string) (float64, error) {
	words := strings.Fields(strings.ToLower(text))

	total := 0.0
	matched := 0
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()[]")
		if w, ok := positiveWords[word]; ok {
			total += w
			matched++
		} else if w, ok := negativeWords[word]; ok {
			total += w
			matched++
		}
	}

	if matched == 0 {
		return 0.0, nil
	}
	return Clamp(total / float64(matched)), nil
}
