package sentiment

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/VarunAIFund/pulse/internal/models"
	"github.com/VarunAIFund/pulse/pkg/logging"
)

// TextScorer scores cleaned message text in [-1, 1]
type TextScorer interface {
	Name() string
	ScoreText(ctx context.Context, text string) (float64, error)
}

// Config holds the blending weights and reaction defaults. The primary
// weights apply when the primary scorer produced the text score, the
// fallback weights when the lexicon scorer did; the original scoring
// pipeline shipped with both schemes, so both stay configurable.
type Config struct {
	PrimaryTextWeight  float64
	PrimaryEmojiWeight float64

	FallbackTextWeight  float64
	FallbackEmojiWeight float64

	// DefaultReactionSentiment scores reaction names missing from the
	// lexicon; reactions skew positive
	DefaultReactionSentiment float64
}

// DefaultConfig returns the standard blending weights
func DefaultConfig() Config {
	return Config{
		PrimaryTextWeight:        0.7,
		PrimaryEmojiWeight:       0.3,
		FallbackTextWeight:       0.6,
		FallbackEmojiWeight:      0.4,
		DefaultReactionSentiment: 0.3,
	}
}

// Analyzer normalizes per-message sentiment signals into one bounded
// overall score. A primary scorer (usually the GPT backend) is tried
// first; on failure the lexicon scorer takes over and the result is
// marked degraded.
type Analyzer struct {
	cfg      Config
	primary  TextScorer
	fallback TextScorer
	logger   logging.Logger
}

// NewAnalyzer creates an analyzer. primary may be nil, in which case the
// fallback scorer is the normal path and results are not marked degraded.
func NewAnalyzer(cfg Config, primary, fallback TextScorer, logger logging.Logger) *Analyzer {
	if fallback == nil {
		fallback = NewLexiconScorer()
	}
	return &Analyzer{
		cfg:      cfg,
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

var (
	urlPattern     = regexp.MustCompile(`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\\(\\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)
	userMention    = regexp.MustCompile(`<@[UW][A-Z0-9]+(?:\|[^>]+)?>`)
	channelMention = regexp.MustCompile(`<#[C][A-Z0-9]+(?:\|[^>]+)?>`)
	angleMarkup    = regexp.MustCompile(`<[^>]+>`)
)

// CleanText strips URLs, user/channel mentions and remaining platform
// markup so only human-written words reach the text scorer
func CleanText(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = userMention.ReplaceAllString(text, "")
	text = channelMention.ReplaceAllString(text, "")
	text = angleMarkup.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// ExtractEmojis returns the emoji characters found in text, in order.
// Only emojis in the sentiment lexicon are recognized; variation-selector
// sequences (e.g. the red heart) are matched before single runes.
func ExtractEmojis(text string) []string {
	var out []string
	for i := 0; i < len(text); {
		matched := false
		for _, width := range []int{7, 6, 4, 3} {
			if i+width <= len(text) {
				if _, ok := emojiSentiment[text[i:i+width]]; ok {
					out = append(out, text[i:i+width])
					i += width
					matched = true
					break
				}
			}
		}
		if !matched {
			_, size := utf8.DecodeRuneInString(text[i:])
			i += size
		}
	}
	return out
}

// EmojiScores returns the per-emoji lexicon scores; emojis missing from
// the lexicon count as neutral
func EmojiScores(emojis []string) []float64 {
	scores := make([]float64, len(emojis))
	for i, em := range emojis {
		scores[i] = emojiSentiment[em]
	}
	return scores
}

// EmojiSentiment averages the lexicon scores of the given emojis
func EmojiSentiment(emojis []string) float64 {
	if len(emojis) == 0 {
		return 0.0
	}
	total := 0.0
	for _, s := range EmojiScores(emojis) {
		total += s
	}
	return total / float64(len(emojis))
}

// Normalize blends a text score with emoji scores using the given weights
// and clamps the result to [-1, 1]. With no emojis the text score passes
// through unchanged (still clamped).
func Normalize(textSentiment float64, emojiSentiments []float64, textWeight, emojiWeight float64) float64 {
	combined := textSentiment
	if len(emojiSentiments) > 0 {
		sum := 0.0
		for _, s := range emojiSentiments {
			sum += s
		}
		combined = textWeight*textSentiment + emojiWeight*(sum/float64(len(emojiSentiments)))
	}
	return Clamp(combined)
}

// Clamp bounds a score to [-1, 1]
func Clamp(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	if score < -1.0 {
		return -1.0
	}
	return score
}

// AnalyzeMessage scores one message's text and emojis. Empty or
// markup-only text scores neutral without calling any backend.
func (a *Analyzer) AnalyzeMessage(ctx context.Context, text string) models.SentimentResult {
	emojis := ExtractEmojis(text)
	emojiScores := EmojiScores(emojis)

	clean := CleanText(text)

	textScore := 0.0
	degraded := false
	textW, emojiW := a.cfg.FallbackTextWeight, a.cfg.FallbackEmojiWeight

	if clean != "" {
		if a.primary != nil {
			score, err := a.primary.ScoreText(ctx, clean)
			if err != nil {
				if a.logger != nil {
					a.logger.WithError(err).WithField("scorer", a.primary.Name()).Warn("Primary sentiment scorer failed, falling back")
				}
				textScore, _ = a.fallback.ScoreText(ctx, clean)
				degraded = true
			} else {
				textScore = score
				textW, emojiW = a.cfg.PrimaryTextWeight, a.cfg.PrimaryEmojiWeight
			}
		} else {
			textScore, _ = a.fallback.ScoreText(ctx, clean)
		}
	}

	overall := Normalize(textScore, emojiScores, textW, emojiW)

	return models.SentimentResult{
		Overall:        overall,
		TextSentiment:  textScore,
		EmojiSentiment: EmojiSentiment(emojis),
		EmojiCount:     len(emojis),
		Category:       Categorize(overall),
		Degraded:       degraded,
	}
}

// AnalyzeReactions computes the count-weighted mean sentiment of a
// message's reactions. Reaction sentiment is reported separately and does
// not feed the message's overall score.
func (a *Analyzer) AnalyzeReactions(reactions []models.Reaction) (float64, int) {
	totalSentiment := 0.0
	totalCount := 0

	for _, reaction := range reactions {
		score := a.cfg.DefaultReactionSentiment
		if emoji, ok := reactionAliases[reaction.Name]; ok {
			if s, known := emojiSentiment[emoji]; known {
				score = s
			}
		}
		totalSentiment += score * float64(reaction.Count)
		totalCount += reaction.Count
	}

	if totalCount == 0 {
		return 0.0, 0
	}
	return totalSentiment / float64(totalCount), totalCount
}

// Categorize maps a sentiment score to its five-bucket label
func Categorize(score float64) string {
	switch {
	case score >= 0.5:
		return "very_positive"
	case score >= 0.1:
		return "positive"
	case score >= -0.1:
		return "neutral"
	case score >= -0.5:
		return "negative"
	default:
		return "very_negative"
	}
}
