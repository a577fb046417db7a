package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VarunAIFund/pulse/internal/models"
)

type stubScorer struct {
	score float64
	err   error
	calls int
}

func (s *stubScorer) Name() string { return "stub" }

func (s *stubScorer) ScoreText(_ context.Context, _ string) (float64, error) {
	s.calls++
	return s.score, s.err
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "check this out", CleanText("check this out https://example.com/page"))
	assert.Equal(t, "thanks for the review", CleanText("<@U12345> thanks for the review"))
	assert.Equal(t, "posted in", CleanText("posted in <#C98765|general>"))
	assert.Equal(t, "", CleanText("<@U12345> <#C98765>"))
	assert.Equal(t, "spaced out", CleanText("  spaced   out  "))
}

func TestExtractEmojis(t *testing.T) {
	emojis := ExtractEmojis("great work 🎉🎉 team 👍")
	assert.Equal(t, []string{"🎉", "🎉", "👍"}, emojis)

	// variation-selector sequence must match before the bare rune
	emojis = ExtractEmojis("love it ❤️")
	assert.Equal(t, []string{"❤️"}, emojis)

	assert.Empty(t, ExtractEmojis("no emojis here"))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(1.5))
	assert.Equal(t, -1.0, Clamp(-1.5))
	assert.Equal(t, 0.25, Clamp(0.25))
}

func TestNormalizeBlending(t *testing.T) {
	// no emojis: text passes through
	assert.Equal(t, 0.5, Normalize(0.5, nil, 0.6, 0.4))

	// 0.6*0.5 + 0.4*0.8 = 0.62
	got := Normalize(0.5, []float64{0.8}, 0.6, 0.4)
	assert.InDelta(t, 0.62, got, 1e-9)

	// result clamped even when weights push past the bounds
	assert.Equal(t, 1.0, Normalize(2.0, nil, 0.6, 0.4))
}

func TestAnalyzeMessagePrimaryPath(t *testing.T) {
	primary := &stubScorer{score: 0.5}
	a := NewAnalyzer(DefaultConfig(), primary, nil, nil)

	res := a.AnalyzeMessage(context.Background(), "shipped the release 🎉")
	require.Equal(t, 1, primary.calls)
	assert.False(t, res.Degraded)
	assert.Equal(t, 0.5, res.TextSentiment)
	assert.Equal(t, 1, res.EmojiCount)
	// 0.7*0.5 + 0.3*0.9 = 0.62
	assert.InDelta(t, 0.62, res.Overall, 1e-9)
	assert.Equal(t, "very_positive", res.Category)
}

func TestAnalyzeMessageFallbackOnPrimaryError(t *testing.T) {
	primary := &stubScorer{err: errors.New("api unavailable")}
	a := NewAnalyzer(DefaultConfig(), primary, nil, nil)

	res := a.AnalyzeMessage(context.Background(), "this is awesome")
	assert.True(t, res.Degraded)
	// lexicon scores "awesome" at 0.9; fallback weights apply
	assert.InDelta(t, 0.9, res.TextSentiment, 1e-9)
	assert.InDelta(t, 0.9, res.Overall, 1e-9)
}

func TestAnalyzeMessageNoPrimary(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil, nil, nil)

	res := a.AnalyzeMessage(context.Background(), "totally broken again")
	assert.False(t, res.Degraded, "lexicon as the configured scorer is not a degradation")
	assert.InDelta(t, -0.5, res.TextSentiment, 1e-9)
}

func TestAnalyzeMessageEmptyText(t *testing.T) {
	primary := &stubScorer{score: 0.9}
	a := NewAnalyzer(DefaultConfig(), primary, nil, nil)

	res := a.AnalyzeMessage(context.Background(), "<@U12345> https://example.com")
	assert.Equal(t, 0, primary.calls, "markup-only text must not reach the backend")
	assert.Equal(t, 0.0, res.TextSentiment)
	assert.Equal(t, 0.0, res.Overall)
	assert.Equal(t, "neutral", res.Category)
}

func TestAnalyzeMessageEmojiOnly(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil, nil, nil)

	res := a.AnalyzeMessage(context.Background(), "🎉")
	// text score is 0.0, so the blend is 0.4*0.9
	assert.InDelta(t, 0.36, res.Overall, 1e-9)
	assert.Equal(t, 1, res.EmojiCount)
	assert.InDelta(t, 0.9, res.EmojiSentiment, 1e-9)
}

func TestAnalyzeReactions(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil, nil, nil)

	score, count := a.AnalyzeReactions([]models.Reaction{
		{Name: "thumbsup", Count: 3},
		{Name: "fire", Count: 1},
	})
	require.Equal(t, 4, count)
	// (0.6*3 + 0.8*1) / 4 = 0.65
	assert.InDelta(t, 0.65, score, 1e-9)
}

func TestAnalyzeReactionsUnknownName(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil, nil, nil)

	score, count := a.AnalyzeReactions([]models.Reaction{
		{Name: "custom_team_emoji", Count: 2},
	})
	assert.Equal(t, 2, count)
	assert.InDelta(t, 0.3, score, 1e-9)
}

func TestAnalyzeReactionsEmpty(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil, nil, nil)

	score, count := a.AnalyzeReactions(nil)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0.0, score)
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, "very_positive", Categorize(0.5))
	assert.Equal(t, "positive", Categorize(0.1))
	assert.Equal(t, "neutral", Categorize(0.0))
	assert.Equal(t, "neutral", Categorize(-0.1))
	assert.Equal(t, "negative", Categorize(-0.2))
	assert.Equal(t, "very_negative", Categorize(-0.6))
}

func TestLexiconScorer(t *testing.T) {
	s := NewLexiconScorer()

	score, err := s.ScoreText(context.Background(), "great work, thanks!")
	require.NoError(t, err)
	// ("great" 0.8 + "thanks" 0.5) / 2
	assert.InDelta(t, 0.65, score, 1e-9)

	score, err = s.ScoreText(context.Background(), "quarterly report attached")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	score, err = s.ScoreText(context.Background(), "Stressed and exhausted, everything is broken")
	require.NoError(t, err)
	assert.InDelta(t, (-0.8-0.8-0.5)/3.0, score, 1e-9)
}
