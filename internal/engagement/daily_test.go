package engagement

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VarunAIFund/pulse/internal/models"
)

func tsAt(t time.Time) string {
	return fmt.Sprintf("%d.000100", t.Unix())
}

func scoredMessage(ts time.Time, sentiment float64, emojiCount int) models.Message {
	return models.Message{
		Timestamp: tsAt(ts),
		Sentiment: &models.SentimentResult{Overall: sentiment, EmojiCount: emojiCount},
	}
}

func TestAggregateDailyGroupsByLocalDate(t *testing.T) {
	tracker := NewTracker(time.UTC)

	day1 := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

	metrics := tracker.AggregateDaily("general", []models.Message{
		scoredMessage(day1, 0.5, 0),
		scoredMessage(day1.Add(2*time.Hour), 0.3, 1),
		scoredMessage(day2, -0.2, 0),
	})

	require.Len(t, metrics, 2)
	assert.Equal(t, "2026-08-24", metrics[0].Date)
	assert.Equal(t, "2026-08-25", metrics[1].Date)
	assert.Equal(t, 2, metrics[0].MessageCount)
	assert.Equal(t, 1, metrics[1].MessageCount)
	assert.Equal(t, "general", metrics[0].Channel)
	assert.InDelta(t, 0.4, metrics[0].AvgSentiment, 1e-9)
	assert.Equal(t, 1, metrics[0].EmojiCount)
}

func TestAggregateDailySentimentStd(t *testing.T) {
	tracker := NewTracker(time.UTC)
	day := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	// single sample has no spread
	metrics := tracker.AggregateDaily("general", []models.Message{
		scoredMessage(day, 0.5, 0),
	})
	require.Len(t, metrics, 1)
	assert.Equal(t, 0.0, metrics[0].SentimentStd)

	// sample std of {0.2, 0.6} is sqrt(0.08) = 0.283
	metrics = tracker.AggregateDaily("general", []models.Message{
		scoredMessage(day, 0.2, 0),
		scoredMessage(day.Add(time.Hour), 0.6, 0),
	})
	require.Len(t, metrics, 1)
	assert.InDelta(t, 0.283, metrics[0].SentimentStd, 1e-9)
}

func TestAggregateDailyActivitySignals(t *testing.T) {
	tracker := NewTracker(time.UTC)
	day := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	messages := []models.Message{
		{
			Timestamp: tsAt(day),
			ThreadTS:  "1756022400.000100",
			Reactions: []models.Reaction{{Name: "thumbsup", Count: 3}},
			Sentiment: &models.SentimentResult{Overall: 0.2},
		},
		{
			Timestamp: tsAt(day.Add(5 * time.Hour)),
			Reactions: []models.Reaction{{Name: "eyes", Count: 2}},
			Sentiment: &models.SentimentResult{Overall: 0.4, EmojiCount: 2},
		},
		{
			Timestamp: tsAt(day.Add(5*time.Hour + 30*time.Minute)),
			Sentiment: &models.SentimentResult{Overall: 0.0},
		},
	}

	metrics := tracker.AggregateDaily("dev", messages)
	require.Len(t, metrics, 1)
	m := metrics[0]
	assert.Equal(t, 3, m.MessageCount)
	assert.Equal(t, 5, m.ReactionCount)
	assert.Equal(t, 2, m.EmojiCount)
	assert.Equal(t, []int{9, 14}, m.ActiveHours)
	assert.Equal(t, 2, m.ActiveHoursCount)
	assert.InDelta(t, 0.333, m.ThreadParticipation, 1e-9)
}

func TestAggregateDailyIsIdempotent(t *testing.T) {
	tracker := NewTracker(time.UTC)
	day := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	messages := []models.Message{
		{
			Timestamp: tsAt(day),
			ThreadTS:  "1756022400.000100",
			Reactions: []models.Reaction{{Name: "thumbsup", Count: 3}},
			Sentiment: &models.SentimentResult{Overall: 0.2, EmojiCount: 1},
		},
		scoredMessage(day.Add(3*time.Hour), -0.4, 0),
		scoredMessage(day.AddDate(0, 0, 1), 0.6, 2),
	}

	first := tracker.AggregateDaily("general", messages)
	second := tracker.AggregateDaily("general", messages)
	assert.Equal(t, first, second)
}

func TestAggregateDailySkipsUnparseableTimestamps(t *testing.T) {
	tracker := NewTracker(time.UTC)
	metrics := tracker.AggregateDaily("general", []models.Message{
		{Timestamp: "not-a-timestamp"},
		{Timestamp: ""},
	})
	assert.Empty(t, metrics)
}

func TestEngagementScoreAtCaps(t *testing.T) {
	// every component saturated gives a perfect score
	assert.Equal(t, 1.0, EngagementScore(20, 10, 15, 24))
	// past the caps nothing more accrues
	assert.Equal(t, 1.0, EngagementScore(200, 100, 150, 24))
}

func TestEngagementScoreComponents(t *testing.T) {
	// only messages: 0.4 * 10/20
	assert.InDelta(t, 0.2, EngagementScore(10, 0, 0, 0), 1e-9)
	// only reactions: 0.3 * 5/10
	assert.InDelta(t, 0.15, EngagementScore(0, 5, 0, 0), 1e-9)
	// only hours: 0.1 * 12/24
	assert.InDelta(t, 0.05, EngagementScore(0, 0, 0, 12), 1e-9)
	assert.Equal(t, 0.0, EngagementScore(0, 0, 0, 0))
}
