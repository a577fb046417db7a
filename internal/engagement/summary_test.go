package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/VarunAIFund/pulse/internal/models"
)

func TestBuildSummary(t *testing.T) {
	daily := map[string][]models.DailyMetric{
		"general": {
			{Date: "2026-08-24", MessageCount: 30, AvgSentiment: 0.4, EngagementScore: 0.8},
			{Date: "2026-08-25", MessageCount: 10, AvgSentiment: 0.05, EngagementScore: 0.4},
		},
		"dev": {
			{Date: "2026-08-24", MessageCount: 20, AvgSentiment: -0.3, EngagementScore: 0.6},
		},
	}

	summary := BuildSummary(daily)

	assert.Equal(t, 2, summary.TotalChannelsMonitored)
	assert.Equal(t, 60, summary.TotalMessagesAnalyzed)
	assert.Equal(t, "general", summary.MostActiveChannel)
	assert.InDelta(t, 0.05, summary.OverallAvgSentiment, 1e-9)
	assert.InDelta(t, 0.6, summary.OverallAvgEngagement, 1e-9)

	// one record per bucket: percentages over the 3 channel-days
	assert.InDelta(t, 33.3, summary.SentimentDistribution.Positive, 1e-9)
	assert.InDelta(t, 33.3, summary.SentimentDistribution.Neutral, 1e-9)
	assert.InDelta(t, 33.3, summary.SentimentDistribution.Negative, 1e-9)
}

func TestBuildSummaryMostActiveTieBreak(t *testing.T) {
	daily := map[string][]models.DailyMetric{
		"zeta":  {{Date: "2026-08-24", MessageCount: 10}},
		"alpha": {{Date: "2026-08-24", MessageCount: 10}},
	}
	summary := BuildSummary(daily)
	assert.Equal(t, "alpha", summary.MostActiveChannel)
}

func TestBuildSummaryEmpty(t *testing.T) {
	summary := BuildSummary(map[string][]models.DailyMetric{})
	assert.Equal(t, 0, summary.TotalChannelsMonitored)
	assert.Equal(t, "", summary.MostActiveChannel)
	assert.Equal(t, 0.0, summary.SentimentDistribution.Positive)
}

func TestBuildActivityPattern(t *testing.T) {
	// Monday 2026-08-24
	monday := time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)
	tuesday := monday.Add(24 * time.Hour)

	messages := []models.Message{
		{Timestamp: tsAt(monday)},
		{Timestamp: tsAt(monday.Add(10 * time.Minute))},
		{Timestamp: tsAt(tuesday)},
		{Timestamp: "garbage"},
	}

	pattern := BuildActivityPattern(messages, time.UTC)

	assert.Equal(t, 3, pattern.TotalMessages)
	assert.Equal(t, 14, pattern.PeakHour)
	assert.Equal(t, "Monday", pattern.PeakDay)
	assert.Equal(t, 3, pattern.HourlyDistribution[14])
	assert.Equal(t, 2, pattern.DailyDistribution["Monday"])
	assert.Equal(t, 1, pattern.DailyDistribution["Tuesday"])
}
