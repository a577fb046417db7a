package engagement

import (
	"sort"
	"time"

	"github.com/VarunAIFund/pulse/internal/models"
)

// Sentiment distribution bucket edges. A channel-day is positive above
// 0.1, negative below -0.1, neutral between.
const (
	positiveEdge = 0.1
	negativeEdge = -0.1
)

// BuildSummary rolls every channel's daily metrics into one workspace
// summary. Percentages are over channel-day records, not messages. Ties
// for most active channel go to the lexicographically first channel.
func BuildSummary(dailyMetrics map[string][]models.DailyMetric) models.EngagementSummary {
	summary := models.EngagementSummary{
		TotalChannelsMonitored: len(dailyMetrics),
	}

	channels := make([]string, 0, len(dailyMetrics))
	for ch := range dailyMetrics {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	totalRecords := 0
	sentimentSum := 0.0
	engagementSum := 0.0
	positive, neutral, negative := 0, 0, 0
	mostActive := ""
	mostActiveCount := 0

	for _, ch := range channels {
		channelMessages := 0
		for _, m := range dailyMetrics[ch] {
			totalRecords++
			channelMessages += m.MessageCount
			summary.TotalMessagesAnalyzed += m.MessageCount
			sentimentSum += m.AvgSentiment
			engagementSum += m.EngagementScore

			switch {
			case m.AvgSentiment > positiveEdge:
				positive++
			case m.AvgSentiment < negativeEdge:
				negative++
			default:
				neutral++
			}
		}
		if channelMessages > mostActiveCount {
			mostActiveCount = channelMessages
			mostActive = ch
		}
	}

	if totalRecords > 0 {
		summary.OverallAvgSentiment = roundTo(sentimentSum/float64(totalRecords), 3)
		summary.OverallAvgEngagement = roundTo(engagementSum/float64(totalRecords), 3)
		summary.SentimentDistribution = models.SentimentDistribution{
			Positive: roundTo(float64(positive)/float64(totalRecords)*100, 1),
			Neutral:  roundTo(float64(neutral)/float64(totalRecords)*100, 1),
			Negative: roundTo(float64(negative)/float64(totalRecords)*100, 1),
		}
	}
	summary.MostActiveChannel = mostActive
	return summary
}

var weekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// BuildActivityPattern computes workspace-wide peak activity from the raw
// messages of every channel. Hours and weekdays come from the local time
// of each message timestamp.
func BuildActivityPattern(messages []models.Message, loc *time.Location) models.ActivityPattern {
	if loc == nil {
		loc = time.Local
	}

	pattern := models.ActivityPattern{
		HourlyDistribution: make(map[int]int),
		DailyDistribution:  make(map[string]int),
	}

	for _, msg := range messages {
		ts, ok := parseTimestamp(msg.Timestamp)
		if !ok {
			continue
		}
		local := ts.In(loc)
		pattern.HourlyDistribution[local.Hour()]++
		pattern.DailyDistribution[local.Weekday().String()]++
		pattern.TotalMessages++
	}

	peakHour, peakHourCount := 0, 0
	for h := 0; h < 24; h++ {
		if c := pattern.HourlyDistribution[h]; c > peakHourCount {
			peakHour, peakHourCount = h, c
		}
	}
	pattern.PeakHour = peakHour

	peakDay, peakDayCount := "", 0
	for _, day := range weekdayOrder {
		if c := pattern.DailyDistribution[day]; c > peakDayCount {
			peakDay, peakDayCount = day, c
		}
	}
	pattern.PeakDay = peakDay

	return pattern
}
