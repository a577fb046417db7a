package engagement

import (
	"math"

	"github.com/VarunAIFund/pulse/internal/models"
)

// TrendConfig controls trend classification
type TrendConfig struct {
	// Window is how many trailing days feed each trend, most recent last
	Window int
	// SlopeThreshold separates stable from increasing/decreasing
	SlopeThreshold float64
}

func DefaultTrendConfig() TrendConfig {
	return TrendConfig{
		Window:         7,
		SlopeThreshold: 0.05,
	}
}

// Slope fits an ordinary least squares line over values indexed 0..n-1
// and returns its slope rounded to 4 decimals. Fewer than two points
// have no trend and return 0.
func Slope(values []float64) float64 {
	return roundTo(rawSlope(values), 4)
}

func rawSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	sumX, sumY, sumXY, sumXX := 0.0, 0.0, 0.0, 0.0
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// Direction classifies a series against the threshold. The unrounded
// slope decides; rounding it first would flip values near the boundary.
func Direction(values []float64, threshold float64) string {
	slope := rawSlope(values)
	switch {
	case slope > threshold:
		return models.TrendIncreasing
	case slope < -threshold:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

// PercentChange is the two-point change from the first to the last value,
// rounded to 2 decimals. A zero first value yields 0 rather than a
// division blowup.
func PercentChange(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	first, last := values[0], values[len(values)-1]
	if first == 0 {
		return 0
	}
	return roundTo((last-first)/math.Abs(first)*100, 2)
}

// AnalyzeTrends computes one channel's trend result from its daily
// metrics, ordered by date ascending. Only the trailing window feeds the
// trends.
func AnalyzeTrends(channel string, metrics []models.DailyMetric, cfg TrendConfig) models.TrendResult {
	if cfg.Window <= 0 {
		cfg.Window = DefaultTrendConfig().Window
	}
	if len(metrics) > cfg.Window {
		metrics = metrics[len(metrics)-cfg.Window:]
	}

	sentiments := make([]float64, len(metrics))
	engagements := make([]float64, len(metrics))
	messageCounts := make([]float64, len(metrics))
	for i, m := range metrics {
		sentiments[i] = m.AvgSentiment
		engagements[i] = m.EngagementScore
		messageCounts[i] = float64(m.MessageCount)
	}

	return models.TrendResult{
		Channel:             channel,
		SentimentTrend:      Direction(sentiments, cfg.SlopeThreshold),
		SentimentChange:     PercentChange(sentiments),
		EngagementTrend:     Direction(engagements, cfg.SlopeThreshold),
		EngagementChange:    PercentChange(engagements),
		MessageTrend:        Direction(messageCounts, cfg.SlopeThreshold),
		MessageChange:       PercentChange(messageCounts),
		RecentAvgSentiment:  roundTo(mean(sentiments), 3),
		RecentAvgEngagement: roundTo(mean(engagements), 3),
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
