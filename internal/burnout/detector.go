package burnout

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/VarunAIFund/pulse/internal/models"
	"github.com/VarunAIFund/pulse/pkg/logging"
)

// Risk indicator weights. Scores are additive; levels plateau well below
// the 150 maximum so sustained negativity plus one secondary indicator
// already classifies high.
const (
	weightConsecutiveNegative = 40.0
	weightSentimentDecline    = 30.0
	weightEngagementDrop      = 25.0
	weightLowSentiment        = 20.0
	weightLowActivity         = 15.0
	weightDecliningTrend      = 10.0

	highRiskScore   = 70.0
	mediumRiskScore = 40.0
)

// Config holds the burnout classification thresholds
type Config struct {
	// SentimentThreshold marks a day negative when avg_sentiment falls below it
	SentimentThreshold float64
	// MinConsecutiveDays is the streak length that triggers the sustained
	// negativity indicator
	MinConsecutiveDays int
	// Window is how many trailing days feed the per-channel analysis
	Window int
}

func DefaultConfig() Config {
	return Config{
		SentimentThreshold: -0.3,
		MinConsecutiveDays: 3,
		Window:             7,
	}
}

// Detector classifies per-channel burnout risk from daily metrics and
// trend results
type Detector struct {
	cfg    Config
	logger logging.Logger
}

func NewDetector(cfg Config, logger logging.Logger) *Detector {
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.MinConsecutiveDays <= 0 {
		cfg.MinConsecutiveDays = DefaultConfig().MinConsecutiveDays
	}
	return &Detector{cfg: cfg, logger: logger}
}

// DetectPatterns analyzes every channel and returns only those whose risk
// is not low. Risk is still computed for every channel; low-risk channels
// simply produce no alert.
func (d *Detector) DetectPatterns(dailyMetrics map[string][]models.DailyMetric, trends map[string]models.TrendResult) map[string]*models.BurnoutAlert {
	alerts := make(map[string]*models.BurnoutAlert)
	for channel, metrics := range dailyMetrics {
		alert := d.AnalyzeChannel(channel, metrics, trends[channel])
		if alert.RiskLevel != models.RiskLow {
			alerts[channel] = alert
		}
	}
	return alerts
}

// AnalyzeChannel scores one channel. metrics must be ordered by date
// ascending; only the trailing window is considered.
func (d *Detector) AnalyzeChannel(channel string, metrics []models.DailyMetric, trend models.TrendResult) *models.BurnoutAlert {
	alert := &models.BurnoutAlert{
		Channel:         channel,
		RiskLevel:       models.RiskLow,
		SentimentTrend:  orStable(trend.SentimentTrend),
		EngagementTrend: orStable(trend.EngagementTrend),
	}
	if len(metrics) == 0 {
		return alert
	}

	if len(metrics) > d.cfg.Window {
		metrics = metrics[len(metrics)-d.cfg.Window:]
	}

	consecutive := d.countConsecutiveNegativeDays(metrics)
	alert.ConsecutiveNegativeDays = consecutive

	score := 0.0

	if consecutive >= d.cfg.MinConsecutiveDays {
		score += weightConsecutiveNegative
		alert.WarningIndicators = append(alert.WarningIndicators,
			fmt.Sprintf("Sustained negative sentiment for %d consecutive days", consecutive))
	}

	if trend.SentimentChange < -30 {
		score += weightSentimentDecline
		alert.WarningIndicators = append(alert.WarningIndicators,
			fmt.Sprintf("Sharp sentiment decline of %.1f%%", math.Abs(trend.SentimentChange)))
	}

	if trend.EngagementChange < -50 {
		score += weightEngagementDrop
		alert.WarningIndicators = append(alert.WarningIndicators,
			fmt.Sprintf("Significant engagement drop of %.1f%%", math.Abs(trend.EngagementChange)))
	}

	if trend.RecentAvgSentiment < d.cfg.SentimentThreshold {
		score += weightLowSentiment
		alert.WarningIndicators = append(alert.WarningIndicators,
			fmt.Sprintf("Very low average sentiment (%.2f)", trend.RecentAvgSentiment))
	}

	totalMessages := 0
	for _, m := range metrics {
		totalMessages += m.MessageCount
	}
	avgMessages := float64(totalMessages) / float64(len(metrics))
	if avgMessages < 2 {
		score += weightLowActivity
		alert.WarningIndicators = append(alert.WarningIndicators,
			fmt.Sprintf("Very low messaging activity (%.1f messages/day)", avgMessages))
	}

	if trend.SentimentTrend == models.TrendDecreasing {
		score += weightDecliningTrend
	}
	if trend.EngagementTrend == models.TrendDecreasing {
		score += weightDecliningTrend
	}

	alert.RiskScore = score
	switch {
	case score >= highRiskScore:
		alert.RiskLevel = models.RiskHigh
	case score >= mediumRiskScore:
		alert.RiskLevel = models.RiskMedium
	}

	alert.Recommendations = d.recommendations(alert, trend)

	if d.logger != nil && alert.RiskLevel != models.RiskLow {
		d.logger.WithFields(logging.Fields{
			"channel":    channel,
			"risk_level": alert.RiskLevel,
			"risk_score": alert.RiskScore,
		}).Warn("Burnout risk detected")
	}

	return alert
}

// countConsecutiveNegativeDays walks the window most-recent-first and
// counts until the first day at or above the threshold. A non-negative
// most recent day means zero regardless of history.
func (d *Detector) countConsecutiveNegativeDays(metrics []models.DailyMetric) int {
	count := 0
	for i := len(metrics) - 1; i >= 0; i-- {
		if metrics[i].AvgSentiment < d.cfg.SentimentThreshold {
			count++
		} else {
			break
		}
	}
	return count
}

// recommendations derives advice from the triggered indicators. Output
// order is fixed by rule order and duplicates are removed preserving the
// first occurrence.
func (d *Detector) recommendations(alert *models.BurnoutAlert, trend models.TrendResult) []string {
	var recs []string

	if alert.RiskLevel == models.RiskHigh {
		recs = append(recs,
			"Immediate attention required, schedule a team check-in",
			"Consider workload review and redistribution",
			"Implement stress-reduction initiatives")
	}
	if alert.RiskLevel == models.RiskHigh || alert.RiskLevel == models.RiskMedium {
		recs = append(recs,
			"Schedule one-on-one meetings with team members",
			"Review recent project demands and deadlines")
	}
	if alert.ConsecutiveNegativeDays >= d.cfg.MinConsecutiveDays {
		recs = append(recs,
			"Address ongoing concerns causing negative sentiment",
			"Consider team building or morale-boosting activities")
	}
	if hasIndicator(alert, "engagement drop") {
		recs = append(recs,
			"Investigate causes of reduced team engagement",
			"Consider adjusting meeting schedules or communication methods")
	}
	if hasIndicator(alert, "low messaging activity") {
		recs = append(recs,
			"Check if team members need additional support or resources",
			"Ensure communication channels are being used effectively")
	}
	if trend.RecentAvgSentiment < -0.5 {
		recs = append(recs, "Address critical team morale issues immediately")
	} else if trend.RecentAvgSentiment < 0 {
		recs = append(recs, "Focus on positive team interactions and recognition")
	}

	seen := make(map[string]bool, len(recs))
	unique := recs[:0]
	for _, rec := range recs {
		if !seen[rec] {
			seen[rec] = true
			unique = append(unique, rec)
		}
	}
	return unique
}

// Assess rolls the per-channel alerts into the workspace-wide risk
// picture. Channel lists are sorted for stable output.
func (d *Detector) Assess(alerts map[string]*models.BurnoutAlert) models.BurnoutAssessment {
	if len(alerts) == 0 {
		return models.BurnoutAssessment{
			OverallRiskLevel:   models.RiskLow,
			HighRiskChannels:   []string{},
			MediumRiskChannels: []string{},
			Summary:            "No burnout risks detected across monitored channels.",
			PriorityActions:    []string{},
		}
	}

	var high, medium []string
	totalWarnings := 0
	for _, channel := range sortedChannels(alerts) {
		alert := alerts[channel]
		totalWarnings += len(alert.WarningIndicators)
		switch alert.RiskLevel {
		case models.RiskHigh:
			high = append(high, channel)
		case models.RiskMedium:
			medium = append(medium, channel)
		}
	}

	overall := models.RiskLow
	switch {
	case len(high) > 0 || len(medium) >= 2:
		overall = models.RiskHigh
	case len(medium) == 1:
		overall = models.RiskMedium
	}

	var summary string
	switch overall {
	case models.RiskHigh:
		summary = fmt.Sprintf("High burnout risk detected. %d channels at high risk.", len(high))
	case models.RiskMedium:
		summary = fmt.Sprintf("Moderate burnout risk. %d channels need attention.", len(medium))
	default:
		summary = "Low overall burnout risk, but monitor flagged channels."
	}

	return models.BurnoutAssessment{
		OverallRiskLevel:   overall,
		ChannelsAtRisk:     len(alerts),
		HighRiskChannels:   emptyIfNil(high),
		MediumRiskChannels: emptyIfNil(medium),
		TotalWarnings:      totalWarnings,
		Summary:            summary,
		PriorityActions:    d.priorityActions(alerts),
	}
}

// priorityActions lists the most urgent follow-ups, high-risk channels
// first, capped at 5 entries
func (d *Detector) priorityActions(alerts map[string]*models.BurnoutAlert) []string {
	actions := []string{}

	var high, sustained, lowEngagement []string
	for _, channel := range sortedChannels(alerts) {
		alert := alerts[channel]
		if alert.RiskLevel == models.RiskHigh {
			high = append(high, channel)
		}
		if alert.ConsecutiveNegativeDays >= d.cfg.MinConsecutiveDays {
			sustained = append(sustained, channel)
		}
		if hasIndicator(alert, "engagement drop") {
			lowEngagement = append(lowEngagement, channel)
		}
	}

	if len(high) > 0 {
		actions = append(actions, "Immediately review teams in: "+strings.Join(high, ", "))
	}
	if len(sustained) > 0 {
		actions = append(actions, "Address sustained negativity in: "+strings.Join(sustained, ", "))
	}
	if len(lowEngagement) > 0 {
		actions = append(actions, "Investigate engagement issues in: "+strings.Join(lowEngagement, ", "))
	}

	if len(actions) > 5 {
		actions = actions[:5]
	}
	return actions
}

func hasIndicator(alert *models.BurnoutAlert, substr string) bool {
	for _, w := range alert.WarningIndicators {
		if strings.Contains(strings.ToLower(w), substr) {
			return true
		}
	}
	return false
}

func sortedChannels(alerts map[string]*models.BurnoutAlert) []string {
	channels := make([]string, 0, len(alerts))
	for ch := range alerts {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels
}

func orStable(trend string) string {
	if trend == "" {
		return models.TrendStable
	}
	return trend
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
