package reports

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/VarunAIFund/pulse/internal/models"
	"github.com/VarunAIFund/pulse/pkg/logging"
)

// Report is the full weekly report assembled from one analysis run
type Report struct {
	Metadata          ReportMetadata           `json:"report_metadata"`
	ExecutiveSummary  ExecutiveSummary         `json:"executive_summary"`
	SentimentAnalysis SentimentAnalysis        `json:"sentiment_analysis"`
	EngagementMetrics EngagementMetrics        `json:"engagement_metrics"`
	ActivityPatterns  models.ActivityPattern   `json:"activity_patterns"`
	BurnoutAlerts     map[string]*models.BurnoutAlert `json:"burnout_alerts"`
	Assessment        models.BurnoutAssessment `json:"burnout_assessment"`
	Recommendations   []string                 `json:"recommendations"`
	ChannelDetails    map[string]ChannelDetail `json:"detailed_channel_metrics"`
}

type ReportMetadata struct {
	GeneratedAt       time.Time `json:"generated_at"`
	PeriodStart       string    `json:"period_start"`
	PeriodEnd         string    `json:"period_end"`
	DaysAnalyzed      int       `json:"days_analyzed"`
	ChannelsMonitored []string  `json:"channels_monitored"`
}

type KeyMetrics struct {
	ChannelsMonitored      int     `json:"channels_monitored"`
	TotalMessages          int     `json:"total_messages"`
	OverallSentimentScore  float64 `json:"overall_sentiment_score"`
	OverallEngagementScore float64 `json:"overall_engagement_score"`
}

type ExecutiveSummary struct {
	KeyMetrics        KeyMetrics `json:"key_metrics"`
	SentimentSummary  string     `json:"sentiment_summary"`
	EngagementSummary string     `json:"engagement_summary"`
	KeyInsights       []string   `json:"key_insights"`
	WeeklyHighlights  []string   `json:"weekly_highlights"`
}

type ChannelSentiment struct {
	DailyScores   map[string]float64 `json:"daily_scores"`
	WeeklyAverage float64            `json:"weekly_average"`
	Trend         string             `json:"trend"`
	TrendChange   float64            `json:"trend_change"`
	BestDay       string             `json:"best_day,omitempty"`
	WorstDay      string             `json:"worst_day,omitempty"`
}

type WeeklyPatterns struct {
	DailyAverages        map[string]float64 `json:"daily_averages"`
	BestDayOfWeek        string             `json:"best_day_of_week"`
	WorstDayOfWeek       string             `json:"worst_day_of_week"`
	MondayBluesConfirmed bool               `json:"monday_blues_confirmed"`
	FridayEnergy         bool               `json:"friday_energy"`
}

type SentimentAnalysis struct {
	ByChannel      map[string]ChannelSentiment `json:"by_channel"`
	WeeklyPatterns WeeklyPatterns              `json:"weekly_patterns"`
}

type ChannelEngagement struct {
	TotalMessages          int     `json:"total_messages"`
	TotalReactions         int     `json:"total_reactions"`
	TotalEmojis            int     `json:"total_emojis"`
	AverageEngagementScore float64 `json:"average_engagement_score"`
	Trend                  string  `json:"trend"`
	MessagesPerDay         float64 `json:"messages_per_day"`
}

type EngagementMetrics struct {
	ByChannel         map[string]ChannelEngagement `json:"by_channel"`
	EngagementRanking []string                     `json:"engagement_ranking"`
}

type ChannelStats struct {
	TotalDaysAnalyzed  int     `json:"total_days_analyzed"`
	AvgDailyMessages   float64 `json:"avg_daily_messages"`
	AvgDailySentiment  float64 `json:"avg_daily_sentiment"`
	AvgEngagementScore float64 `json:"avg_engagement_score"`
	TotalEmojiUsage    int     `json:"total_emoji_usage"`
	TotalReactions     int     `json:"total_reactions"`
}

type ChannelDetail struct {
	DailyBreakdown []models.DailyMetric `json:"daily_breakdown"`
	SummaryStats   ChannelStats         `json:"summary_stats"`
	Trends         models.TrendResult   `json:"trends"`
}

// Generator assembles weekly reports from run results
type Generator struct {
	logger logging.Logger
	now    func() time.Time
}

func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{logger: logger, now: time.Now}
}

// GenerateWeeklyReport builds the full report for one run
func (g *Generator) GenerateWeeklyReport(result *models.RunResult) *Report {
	now := g.now()
	channels := sortedKeys(result.DailyMetrics)

	report := &Report{
		Metadata: ReportMetadata{
			GeneratedAt:       now,
			PeriodStart:       now.AddDate(0, 0, -result.Metadata.DaysAnalyzed).Format("2006-01-02"),
			PeriodEnd:         now.Format("2006-01-02"),
			DaysAnalyzed:      result.Metadata.DaysAnalyzed,
			ChannelsMonitored: channels,
		},
		ExecutiveSummary:  g.executiveSummary(result),
		SentimentAnalysis: g.sentimentAnalysis(result),
		EngagementMetrics: g.engagementMetrics(result),
		ActivityPatterns:  result.ActivityPattern,
		BurnoutAlerts:     result.BurnoutAlerts,
		Assessment:        result.Assessment,
		Recommendations:   g.recommendations(result),
		ChannelDetails:    g.channelDetails(result),
	}

	if g.logger != nil {
		g.logger.WithField("channels", len(channels)).Info("Weekly report generated")
	}
	return report
}

func (g *Generator) executiveSummary(result *models.RunResult) ExecutiveSummary {
	summary := result.Summary

	sentimentDesc := describeSentiment(summary.OverallAvgSentiment)
	engagementDesc := describeEngagement(summary.OverallAvgEngagement)

	var insights []string
	if summary.SentimentDistribution.Positive > 60 {
		insights = append(insights, fmt.Sprintf("Strong team positivity: %.1f%% of interactions are positive", summary.SentimentDistribution.Positive))
	} else if summary.SentimentDistribution.Negative > 30 {
		insights = append(insights, fmt.Sprintf("Concerning negativity: %.1f%% of interactions are negative", summary.SentimentDistribution.Negative))
	}

	improving, declining := 0, 0
	for _, trend := range result.Trends {
		switch trend.SentimentTrend {
		case models.TrendIncreasing:
			improving++
		case models.TrendDecreasing:
			declining++
		}
	}
	if improving > declining {
		insights = append(insights, fmt.Sprintf("Improving sentiment in %d channels", improving))
	} else if declining > improving {
		insights = append(insights, fmt.Sprintf("Declining sentiment in %d channels", declining))
	}

	if len(result.BurnoutAlerts) > 0 {
		highRisk := 0
		for _, alert := range result.BurnoutAlerts {
			if alert.RiskLevel == models.RiskHigh {
				highRisk++
			}
		}
		if highRisk > 0 {
			insights = append(insights, fmt.Sprintf("%d channels showing high burnout risk", highRisk))
		} else {
			insights = append(insights, fmt.Sprintf("%d channels need attention", len(result.BurnoutAlerts)))
		}
	} else {
		insights = append(insights, "No burnout risks detected")
	}

	return ExecutiveSummary{
		KeyMetrics: KeyMetrics{
			ChannelsMonitored:      summary.TotalChannelsMonitored,
			TotalMessages:          summary.TotalMessagesAnalyzed,
			OverallSentimentScore:  summary.OverallAvgSentiment,
			OverallEngagementScore: summary.OverallAvgEngagement,
		},
		SentimentSummary:  fmt.Sprintf("Team sentiment is %s (score: %.2f)", sentimentDesc, summary.OverallAvgSentiment),
		EngagementSummary: fmt.Sprintf("Team engagement is %s (score: %.2f)", engagementDesc, summary.OverallAvgEngagement),
		KeyInsights:       insights,
		WeeklyHighlights:  g.weeklyHighlights(result),
	}
}

func (g *Generator) weeklyHighlights(result *models.RunResult) []string {
	var highlights []string

	bestChannel, bestSentiment := "", math.Inf(-1)
	for _, ch := range sortedTrendKeys(result.Trends) {
		if s := result.Trends[ch].RecentAvgSentiment; s > bestSentiment {
			bestChannel, bestSentiment = ch, s
		}
	}
	if bestChannel != "" && bestSentiment > 0.2 {
		highlights = append(highlights, fmt.Sprintf("Most positive channel: %s (sentiment: %.2f)", bestChannel, bestSentiment))
	}

	improvedChannel, improvedChange := "", 20.0
	for _, ch := range sortedTrendKeys(result.Trends) {
		if c := result.Trends[ch].SentimentChange; c > improvedChange {
			improvedChannel, improvedChange = ch, c
		}
	}
	if improvedChannel != "" {
		highlights = append(highlights, fmt.Sprintf("Biggest improvement: %s (+%.1f%%)", improvedChannel, improvedChange))
	}

	var highRisk []string
	for _, ch := range sortedKeys(result.DailyMetrics) {
		if alert, ok := result.BurnoutAlerts[ch]; ok && alert.RiskLevel == models.RiskHigh {
			highRisk = append(highRisk, ch)
		}
	}
	if len(highRisk) > 0 {
		highlights = append(highlights, "Needs immediate attention: "+strings.Join(highRisk, ", "))
	}

	return highlights
}

func (g *Generator) sentimentAnalysis(result *models.RunResult) SentimentAnalysis {
	byChannel := make(map[string]ChannelSentiment, len(result.DailyMetrics))

	for channel, metrics := range result.DailyMetrics {
		if len(metrics) == 0 {
			continue
		}

		daily := make(map[string]float64, len(metrics))
		sum := 0.0
		bestDay, worstDay := metrics[0].Date, metrics[0].Date
		bestVal, worstVal := metrics[0].AvgSentiment, metrics[0].AvgSentiment
		for _, m := range metrics {
			daily[m.Date] = m.AvgSentiment
			sum += m.AvgSentiment
			if m.AvgSentiment > bestVal {
				bestVal, bestDay = m.AvgSentiment, m.Date
			}
			if m.AvgSentiment < worstVal {
				worstVal, worstDay = m.AvgSentiment, m.Date
			}
		}

		trend := result.Trends[channel]
		byChannel[channel] = ChannelSentiment{
			DailyScores:   daily,
			WeeklyAverage: roundTo(sum/float64(len(metrics)), 3),
			Trend:         orStable(trend.SentimentTrend),
			TrendChange:   trend.SentimentChange,
			BestDay:       bestDay,
			WorstDay:      worstDay,
		}
	}

	return SentimentAnalysis{
		ByChannel:      byChannel,
		WeeklyPatterns: g.weeklyPatterns(result.DailyMetrics),
	}
}

func (g *Generator) weeklyPatterns(dailyMetrics map[string][]models.DailyMetric) WeeklyPatterns {
	byDay := make(map[string][]float64)
	for _, metrics := range dailyMetrics {
		for _, m := range metrics {
			date, err := time.Parse("2006-01-02", m.Date)
			if err != nil {
				continue
			}
			day := date.Weekday().String()
			byDay[day] = append(byDay[day], m.AvgSentiment)
		}
	}

	averages := make(map[string]float64, 7)
	bestDay, worstDay := "", ""
	bestVal, worstVal := math.Inf(-1), math.Inf(1)
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		avg := 0.0
		if vals := byDay[day]; len(vals) > 0 {
			sum := 0.0
			for _, v := range vals {
				sum += v
			}
			avg = roundTo(sum/float64(len(vals)), 3)
		}
		averages[day] = avg
		if avg > bestVal {
			bestVal, bestDay = avg, day
		}
		if avg < worstVal {
			worstVal, worstDay = avg, day
		}
	}

	return WeeklyPatterns{
		DailyAverages:        averages,
		BestDayOfWeek:        bestDay,
		WorstDayOfWeek:       worstDay,
		MondayBluesConfirmed: averages["Monday"] < -0.1,
		FridayEnergy:         averages["Friday"] > 0.2,
	}
}

func (g *Generator) engagementMetrics(result *models.RunResult) EngagementMetrics {
	byChannel := make(map[string]ChannelEngagement, len(result.DailyMetrics))

	for channel, metrics := range result.DailyMetrics {
		if len(metrics) == 0 {
			continue
		}

		totalMessages, totalReactions, totalEmojis := 0, 0, 0
		engagementSum := 0.0
		for _, m := range metrics {
			totalMessages += m.MessageCount
			totalReactions += m.ReactionCount
			totalEmojis += m.EmojiCount
			engagementSum += m.EngagementScore
		}

		byChannel[channel] = ChannelEngagement{
			TotalMessages:          totalMessages,
			TotalReactions:         totalReactions,
			TotalEmojis:            totalEmojis,
			AverageEngagementScore: roundTo(engagementSum/float64(len(metrics)), 3),
			Trend:                  orStable(result.Trends[channel].EngagementTrend),
			MessagesPerDay:         roundTo(float64(totalMessages)/float64(len(metrics)), 1),
		}
	}

	ranking := make([]string, 0, len(byChannel))
	for ch := range byChannel {
		ranking = append(ranking, ch)
	}
	sort.Slice(ranking, func(i, j int) bool {
		a, b := byChannel[ranking[i]], byChannel[ranking[j]]
		if a.AverageEngagementScore != b.AverageEngagementScore {
			return a.AverageEngagementScore > b.AverageEngagementScore
		}
		return ranking[i] < ranking[j]
	})

	return EngagementMetrics{ByChannel: byChannel, EngagementRanking: ranking}
}

func (g *Generator) recommendations(result *models.RunResult) []string {
	var recs []string

	var high, medium []string
	for _, ch := range sortedKeys(result.DailyMetrics) {
		alert, ok := result.BurnoutAlerts[ch]
		if !ok {
			continue
		}
		switch alert.RiskLevel {
		case models.RiskHigh:
			high = append(high, ch)
		case models.RiskMedium:
			medium = append(medium, ch)
		}
	}

	if len(high) > 0 {
		recs = append(recs,
			"Schedule immediate team check-ins for: "+strings.Join(high, ", "),
			"Review workload distribution and project deadlines",
			"Consider implementing stress-reduction initiatives")
	}
	if len(medium) > 0 {
		recs = append(recs, "Schedule one-on-one meetings with teams in: "+strings.Join(medium, ", "))
	}

	var declining []string
	for _, ch := range sortedTrendKeys(result.Trends) {
		if result.Trends[ch].SentimentTrend == models.TrendDecreasing {
			declining = append(declining, ch)
		}
	}
	if len(declining) > 0 {
		recs = append(recs, "Monitor declining sentiment in: "+strings.Join(declining, ", "))
	}

	if len(result.BurnoutAlerts) == 0 {
		recs = append(recs,
			"Continue current practices, no major concerns detected",
			"Consider team recognition programs to maintain positive momentum")
	}

	if len(recs) > 10 {
		recs = recs[:10]
	}
	return recs
}

func (g *Generator) channelDetails(result *models.RunResult) map[string]ChannelDetail {
	details := make(map[string]ChannelDetail, len(result.DailyMetrics))

	for channel, metrics := range result.DailyMetrics {
		if len(metrics) == 0 {
			continue
		}

		totalMessages, totalEmojis, totalReactions := 0, 0, 0
		sentimentSum, engagementSum := 0.0, 0.0
		for _, m := range metrics {
			totalMessages += m.MessageCount
			totalEmojis += m.EmojiCount
			totalReactions += m.ReactionCount
			sentimentSum += m.AvgSentiment
			engagementSum += m.EngagementScore
		}

		n := float64(len(metrics))
		details[channel] = ChannelDetail{
			DailyBreakdown: metrics,
			SummaryStats: ChannelStats{
				TotalDaysAnalyzed:  len(metrics),
				AvgDailyMessages:   roundTo(float64(totalMessages)/n, 1),
				AvgDailySentiment:  roundTo(sentimentSum/n, 3),
				AvgEngagementScore: roundTo(engagementSum/n, 3),
				TotalEmojiUsage:    totalEmojis,
				TotalReactions:     totalReactions,
			},
			Trends: result.Trends[channel],
		}
	}
	return details
}

func describeSentiment(score float64) string {
	switch {
	case score >= 0.3:
		return "very positive"
	case score >= 0.1:
		return "positive"
	case score >= -0.1:
		return "neutral"
	case score >= -0.3:
		return "negative"
	default:
		return "very negative"
	}
}

func describeEngagement(score float64) string {
	switch {
	case score >= 0.7:
		return "high"
	case score >= 0.4:
		return "moderate"
	default:
		return "low"
	}
}

func orStable(trend string) string {
	if trend == "" {
		return models.TrendStable
	}
	return trend
}

func sortedKeys(m map[string][]models.DailyMetric) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedTrendKeys(m map[string]models.TrendResult) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
