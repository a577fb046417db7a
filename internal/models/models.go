package models

import "time"

// Trend directions for daily metric series
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Risk levels for burnout classification
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Reaction represents an emoji reaction attached to a message
type Reaction struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Message represents a single chat message collected for one analysis run.
// Timestamp is the platform's unix-seconds-as-string message ID; ThreadTS is
// set when the message belongs to a thread.
type Message struct {
	Channel   string           `json:"channel"`
	Timestamp string           `json:"ts"`
	Text      string           `json:"text"`
	User      string           `json:"user,omitempty"`
	ThreadTS  string           `json:"thread_ts,omitempty"`
	Reactions []Reaction       `json:"reactions,omitempty"`
	Sentiment *SentimentResult `json:"sentiment,omitempty"`
}

// SentimentResult holds the scored sentiment for a single message.
// ReactionSentiment is reported alongside but never blended into Overall.
type SentimentResult struct {
	Overall           float64 `json:"overall_sentiment"`
	TextSentiment     float64 `json:"text_sentiment"`
	EmojiSentiment    float64 `json:"emoji_sentiment"`
	EmojiCount        int     `json:"emoji_count"`
	ReactionSentiment float64 `json:"reaction_sentiment"`
	ReactionCount     int     `json:"reaction_count"`
	Category          string  `json:"category"`
	// Degraded is true when the primary text scorer failed and the
	// fallback lexicon scorer produced TextSentiment.
	Degraded bool `json:"degraded,omitempty"`
}

// DailyMetric is one channel's aggregate for one calendar day
type DailyMetric struct {
	Channel             string    `json:"channel"`
	Date                string    `json:"date"` // YYYY-MM-DD
	MessageCount        int       `json:"message_count"`
	AvgSentiment        float64   `json:"avg_sentiment"`
	SentimentStd        float64   `json:"sentiment_std"`
	EmojiCount          int       `json:"emoji_count"`
	ReactionCount       int       `json:"reaction_count"`
	ActiveHours         []int     `json:"active_hours"`
	ActiveHoursCount    int       `json:"active_hours_count"`
	ThreadParticipation float64   `json:"thread_participation"`
	EngagementScore     float64   `json:"engagement_score"`
	CreatedAt           time.Time `json:"created_at,omitempty"`
}

// TrendResult describes the direction and magnitude of change for one
// channel's sentiment, engagement and message-volume series over the
// trailing window
type TrendResult struct {
	Channel             string  `json:"channel"`
	SentimentTrend      string  `json:"sentiment_trend"`
	SentimentChange     float64 `json:"sentiment_change"`
	EngagementTrend     string  `json:"engagement_trend"`
	EngagementChange    float64 `json:"engagement_change"`
	MessageTrend        string  `json:"message_trend"`
	MessageChange       float64 `json:"message_change"`
	RecentAvgSentiment  float64 `json:"recent_avg_sentiment"`
	RecentAvgEngagement float64 `json:"recent_avg_engagement"`
}

// BurnoutAlert is the per-channel risk classification for one run
type BurnoutAlert struct {
	Channel                 string   `json:"channel"`
	RiskLevel               string   `json:"risk_level"`
	RiskScore               float64  `json:"risk_score"`
	ConsecutiveNegativeDays int      `json:"consecutive_negative_days"`
	WarningIndicators       []string `json:"warning_indicators"`
	Recommendations         []string `json:"recommendations"`
	SentimentTrend          string   `json:"sentiment_trend"`
	EngagementTrend         string   `json:"engagement_trend"`
}

// BurnoutAssessment is the cross-channel rollup of burnout alerts
type BurnoutAssessment struct {
	OverallRiskLevel   string   `json:"overall_risk_level"`
	ChannelsAtRisk     int      `json:"channels_at_risk"`
	HighRiskChannels   []string `json:"high_risk_channels"`
	MediumRiskChannels []string `json:"medium_risk_channels"`
	TotalWarnings      int      `json:"total_warnings"`
	Summary            string   `json:"summary"`
	PriorityActions    []string `json:"priority_actions"`
}

// SentimentDistribution buckets channel-day records by average sentiment.
// Values are percentages of all day-records and sum to 100.
type SentimentDistribution struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// EngagementSummary is the global rollup across every channel-day record
type EngagementSummary struct {
	TotalChannelsMonitored int                   `json:"total_channels_monitored"`
	TotalMessagesAnalyzed  int                   `json:"total_messages_analyzed"`
	OverallAvgSentiment    float64               `json:"overall_avg_sentiment"`
	OverallAvgEngagement   float64               `json:"overall_avg_engagement"`
	SentimentDistribution  SentimentDistribution `json:"sentiment_distribution"`
	MostActiveChannel      string                `json:"most_active_channel"`
}

// ActivityPattern captures workspace-wide peak activity for one run
type ActivityPattern struct {
	PeakHour           int            `json:"peak_hour"`
	PeakDay            string         `json:"peak_day"`
	HourlyDistribution map[int]int    `json:"hourly_distribution"`
	DailyDistribution  map[string]int `json:"daily_distribution"`
	TotalMessages      int            `json:"total_messages"`
}

// RunMetadata describes one analysis run
type RunMetadata struct {
	RunID            string    `json:"run_id"`
	AnalysisDate     string    `json:"analysis_date"`
	DaysAnalyzed     int       `json:"days_analyzed"`
	ChannelsAnalyzed []string  `json:"channels_analyzed"`
	FailedChannels   []string  `json:"failed_channels,omitempty"`
	TotalMessages    int       `json:"total_messages"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// RunResult is the full snapshot produced by a single analysis run
type RunResult struct {
	Metadata        RunMetadata               `json:"analysis_metadata"`
	DailyMetrics    map[string][]DailyMetric  `json:"daily_metrics"`
	Trends          map[string]TrendResult    `json:"engagement_trends"`
	BurnoutAlerts   map[string]*BurnoutAlert  `json:"burnout_alerts"`
	Assessment      BurnoutAssessment         `json:"burnout_assessment"`
	ActivityPattern ActivityPattern           `json:"activity_patterns"`
	Summary         EngagementSummary         `json:"engagement_summary"`
	ReportPaths     []string                  `json:"report_paths,omitempty"`
}

// DatabaseStats describes what the snapshot store currently holds
type DatabaseStats struct {
	TableCounts  map[string]int `json:"table_counts"`
	EarliestDate string         `json:"earliest_date,omitempty"`
	LatestDate   string         `json:"latest_date,omitempty"`
	ChannelCount int            `json:"channel_count"`
}
