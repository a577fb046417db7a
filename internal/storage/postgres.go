package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/VarunAIFund/pulse/internal/models"
	"github.com/VarunAIFund/pulse/pkg/database"
	dbsql "github.com/VarunAIFund/pulse/pkg/database/sql"
	"github.com/VarunAIFund/pulse/pkg/logging"
)

// Store persists analysis run snapshots in Postgres. Writes are upserts
// keyed by (date, channel) so re-running a day fully replaces it.
type Store struct {
	db      database.PostgresConn
	logger  logging.Logger
	queries *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func NewStore(db database.PostgresConn, logger logging.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// SetMetrics attaches query counters, usually from
// MetricsCollector.CreateDatabaseMetrics
func (s *Store) SetMetrics(queries *prometheus.CounterVec, latency *prometheus.HistogramVec) {
	s.queries = queries
	s.latency = latency
}

func (s *Store) observe(queryType string, start time.Time, err error) {
	if s.queries == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.queries.WithLabelValues(queryType, status).Inc()
	s.latency.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
}

// InitSchema applies the embedded schema files in name order
func (s *Store) InitSchema(ctx context.Context) error {
	entries, err := fs.Glob(dbsql.Content, "schema/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list schema files: %w", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		ddl, err := fs.ReadFile(dbsql.Content, name)
		if err != nil {
			return fmt.Errorf("failed to read schema file %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(ddl)); err != nil {
			return fmt.Errorf("failed to apply schema file %s: %w", name, err)
		}
	}

	if s.logger != nil {
		s.logger.WithField("files", len(entries)).Info("Database schema applied")
	}
	return nil
}

// StoreRunSnapshot persists a complete run in one transaction. Either
// every table gets the run's rows or none do.
func (s *Store) StoreRunSnapshot(ctx context.Context, result *models.RunResult) (err error) {
	defer func(start time.Time) { s.observe("store_snapshot", start, err) }(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for channel, metrics := range result.DailyMetrics {
		for _, m := range metrics {
			if err := upsertDailyMetric(ctx, tx, channel, m); err != nil {
				return err
			}
		}
	}

	runDate := result.Metadata.AnalysisDate
	for channel, trend := range result.Trends {
		if err := upsertTrend(ctx, tx, runDate, channel, trend); err != nil {
			return err
		}
	}
	for channel, alert := range result.BurnoutAlerts {
		if err := upsertAlert(ctx, tx, runDate, channel, alert); err != nil {
			return err
		}
	}
	if err := upsertActivityPattern(ctx, tx, runDate, result.ActivityPattern); err != nil {
		return err
	}
	if err := upsertSummary(ctx, tx, runDate, result.Summary); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run snapshot: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logging.Fields{
			"run_id":   result.Metadata.RunID,
			"channels": len(result.DailyMetrics),
		}).Info("Run snapshot stored")
	}
	return nil
}

func upsertDailyMetric(ctx context.Context, tx *sql.Tx, channel string, m models.DailyMetric) error {
	hours, err := json.Marshal(m.ActiveHours)
	if err != nil {
		return fmt.Errorf("failed to marshal active hours: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO daily_metrics (
			date, channel_name, message_count, avg_sentiment, sentiment_std,
			emoji_count, reaction_count, active_hours_count, active_hours,
			thread_participation, engagement_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (date, channel_name) DO UPDATE SET
			message_count = EXCLUDED.message_count,
			avg_sentiment = EXCLUDED.avg_sentiment,
			sentiment_std = EXCLUDED.sentiment_std,
			emoji_count = EXCLUDED.emoji_count,
			reaction_count = EXCLUDED.reaction_count,
			active_hours_count = EXCLUDED.active_hours_count,
			active_hours = EXCLUDED.active_hours,
			thread_participation = EXCLUDED.thread_participation,
			engagement_score = EXCLUDED.engagement_score,
			created_at = NOW()`,
		m.Date, channel, m.MessageCount, m.AvgSentiment, m.SentimentStd,
		m.EmojiCount, m.ReactionCount, m.ActiveHoursCount, hours,
		m.ThreadParticipation, m.EngagementScore)
	if err != nil {
		return fmt.Errorf("failed to upsert daily metric for %s/%s: %w", channel, m.Date, err)
	}
	return nil
}

func upsertTrend(ctx context.Context, tx *sql.Tx, date, channel string, t models.TrendResult) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sentiment_trends (
			date, channel_name, sentiment_trend, sentiment_change,
			engagement_trend, engagement_change, message_trend, message_change,
			recent_avg_sentiment, recent_avg_engagement
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (date, channel_name) DO UPDATE SET
			sentiment_trend = EXCLUDED.sentiment_trend,
			sentiment_change = EXCLUDED.sentiment_change,
			engagement_trend = EXCLUDED.engagement_trend,
			engagement_change = EXCLUDED.engagement_change,
			message_trend = EXCLUDED.message_trend,
			message_change = EXCLUDED.message_change,
			recent_avg_sentiment = EXCLUDED.recent_avg_sentiment,
			recent_avg_engagement = EXCLUDED.recent_avg_engagement,
			created_at = NOW()`,
		date, channel, t.SentimentTrend, t.SentimentChange,
		t.EngagementTrend, t.EngagementChange, t.MessageTrend, t.MessageChange,
		t.RecentAvgSentiment, t.RecentAvgEngagement)
	if err != nil {
		return fmt.Errorf("failed to upsert trend for %s: %w", channel, err)
	}
	return nil
}

func upsertAlert(ctx context.Context, tx *sql.Tx, date, channel string, a *models.BurnoutAlert) error {
	warnings, err := json.Marshal(a.WarningIndicators)
	if err != nil {
		return fmt.Errorf("failed to marshal warning indicators: %w", err)
	}
	recs, err := json.Marshal(a.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO burnout_alerts (
			date, channel_name, risk_level, risk_score,
			consecutive_negative_days, warning_indicators, recommendations
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date, channel_name) DO UPDATE SET
			risk_level = EXCLUDED.risk_level,
			risk_score = EXCLUDED.risk_score,
			consecutive_negative_days = EXCLUDED.consecutive_negative_days,
			warning_indicators = EXCLUDED.warning_indicators,
			recommendations = EXCLUDED.recommendations,
			created_at = NOW()`,
		date, channel, a.RiskLevel, a.RiskScore,
		a.ConsecutiveNegativeDays, warnings, recs)
	if err != nil {
		return fmt.Errorf("failed to upsert burnout alert for %s: %w", channel, err)
	}
	return nil
}

func upsertActivityPattern(ctx context.Context, tx *sql.Tx, date string, p models.ActivityPattern) error {
	hourly, err := json.Marshal(p.HourlyDistribution)
	if err != nil {
		return fmt.Errorf("failed to marshal hourly distribution: %w", err)
	}
	daily, err := json.Marshal(p.DailyDistribution)
	if err != nil {
		return fmt.Errorf("failed to marshal daily distribution: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO activity_patterns (
			date, peak_hour, peak_day, hourly_distribution, daily_distribution, total_messages
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date) DO UPDATE SET
			peak_hour = EXCLUDED.peak_hour,
			peak_day = EXCLUDED.peak_day,
			hourly_distribution = EXCLUDED.hourly_distribution,
			daily_distribution = EXCLUDED.daily_distribution,
			total_messages = EXCLUDED.total_messages,
			created_at = NOW()`,
		date, p.PeakHour, orDefault(p.PeakDay, "Monday"), hourly, daily, p.TotalMessages)
	if err != nil {
		return fmt.Errorf("failed to upsert activity pattern: %w", err)
	}
	return nil
}

func upsertSummary(ctx context.Context, tx *sql.Tx, date string, s models.EngagementSummary) error {
	dist, err := json.Marshal(s.SentimentDistribution)
	if err != nil {
		return fmt.Errorf("failed to marshal sentiment distribution: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO engagement_summary (
			date, total_channels_monitored, total_messages_analyzed,
			overall_avg_sentiment, overall_avg_engagement,
			sentiment_distribution, most_active_channel
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date) DO UPDATE SET
			total_channels_monitored = EXCLUDED.total_channels_monitored,
			total_messages_analyzed = EXCLUDED.total_messages_analyzed,
			overall_avg_sentiment = EXCLUDED.overall_avg_sentiment,
			overall_avg_engagement = EXCLUDED.overall_avg_engagement,
			sentiment_distribution = EXCLUDED.sentiment_distribution,
			most_active_channel = EXCLUDED.most_active_channel,
			created_at = NOW()`,
		date, s.TotalChannelsMonitored, s.TotalMessagesAnalyzed,
		s.OverallAvgSentiment, s.OverallAvgEngagement, dist, s.MostActiveChannel)
	if err != nil {
		return fmt.Errorf("failed to upsert engagement summary: %w", err)
	}
	return nil
}

// DailyMetricsHistory returns the trailing daily metrics for one channel,
// oldest first
func (s *Store) DailyMetricsHistory(ctx context.Context, channel string, days int) (_ []models.DailyMetric, err error) {
	defer func(start time.Time) { s.observe("daily_metrics_history", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT date::text, message_count, avg_sentiment, sentiment_std,
		       emoji_count, reaction_count, active_hours_count, active_hours,
		       thread_participation, engagement_score, created_at
		FROM daily_metrics
		WHERE channel_name = $1 AND date >= CURRENT_DATE - $2::int
		ORDER BY date ASC`, channel, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily metrics: %w", err)
	}
	defer rows.Close()

	var metrics []models.DailyMetric
	for rows.Next() {
		m := models.DailyMetric{Channel: channel}
		var hours []byte
		if err := rows.Scan(&m.Date, &m.MessageCount, &m.AvgSentiment, &m.SentimentStd,
			&m.EmojiCount, &m.ReactionCount, &m.ActiveHoursCount, &hours,
			&m.ThreadParticipation, &m.EngagementScore, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily metric: %w", err)
		}
		if err := json.Unmarshal(hours, &m.ActiveHours); err != nil {
			return nil, fmt.Errorf("failed to decode active hours: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// BurnoutHistory returns recent burnout alerts, newest first
func (s *Store) BurnoutHistory(ctx context.Context, days int) (_ []models.BurnoutAlert, err error) {
	defer func(start time.Time) { s.observe("burnout_history", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT channel_name, risk_level, risk_score, consecutive_negative_days,
		       warning_indicators, recommendations
		FROM burnout_alerts
		WHERE date >= CURRENT_DATE - $1::int
		ORDER BY date DESC, risk_score DESC`, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query burnout alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.BurnoutAlert
	for rows.Next() {
		var a models.BurnoutAlert
		var warnings, recs []byte
		if err := rows.Scan(&a.Channel, &a.RiskLevel, &a.RiskScore,
			&a.ConsecutiveNegativeDays, &warnings, &recs); err != nil {
			return nil, fmt.Errorf("failed to scan burnout alert: %w", err)
		}
		if err := json.Unmarshal(warnings, &a.WarningIndicators); err != nil {
			return nil, fmt.Errorf("failed to decode warning indicators: %w", err)
		}
		if err := json.Unmarshal(recs, &a.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to decode recommendations: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// TrendHistory returns the stored trend rows for one channel, newest first
func (s *Store) TrendHistory(ctx context.Context, channel string, days int) (_ []models.TrendResult, err error) {
	defer func(start time.Time) { s.observe("trend_history", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT sentiment_trend, sentiment_change, engagement_trend, engagement_change,
		       message_trend, message_change, recent_avg_sentiment, recent_avg_engagement
		FROM sentiment_trends
		WHERE channel_name = $1 AND date >= CURRENT_DATE - $2::int
		ORDER BY date DESC`, channel, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query trends: %w", err)
	}
	defer rows.Close()

	var trends []models.TrendResult
	for rows.Next() {
		t := models.TrendResult{Channel: channel}
		if err := rows.Scan(&t.SentimentTrend, &t.SentimentChange,
			&t.EngagementTrend, &t.EngagementChange,
			&t.MessageTrend, &t.MessageChange,
			&t.RecentAvgSentiment, &t.RecentAvgEngagement); err != nil {
			return nil, fmt.Errorf("failed to scan trend: %w", err)
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}

// CleanupOldData deletes rows older than the retention cutoff and returns
// the number of daily metric rows removed
func (s *Store) CleanupOldData(ctx context.Context, retentionDays int) (_ int64, err error) {
	defer func(start time.Time) { s.observe("retention_cleanup", start, err) }(time.Now())

	var total int64
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM daily_metrics WHERE date < CURRENT_DATE - $1::int`, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old daily metrics: %w", err)
	}
	total, _ = res.RowsAffected()

	for _, table := range []string{"sentiment_trends", "burnout_alerts", "activity_patterns", "engagement_summary"} {
		if _, err := s.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE date < CURRENT_DATE - $1::int`, table), retentionDays); err != nil {
			return total, fmt.Errorf("failed to delete old rows from %s: %w", table, err)
		}
	}

	if s.logger != nil {
		s.logger.WithFields(logging.Fields{
			"retention_days": retentionDays,
			"rows_removed":   total,
		}).Info("Retention cleanup complete")
	}
	return total, nil
}

// Stats returns row counts per table plus the covered date range and
// distinct channel count for the status endpoint
func (s *Store) Stats(ctx context.Context) (_ *models.DatabaseStats, err error) {
	defer func(start time.Time) { s.observe("stats", start, err) }(time.Now())

	stats := &models.DatabaseStats{TableCounts: make(map[string]int)}
	for _, table := range []string{"daily_metrics", "sentiment_trends", "burnout_alerts", "activity_patterns", "engagement_summary"} {
		var count int
		if err := s.db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats.TableCounts[table] = count
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MIN(date)::text, ''), COALESCE(MAX(date)::text, ''), COUNT(DISTINCT channel_name)
		 FROM daily_metrics`).Scan(&stats.EarliestDate, &stats.LatestDate, &stats.ChannelCount)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics coverage: %w", err)
	}
	return stats, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
