package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VarunAIFund/pulse/internal/burnout"
	"github.com/VarunAIFund/pulse/internal/engagement"
	"github.com/VarunAIFund/pulse/internal/metrics"
	"github.com/VarunAIFund/pulse/internal/models"
	"github.com/VarunAIFund/pulse/internal/reports"
	"github.com/VarunAIFund/pulse/internal/sentiment"
	"github.com/VarunAIFund/pulse/pkg/logging"
)

// ErrRunInProgress is returned when a run is requested while another is
// still executing. Concurrent runs would race on the same snapshot rows.
var ErrRunInProgress = errors.New("analysis run already in progress")

// Collector pulls raw channel history
type Collector interface {
	TestConnection(ctx context.Context) error
	CollectChannelData(ctx context.Context, channelNames []string, daysBack int) (map[string][]models.Message, []string, error)
}

// Storage persists run snapshots
type Storage interface {
	StoreRunSnapshot(ctx context.Context, result *models.RunResult) error
	CleanupOldData(ctx context.Context, retentionDays int) (int64, error)
}

// Renderer writes report files
type Renderer interface {
	SaveAll(report *reports.Report) ([]string, error)
}

// Config holds the pipeline settings for one deployment
type Config struct {
	Channels      []string
	DaysBack      int
	RetentionDays int
	TrendConfig   engagement.TrendConfig
	BurnoutConfig burnout.Config
	Location      *time.Location
	WriteReports  bool
}

func DefaultConfig() Config {
	return Config{
		DaysBack:      7,
		RetentionDays: 90,
		TrendConfig:   engagement.DefaultTrendConfig(),
		BurnoutConfig: burnout.DefaultConfig(),
		Location:      time.Local,
		WriteReports:  true,
	}
}

// Runner orchestrates one analysis cycle: collect, score, aggregate,
// detect, persist, report. At most one run executes at a time.
type Runner struct {
	cfg       Config
	collector Collector
	analyzer  *sentiment.Analyzer
	tracker   *engagement.Tracker
	detector  *burnout.Detector
	store     Storage
	generator *reports.Generator
	renderer  Renderer
	logger    logging.Logger
	metrics   *metrics.Metrics

	mu         sync.Mutex
	running    bool
	lastResult *models.RunResult
}

func NewRunner(cfg Config, collector Collector, analyzer *sentiment.Analyzer, store Storage, renderer Renderer, logger logging.Logger, m *metrics.Metrics) *Runner {
	if cfg.DaysBack <= 0 {
		cfg.DaysBack = DefaultConfig().DaysBack
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultConfig().RetentionDays
	}
	return &Runner{
		cfg:       cfg,
		collector: collector,
		analyzer:  analyzer,
		tracker:   engagement.NewTracker(cfg.Location),
		detector:  burnout.NewDetector(cfg.BurnoutConfig, logger),
		store:     store,
		generator: reports.NewGenerator(logger),
		renderer:  renderer,
		logger:    logger,
		metrics:   m,
	}
}

// IsRunning reports whether a run is currently in flight
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// LastResult returns the most recent completed run, or nil
func (r *Runner) LastResult() *models.RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastResult
}

// Run executes one full analysis cycle. A second call while one is in
// flight returns ErrRunInProgress instead of interleaving.
func (r *Runner) Run(ctx context.Context) (*models.RunResult, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrRunInProgress
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	started := time.Now()
	result, err := r.execute(ctx, started)

	if r.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		r.metrics.AnalysisRuns.WithLabelValues(status).Inc()
		r.metrics.RunDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	}
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Error("Analysis run failed")
		}
		return nil, err
	}

	r.mu.Lock()
	r.lastResult = result
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.WithFields(logging.Fields{
			"run_id":   result.Metadata.RunID,
			"channels": len(result.DailyMetrics),
			"messages": result.Metadata.TotalMessages,
			"duration": time.Since(started).String(),
		}).Info("Analysis run complete")
	}
	return result, nil
}

func (r *Runner) execute(ctx context.Context, started time.Time) (*models.RunResult, error) {
	runID := uuid.New().String()
	if r.logger != nil {
		r.logger.WithFields(logging.Fields{
			"run_id":    runID,
			"channels":  len(r.cfg.Channels),
			"days_back": r.cfg.DaysBack,
		}).Info("Starting analysis run")
	}

	channelData, failed, err := r.collector.CollectChannelData(ctx, r.cfg.Channels, r.cfg.DaysBack)
	if err != nil {
		return nil, fmt.Errorf("collection failed: %w", err)
	}
	if len(channelData) == 0 {
		return nil, fmt.Errorf("no channel data collected (%d channels failed)", len(failed))
	}

	dailyMetrics := make(map[string][]models.DailyMetric, len(channelData))
	trends := make(map[string]models.TrendResult, len(channelData))
	var allMessages []models.Message
	totalMessages := 0
	analyzed := make([]string, 0, len(channelData))

	for _, channel := range sortedChannels(channelData) {
		messages := channelData[channel]
		r.scoreMessages(ctx, messages)
		allMessages = append(allMessages, messages...)
		totalMessages += len(messages)

		daily := r.tracker.AggregateDaily(channel, messages)
		if len(daily) == 0 {
			if r.logger != nil {
				r.logger.WithField("channel", channel).Info("No daily metrics for channel, skipping")
			}
			continue
		}
		dailyMetrics[channel] = daily
		trends[channel] = engagement.AnalyzeTrends(channel, daily, r.cfg.TrendConfig)
		analyzed = append(analyzed, channel)

		if r.metrics != nil {
			r.metrics.MessagesAnalyzed.WithLabelValues(channel).Add(float64(len(messages)))
			r.metrics.ChannelSentiment.WithLabelValues(channel).Set(trends[channel].RecentAvgSentiment)
		}
	}

	alerts := r.detector.DetectPatterns(dailyMetrics, trends)
	assessment := r.detector.Assess(alerts)
	if r.metrics != nil {
		for channel, alert := range alerts {
			r.metrics.BurnoutRiskScore.WithLabelValues(channel).Set(alert.RiskScore)
		}
		for _, channel := range failed {
			r.metrics.ChannelsFailed.WithLabelValues(channel).Inc()
		}
	}

	result := &models.RunResult{
		Metadata: models.RunMetadata{
			RunID:            runID,
			AnalysisDate:     started.In(r.location()).Format("2006-01-02"),
			DaysAnalyzed:     r.cfg.DaysBack,
			ChannelsAnalyzed: analyzed,
			FailedChannels:   failed,
			TotalMessages:    totalMessages,
			StartedAt:        started,
		},
		DailyMetrics:    dailyMetrics,
		Trends:          trends,
		BurnoutAlerts:   alerts,
		Assessment:      assessment,
		ActivityPattern: engagement.BuildActivityPattern(allMessages, r.cfg.Location),
		Summary:         engagement.BuildSummary(dailyMetrics),
	}

	if err := r.store.StoreRunSnapshot(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to persist run snapshot: %w", err)
	}

	if r.cfg.WriteReports && r.renderer != nil {
		report := r.generator.GenerateWeeklyReport(result)
		paths, err := r.renderer.SaveAll(report)
		if err != nil {
			// reports are best effort once the snapshot is stored
			if r.logger != nil {
				r.logger.WithError(err).Warn("Failed to write report files")
			}
		}
		result.ReportPaths = paths
	}

	if _, err := r.store.CleanupOldData(ctx, r.cfg.RetentionDays); err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Warn("Retention cleanup failed")
		}
	}

	result.Metadata.FinishedAt = time.Now()
	return result, nil
}

// scoreMessages attaches sentiment results in place. Scoring uses the
// fallback lexicon when the primary backend fails, so per-message errors
// never surface here.
func (r *Runner) scoreMessages(ctx context.Context, messages []models.Message) {
	for i := range messages {
		res := r.analyzer.AnalyzeMessage(ctx, messages[i].Text)
		res.ReactionSentiment, res.ReactionCount = r.analyzer.AnalyzeReactions(messages[i].Reactions)
		messages[i].Sentiment = &res
	}
}

func (r *Runner) location() *time.Location {
	if r.cfg.Location != nil {
		return r.cfg.Location
	}
	return time.Local
}

func sortedChannels(data map[string][]models.Message) []string {
	channels := make([]string, 0, len(data))
	for ch := range data {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels
}
