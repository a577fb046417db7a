package main

import (
	"context"
	"time"

	"github.com/VarunAIFund/pulse/internal/collector"
	"github.com/VarunAIFund/pulse/internal/handlers"
	"github.com/VarunAIFund/pulse/internal/metrics"
	"github.com/VarunAIFund/pulse/internal/pipeline"
	"github.com/VarunAIFund/pulse/internal/reports"
	"github.com/VarunAIFund/pulse/internal/scheduler"
	"github.com/VarunAIFund/pulse/internal/sentiment"
	"github.com/VarunAIFund/pulse/internal/storage"
	"github.com/VarunAIFund/pulse/pkg/config"
	"github.com/VarunAIFund/pulse/pkg/database"
	"github.com/VarunAIFund/pulse/pkg/logging"
	"github.com/VarunAIFund/pulse/pkg/monitoring"
	"github.com/VarunAIFund/pulse/pkg/server"
	"github.com/VarunAIFund/pulse/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("pulse")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Pulse (Team Sentiment Analysis)")

	dbURL := config.RequireEnv("DATABASE_URL")
	slackToken := config.RequireEnv("SLACK_BOT_TOKEN")
	openaiKey := config.GetEnv("OPENAI_API_KEY", "")
	openaiModel := config.GetEnv("OPENAI_MODEL", "gpt-4o-mini")
	reportsDir := config.GetEnv("REPORTS_DIR", "reports")

	dbConfig := database.ConfigFromEnv()
	dbConfig.URL = dbURL
	db := database.MustConnect(dbConfig, logger)
	defer func() { _ = db.Close() }()

	store := storage.NewStore(db, logger)
	if err := store.InitSchema(context.Background()); err != nil {
		logger.WithError(err).Fatal("Failed to initialize database schema")
	}

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("pulse", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("pulse", version.Version, version.GitCommit)

	healthChecker.AddCheck("postgres", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL":    dbURL,
		"SLACK_BOT_TOKEN": slackToken,
	}))

	dbQueries, dbQueryDuration, dbConnections := metricsCollector.CreateDatabaseMetrics()
	store.SetMetrics(dbQueries, dbQueryDuration)
	go func() {
		for range time.Tick(30 * time.Second) {
			dbConnections.WithLabelValues("postgres").Set(float64(db.Stats().OpenConnections))
		}
	}()

	serviceMetrics := &metrics.Metrics{
		AnalysisRuns:     metricsCollector.NewCounter("analysis_runs_total", "Analysis runs executed", []string{"status"}),
		RunDuration:      metricsCollector.NewHistogram("analysis_run_duration_seconds", "Analysis run duration", []string{"status"}, nil),
		MessagesAnalyzed: metricsCollector.NewCounter("messages_analyzed_total", "Messages scored for sentiment", []string{"channel"}),
		ChannelsFailed:   metricsCollector.NewCounter("channels_failed_total", "Channels that failed collection", []string{"channel"}),
		ChannelSentiment: metricsCollector.NewGauge("channel_sentiment_score", "Latest average sentiment per channel", []string{"channel"}),
		BurnoutRiskScore: metricsCollector.NewGauge("burnout_risk_score", "Latest burnout risk score per channel", []string{"channel"}),
	}

	// Sentiment backends. Without an OpenAI key the lexicon scorer is
	// both primary and fallback.
	var primary sentiment.TextScorer
	if openaiKey != "" {
		primary = sentiment.NewOpenAIScorer(openaiKey, openaiModel)
		logger.WithField("model", openaiModel).Info("Using OpenAI sentiment backend")
	} else {
		primary = sentiment.NewLexiconScorer()
		logger.Warn("OPENAI_API_KEY not set, using lexicon sentiment only")
	}
	analyzer := sentiment.NewAnalyzer(sentiment.DefaultConfig(), primary, nil, logger)

	slackClient := collector.NewSlackClient(slackToken, logger,
		collector.WithRateLimitDelay(config.GetEnvDuration("SLACK_RATE_LIMIT_DELAY", time.Second)))

	healthChecker.AddCheck("slack", func() monitoring.CheckResult {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		start := time.Now()
		if err := slackClient.TestConnection(ctx); err != nil {
			return monitoring.CheckResult{Status: monitoring.StatusDegraded, Message: err.Error()}
		}
		return monitoring.CheckResult{Status: monitoring.StatusHealthy, Latency: time.Since(start).String()}
	})

	renderer, err := reports.NewRenderer(reportsDir)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create reports directory")
	}

	trendConfig := pipeline.DefaultConfig().TrendConfig
	trendConfig.SlopeThreshold = config.GetEnvFloat("TREND_SLOPE_THRESHOLD", trendConfig.SlopeThreshold)

	burnoutConfig := pipeline.DefaultConfig().BurnoutConfig
	burnoutConfig.SentimentThreshold = config.GetEnvFloat("BURNOUT_SENTIMENT_THRESHOLD", burnoutConfig.SentimentThreshold)

	runnerConfig := pipeline.Config{
		Channels:      config.GetEnvStringSlice("PULSE_CHANNELS", []string{"general"}),
		DaysBack:      config.GetEnvInt("DAYS_BACK", 7),
		RetentionDays: config.GetEnvInt("RETENTION_DAYS", 90),
		TrendConfig:   trendConfig,
		BurnoutConfig: burnoutConfig,
		Location:      time.Local,
		WriteReports:  config.GetEnvBool("WRITE_REPORTS", true),
	}
	runner := pipeline.NewRunner(runnerConfig, slackClient, analyzer, store, renderer, logger, serviceMetrics)

	// Scheduled daily analysis
	taskScheduler := scheduler.NewScheduler(runner, config.GetEnvDuration("ANALYSIS_INTERVAL", 24*time.Hour), logger)
	taskScheduler.Start()
	defer taskScheduler.Stop()

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "pulse", healthChecker, metricsCollector)

	handlers.Init(runner, store, slackClient, reportsDir, logger)

	api := router.Group("/api")
	{
		api.GET("/status", handlers.GetStatus)
		api.POST("/analyze", handlers.StartAnalysis)
		api.GET("/results", handlers.GetResults)
		api.GET("/metrics/daily", handlers.GetDailyMetrics)
		api.GET("/trends", handlers.GetTrends)
		api.GET("/alerts", handlers.GetAlerts)
		api.GET("/reports", handlers.ListReports)
		api.GET("/reports/:filename", handlers.GetReport)
	}

	// Start HTTP server with graceful shutdown
	serverConfig := server.DefaultConfig("pulse", "18090")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
}
