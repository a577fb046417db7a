package scheduler

import (
	"context"
	"time"

	"github.com/VarunAIFund/pulse/internal/pipeline"
	"github.com/VarunAIFund/pulse/pkg/logging"
)

// Scheduler triggers periodic analysis runs
type Scheduler struct {
	logger   logging.Logger
	runner   *pipeline.Runner
	interval time.Duration
	ticker   *time.Ticker
	stopChan chan bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(runner *pipeline.Runner, interval time.Duration, logger logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		logger:   logger,
		runner:   runner,
		interval: interval,
		stopChan: make(chan bool),
	}
}

// Start begins the scheduled runs
func (s *Scheduler) Start() {
	s.logger.WithFields(logging.Fields{
		"interval": s.interval,
	}).Info("Starting analysis scheduler")

	s.ticker = time.NewTicker(s.interval)
	go s.runLoop()

	// Run an initial analysis shortly after startup (in background)
	go func() {
		time.Sleep(10 * time.Second) // Wait for service to fully start
		s.logger.Info("Running initial analysis")
		s.trigger()
	}()
}

// Stop stops all scheduled runs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping analysis scheduler")

	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopChan)
}

func (s *Scheduler) runLoop() {
	for {
		select {
		case <-s.ticker.C:
			s.logger.Info("Running scheduled analysis")
			s.trigger()
		case <-s.stopChan:
			s.logger.Info("Stopping analysis run loop")
			return
		}
	}
}

func (s *Scheduler) trigger() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if _, err := s.runner.Run(ctx); err != nil {
		if err == pipeline.ErrRunInProgress {
			s.logger.Warn("Skipping scheduled analysis, a run is already in progress")
			return
		}
		s.logger.WithError(err).Error("Scheduled analysis failed")
	}
}
