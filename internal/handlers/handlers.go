package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VarunAIFund/pulse/internal/models"
	"github.com/VarunAIFund/pulse/internal/pipeline"
	"github.com/VarunAIFund/pulse/pkg/logging"
)

// RunnerAPI is the slice of the pipeline runner the web layer needs
type RunnerAPI interface {
	Run(ctx context.Context) (*models.RunResult, error)
	IsRunning() bool
	LastResult() *models.RunResult
}

// StoreAPI is the slice of the storage layer the web layer needs
type StoreAPI interface {
	DailyMetricsHistory(ctx context.Context, channel string, days int) ([]models.DailyMetric, error)
	TrendHistory(ctx context.Context, channel string, days int) ([]models.TrendResult, error)
	BurnoutHistory(ctx context.Context, days int) ([]models.BurnoutAlert, error)
	Stats(ctx context.Context) (*models.DatabaseStats, error)
}

// ConnectionTester verifies the collection backend is reachable
type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}

var (
	runner     RunnerAPI
	store      StoreAPI
	slack      ConnectionTester
	reportsDir string
	logger     logging.Logger
)

// Init initializes the handlers package with its collaborators
func Init(r RunnerAPI, s StoreAPI, tester ConnectionTester, dir string, log logging.Logger) {
	runner = r
	store = s
	slack = tester
	reportsDir = dir
	logger = log
}

// ErrorResponse is the common error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetStatus reports service readiness, backend connectivity and storage stats
func GetStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	slackConnected := false
	if slack != nil {
		slackConnected = slack.TestConnection(ctx) == nil
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to read database stats")
		stats = &models.DatabaseStats{TableCounts: map[string]int{}}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":               "ready",
		"slack_connected":      slackConnected,
		"analysis_in_progress": runner.IsRunning(),
		"database_stats":       stats,
		"timestamp":            time.Now().Format(time.RFC3339),
	})
}

// StartAnalysis kicks off an analysis run in the background. A run in
// flight is rejected with 409 rather than queued.
func StartAnalysis(c *gin.Context) {
	if runner.IsRunning() {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Analysis already in progress"})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := runner.Run(ctx); err != nil && err != pipeline.ErrRunInProgress {
			logger.WithError(err).Error("Background analysis failed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "started",
		"message": "Analysis started",
	})
}

// GetResults returns the last completed run snapshot
func GetResults(c *gin.Context) {
	result := runner.LastResult()
	if result == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  "no_data",
			"message": "No analysis results available",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   result,
	})
}

// GetDailyMetrics returns the stored daily metrics for one channel
func GetDailyMetrics(c *gin.Context) {
	channel := c.Query("channel")
	if channel == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "channel parameter is required"})
		return
	}
	days := intQuery(c, "days", 30)

	metrics, err := store.DailyMetricsHistory(c.Request.Context(), channel, days)
	if err != nil {
		logger.WithError(err).Error("Failed to query daily metrics")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to query daily metrics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"channel": channel,
		"days":    days,
		"metrics": metrics,
	})
}

// GetTrends returns the stored trend history for one channel
func GetTrends(c *gin.Context) {
	channel := c.Query("channel")
	if channel == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "channel parameter is required"})
		return
	}
	days := intQuery(c, "days", 30)

	trends, err := store.TrendHistory(c.Request.Context(), channel, days)
	if err != nil {
		logger.WithError(err).Error("Failed to query trends")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to query trends"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"channel": channel,
		"days":    days,
		"trends":  trends,
	})
}

// GetAlerts returns recent burnout alerts
func GetAlerts(c *gin.Context) {
	days := intQuery(c, "days", 30)

	alerts, err := store.BurnoutHistory(c.Request.Context(), days)
	if err != nil {
		logger.WithError(err).Error("Failed to query burnout alerts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to query burnout alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"days":   days,
		"alerts": alerts,
	})
}

type reportInfo struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Type     string    `json:"type"`
}

// ListReports lists the generated report files, newest first
func ListReports(c *gin.Context) {
	entries, err := os.ReadDir(reportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, gin.H{"reports": []reportInfo{}})
			return
		}
		logger.WithError(err).Error("Failed to list reports")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list reports"})
		return
	}

	reports := []reportInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "engagement_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		reports = append(reports, reportInfo{
			Filename: entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
			Type:     strings.TrimPrefix(filepath.Ext(entry.Name()), "."),
		})
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Modified.After(reports[j].Modified) })

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// GetReport serves one report file by name
func GetReport(c *gin.Context) {
	filename := c.Param("filename")
	if filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid report name"})
		return
	}

	path := filepath.Join(reportsDir, filename)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Report not found"})
		return
	}
	c.File(path)
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
