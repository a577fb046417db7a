package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VarunAIFund/pulse/internal/models"
	"github.com/VarunAIFund/pulse/pkg/logging"
)

type fakeRunner struct {
	running bool
	last    *models.RunResult
	ran     chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context) (*models.RunResult, error) {
	if f.ran != nil {
		close(f.ran)
	}
	return f.last, nil
}

func (f *fakeRunner) IsRunning() bool               { return f.running }
func (f *fakeRunner) LastResult() *models.RunResult { return f.last }

type fakeStore struct {
	metrics  []models.DailyMetric
	trends   []models.TrendResult
	alerts   []models.BurnoutAlert
	stats    *models.DatabaseStats
	statsErr error
	queryErr error
}

func (f *fakeStore) DailyMetricsHistory(ctx context.Context, channel string, days int) ([]models.DailyMetric, error) {
	return f.metrics, f.queryErr
}

func (f *fakeStore) TrendHistory(ctx context.Context, channel string, days int) ([]models.TrendResult, error) {
	return f.trends, f.queryErr
}

func (f *fakeStore) BurnoutHistory(ctx context.Context, days int) ([]models.BurnoutAlert, error) {
	return f.alerts, f.queryErr
}

func (f *fakeStore) Stats(ctx context.Context) (*models.DatabaseStats, error) {
	if f.stats == nil && f.statsErr == nil {
		return &models.DatabaseStats{TableCounts: map[string]int{}}, nil
	}
	return f.stats, f.statsErr
}

type fakeTester struct {
	err error
}

func (f *fakeTester) TestConnection(ctx context.Context) error { return f.err }

func setupRouter(t *testing.T, r RunnerAPI, s StoreAPI, tester ConnectionTester, dir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Init(r, s, tester, dir, logging.NewLogger())

	router := gin.New()
	router.GET("/api/status", GetStatus)
	router.POST("/api/analyze", StartAnalysis)
	router.GET("/api/results", GetResults)
	router.GET("/api/metrics/daily", GetDailyMetrics)
	router.GET("/api/trends", GetTrends)
	router.GET("/api/alerts", GetAlerts)
	router.GET("/api/reports", ListReports)
	router.GET("/api/reports/:filename", GetReport)
	return router
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetStatus(t *testing.T) {
	store := &fakeStore{stats: &models.DatabaseStats{
		TableCounts:  map[string]int{"daily_metrics": 12},
		EarliestDate: "2026-08-01",
		LatestDate:   "2026-08-27",
		ChannelCount: 2,
	}}
	router := setupRouter(t, &fakeRunner{running: true}, store, &fakeTester{}, t.TempDir())

	w := doRequest(router, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, true, body["slack_connected"])
	assert.Equal(t, true, body["analysis_in_progress"])
	stats := body["database_stats"].(map[string]interface{})
	counts := stats["table_counts"].(map[string]interface{})
	assert.Equal(t, float64(12), counts["daily_metrics"])
	assert.Equal(t, float64(2), stats["channel_count"])
}

func TestGetStatusSlackDown(t *testing.T) {
	router := setupRouter(t, &fakeRunner{}, &fakeStore{}, &fakeTester{err: errors.New("invalid_auth")}, t.TempDir())

	w := doRequest(router, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["slack_connected"])
}

func TestStartAnalysis(t *testing.T) {
	runner := &fakeRunner{ran: make(chan struct{})}
	router := setupRouter(t, runner, &fakeStore{}, &fakeTester{}, t.TempDir())

	w := doRequest(router, http.MethodPost, "/api/analyze")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "started")

	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("background run never started")
	}
}

func TestStartAnalysisRejectsConcurrent(t *testing.T) {
	router := setupRouter(t, &fakeRunner{running: true}, &fakeStore{}, &fakeTester{}, t.TempDir())

	w := doRequest(router, http.MethodPost, "/api/analyze")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already in progress")
}

func TestGetResultsNoData(t *testing.T) {
	router := setupRouter(t, &fakeRunner{}, &fakeStore{}, &fakeTester{}, t.TempDir())

	w := doRequest(router, http.MethodGet, "/api/results")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "no_data")
}

func TestGetResults(t *testing.T) {
	result := &models.RunResult{Metadata: models.RunMetadata{
		RunID:            "run-1",
		ChannelsAnalyzed: []string{"general"},
	}}
	router := setupRouter(t, &fakeRunner{last: result}, &fakeStore{}, &fakeTester{}, t.TempDir())

	w := doRequest(router, http.MethodGet, "/api/results")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "run-1")
	assert.Contains(t, w.Body.String(), "success")
}

func TestGetDailyMetricsRequiresChannel(t *testing.T) {
	router := setupRouter(t, &fakeRunner{}, &fakeStore{}, &fakeTester{}, t.TempDir())

	w := doRequest(router, http.MethodGet, "/api/metrics/daily")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDailyMetrics(t *testing.T) {
	store := &fakeStore{metrics: []models.DailyMetric{{Channel: "general", Date: "2026-08-27", MessageCount: 4}}}
	router := setupRouter(t, &fakeRunner{}, store, &fakeTester{}, t.TempDir())

	w := doRequest(router, http.MethodGet, "/api/metrics/daily?channel=general&days=7")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "general", body["channel"])
	assert.Equal(t, float64(7), body["days"])
}

func TestGetTrendsQueryError(t *testing.T) {
	router := setupRouter(t, &fakeRunner{}, &fakeStore{queryErr: errors.New("boom")}, &fakeTester{}, t.TempDir())

	w := doRequest(router, http.MethodGet, "/api/trends?channel=general")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetAlerts(t *testing.T) {
	store := &fakeStore{alerts: []models.BurnoutAlert{{Channel: "ops", RiskLevel: "high"}}}
	router := setupRouter(t, &fakeRunner{}, store, &fakeTester{}, t.TempDir())

	w := doRequest(router, http.MethodGet, "/api/alerts")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ops")
}

func TestListReports(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "engagement_report_20260827_090000.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))
	router := setupRouter(t, &fakeRunner{}, &fakeStore{}, &fakeTester{}, dir)

	w := doRequest(router, http.MethodGet, "/api/reports")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Reports []reportInfo `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Reports, 1)
	assert.Equal(t, "engagement_report_20260827_090000.json", body.Reports[0].Filename)
	assert.Equal(t, "json", body.Reports[0].Type)
}

func TestGetReport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "engagement_report_20260827_090000.json"), []byte(`{"ok":true}`), 0o644))
	router := setupRouter(t, &fakeRunner{}, &fakeStore{}, &fakeTester{}, dir)

	w := doRequest(router, http.MethodGet, "/api/reports/engagement_report_20260827_090000.json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
}

func TestGetReportNotFound(t *testing.T) {
	router := setupRouter(t, &fakeRunner{}, &fakeStore{}, &fakeTester{}, t.TempDir())

	w := doRequest(router, http.MethodGet, "/api/reports/engagement_report_missing.json")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReportRejectsTraversal(t *testing.T) {
	router := setupRouter(t, &fakeRunner{}, &fakeStore{}, &fakeTester{}, t.TempDir())

	w := doRequest(router, http.MethodGet, "/api/reports/..%2F..%2Fetc%2Fpasswd")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
