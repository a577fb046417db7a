package reports

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/VarunAIFund/pulse/internal/models"
)

// Renderer writes reports to disk in JSON, CSV and HTML formats
type Renderer struct {
	dir string
}

func NewRenderer(dir string) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &Renderer{dir: dir}, nil
}

// SaveJSON writes the full report and returns its path
func (r *Renderer) SaveJSON(report *Report) (string, error) {
	path := filepath.Join(r.dir, fmt.Sprintf("engagement_report_%s.json", r.stamp(report)))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write JSON report: %w", err)
	}
	return path, nil
}

// SaveCSV writes the per-channel summary table and returns its path
func (r *Renderer) SaveCSV(report *Report) (string, error) {
	path := filepath.Join(r.dir, fmt.Sprintf("engagement_summary_%s.csv", r.stamp(report)))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Channel", "Avg_Sentiment", "Avg_Engagement", "Total_Messages", "Sentiment_Trend", "Risk_Level"}); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, channel := range sortedDetailKeys(report.ChannelDetails) {
		detail := report.ChannelDetails[channel]
		risk := models.RiskLow
		if alert, ok := report.BurnoutAlerts[channel]; ok {
			risk = alert.RiskLevel
		}

		totalMessages := 0
		for _, m := range detail.DailyBreakdown {
			totalMessages += m.MessageCount
		}

		record := []string{
			channel,
			strconv.FormatFloat(detail.SummaryStats.AvgDailySentiment, 'f', 3, 64),
			strconv.FormatFloat(detail.SummaryStats.AvgEngagementScore, 'f', 3, 64),
			strconv.Itoa(totalMessages),
			orStable(detail.Trends.SentimentTrend),
			risk,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV report: %w", err)
	}
	return path, nil
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Team Engagement Dashboard</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background: #2c3e50; color: white; padding: 20px; border-radius: 8px; }
        .summary { background: #ecf0f1; padding: 15px; margin: 20px 0; border-radius: 8px; }
        .metric { display: inline-block; margin: 10px; padding: 15px; background: white; border-radius: 5px; min-width: 200px; }
        .alert-high { background: #e74c3c; color: white; }
        .alert-medium { background: #f39c12; color: white; }
        .alert-low { background: #27ae60; color: white; }
        .channel-details { margin: 20px 0; padding: 15px; border: 1px solid #ddd; border-radius: 8px; }
        .insights { background: #3498db; color: white; padding: 15px; border-radius: 8px; margin: 20px 0; }
        .recommendations { background: #9b59b6; color: white; padding: 15px; border-radius: 8px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Team Engagement Dashboard</h1>
        <p>Generated: {{.Report.Metadata.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
        <p>Period: {{.Report.Metadata.PeriodStart}} to {{.Report.Metadata.PeriodEnd}}</p>
    </div>

    <div class="summary">
        <h2>Executive Summary</h2>
        <div class="metric"><strong>Channels Monitored:</strong> {{.Report.ExecutiveSummary.KeyMetrics.ChannelsMonitored}}</div>
        <div class="metric"><strong>Total Messages:</strong> {{.Report.ExecutiveSummary.KeyMetrics.TotalMessages}}</div>
        <div class="metric"><strong>Overall Sentiment:</strong> {{.Report.ExecutiveSummary.KeyMetrics.OverallSentimentScore}}</div>
        <div class="metric"><strong>Overall Engagement:</strong> {{.Report.ExecutiveSummary.KeyMetrics.OverallEngagementScore}}</div>
    </div>

    <div class="insights">
        <h2>Key Insights</h2>
        <ul>{{range .Report.ExecutiveSummary.KeyInsights}}<li>{{.}}</li>{{end}}</ul>
    </div>

    <div class="recommendations">
        <h2>Recommendations</h2>
        <ul>{{range .Report.Recommendations}}<li>{{.}}</li>{{end}}</ul>
    </div>

    <div>
        <h2>Channel Details</h2>
        {{range .Channels}}
        <div class="channel-details alert-{{.RiskLevel}}">
            <h3>{{.Name}}</h3>
            <p><strong>Average Sentiment:</strong> {{printf "%.3f" .Stats.AvgDailySentiment}}</p>
            <p><strong>Average Engagement:</strong> {{printf "%.3f" .Stats.AvgEngagementScore}}</p>
            <p><strong>Daily Messages:</strong> {{printf "%.1f" .Stats.AvgDailyMessages}}</p>
            <p><strong>Risk Level:</strong> {{.RiskLevelUpper}}</p>
        </div>
        {{end}}
    </div>
</body>
</html>`))

type dashboardChannel struct {
	Name           string
	Stats          ChannelStats
	RiskLevel      string
	RiskLevelUpper string
}

type dashboardData struct {
	Report   *Report
	Channels []dashboardChannel
}

// SaveHTML renders the dashboard page and returns its path
func (r *Renderer) SaveHTML(report *Report) (string, error) {
	path := filepath.Join(r.dir, fmt.Sprintf("engagement_dashboard_%s.html", r.stamp(report)))

	data := dashboardData{Report: report}
	for _, channel := range sortedDetailKeys(report.ChannelDetails) {
		detail := report.ChannelDetails[channel]
		risk := models.RiskLow
		if alert, ok := report.BurnoutAlerts[channel]; ok {
			risk = alert.RiskLevel
		}
		data.Channels = append(data.Channels, dashboardChannel{
			Name:           channel,
			Stats:          detail.SummaryStats,
			RiskLevel:      risk,
			RiskLevelUpper: strings.ToUpper(risk),
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create HTML report: %w", err)
	}
	defer f.Close()

	if err := dashboardTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}
	return path, nil
}

// SaveAll renders every format and returns the written paths
func (r *Renderer) SaveAll(report *Report) ([]string, error) {
	var paths []string
	for _, save := range []func(*Report) (string, error){r.SaveJSON, r.SaveCSV, r.SaveHTML} {
		path, err := save(report)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (r *Renderer) stamp(report *Report) string {
	return report.Metadata.GeneratedAt.Format("20060102_150405")
}

func sortedDetailKeys(m map[string]ChannelDetail) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
