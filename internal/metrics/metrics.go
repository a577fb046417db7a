package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all Prometheus metrics for the engagement analysis service
type Metrics struct {
	AnalysisRuns     *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	MessagesAnalyzed *prometheus.CounterVec
	ChannelsFailed   *prometheus.CounterVec
	ChannelSentiment *prometheus.GaugeVec
	BurnoutRiskScore *prometheus.GaugeVec
}
