// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// スキャンワーカーから利用する。
type MetricsCollector interface {
	RecordScan(platform string, success bool, duration time.Duration)
	RecordOutcome(platform string, outcome string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	scanSuccess *prometheus.CounterVec
	scanFail    *prometheus.CounterVec
	postOutcome *prometheus.CounterVec
	scanLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		scanSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_scan_success_total",
			Help: "プラットフォーム別のスキャン成功の合計数",
		}, []string{"platform"}),
		scanFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_scan_fail_total",
			Help: "プラットフォーム別のスキャン失敗の合計数",
		}, []string{"platform"}),
		postOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_post_outcome_total",
			Help: "プラットフォーム・処理結果別の投稿処理数",
		}, []string{"platform", "outcome"}),
		scanLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beacon_scan_latency_seconds",
			Help:    "スキャンサイクルのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.scanSuccess,
		c.scanFail,
		c.postOutcome,
		c.scanLatency,
	)

	return c
}

// RecordScan はスキャンサイクルの成否と所要時間を記録する。
func (c *Collector) RecordScan(platform string, success bool, duration time.Duration) {
	if success {
		c.scanSuccess.WithLabelValues(platform).Inc()
	} else {
		c.scanFail.WithLabelValues(platform).Inc()
	}
	c.scanLatency.Observe(duration.Seconds())
}

// RecordOutcome は投稿1件の処理結果を記録する。
func (c *Collector) RecordOutcome(platform string, outcome string) {
	c.postOutcome.WithLabelValues(platform, outcome).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
