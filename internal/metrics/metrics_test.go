package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordScan_Success_IncrementsCounter はスキャン成功カウンタが増加することを検証する。
func TestRecordScan_Success_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordScan("reddit", true, 100*time.Millisecond)
	c.RecordScan("reddit", true, 200*time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "beacon_scan_success_total" {
			found = true
			if len(mf.GetMetric()) != 1 {
				t.Fatalf("expected 1 metric, got %d", len(mf.GetMetric()))
			}
			val := mf.GetMetric()[0].GetCounter().GetValue()
			if val != 2 {
				t.Errorf("scan_success_total = %v, want 2", val)
			}
			label := mf.GetMetric()[0].GetLabel()[0].GetValue()
			if label != "reddit" {
				t.Errorf("platform label = %q, want %q", label, "reddit")
			}
		}
	}
	if !found {
		t.Error("beacon_scan_success_total metric not found")
	}
}

// TestRecordScan_Failure_IncrementsFailCounter はスキャン失敗カウンタが増加することを検証する。
func TestRecordScan_Failure_IncrementsFailCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordScan("github", false, 50*time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "beacon_scan_fail_total" {
			found = true
			val := mf.GetMetric()[0].GetCounter().GetValue()
			if val != 1 {
				t.Errorf("scan_fail_total = %v, want 1", val)
			}
		}
	}
	if !found {
		t.Error("beacon_scan_fail_total metric not found")
	}
}

// TestRecordScan_ObservesLatencyHistogram はスキャンレイテンシのヒストグラムに値が記録されることを検証する。
func TestRecordScan_ObservesLatencyHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordScan("reddit", true, 100*time.Millisecond)
	c.RecordScan("github", false, 2*time.Second)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "beacon_scan_latency_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			// 成功・失敗の両方でレイテンシを観測する
			if h.GetSampleCount() != 2 {
				t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
			}
			// 合計は0.1 + 2.0 = 2.1秒
			if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
				t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
			}
		}
	}
	if !found {
		t.Error("beacon_scan_latency_seconds metric not found")
	}
}

// TestRecordOutcome_IncrementsCounterWithLabels は処理結果カウンタがラベル付きで増加することを検証する。
func TestRecordOutcome_IncrementsCounterWithLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOutcome("reddit", "stored")
	c.RecordOutcome("reddit", "stored")
	c.RecordOutcome("reddit", "duplicate")
	c.RecordOutcome("github", "below_threshold")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "beacon_post_outcome_total" {
			found = true
			if len(mf.GetMetric()) != 3 {
				t.Fatalf("expected 3 label combinations, got %d", len(mf.GetMetric()))
			}
			for _, m := range mf.GetMetric() {
				labels := map[string]string{}
				for _, l := range m.GetLabel() {
					labels[l.GetName()] = l.GetValue()
				}
				val := m.GetCounter().GetValue()
				key := labels["platform"] + "/" + labels["outcome"]
				switch key {
				case "reddit/stored":
					if val != 2 {
						t.Errorf("post_outcome_total{reddit,stored} = %v, want 2", val)
					}
				case "reddit/duplicate":
					if val != 1 {
						t.Errorf("post_outcome_total{reddit,duplicate} = %v, want 1", val)
					}
				case "github/below_threshold":
					if val != 1 {
						t.Errorf("post_outcome_total{github,below_threshold} = %v, want 1", val)
					}
				default:
					t.Errorf("unexpected label combination: %s", key)
				}
			}
		}
	}
	if !found {
		t.Error("beacon_post_outcome_total metric not found")
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	// いくつかのメトリクスを記録
	c.RecordScan("reddit", true, 500*time.Millisecond)
	c.RecordScan("github", false, 100*time.Millisecond)
	c.RecordOutcome("reddit", "stored")

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	// Prometheus形式のメトリクスが含まれていることを確認
	expectedMetrics := []string{
		"beacon_scan_success_total",
		"beacon_scan_fail_total",
		"beacon_post_outcome_total",
		"beacon_scan_latency_seconds",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestCollector_ImplementsMetricsCollectorInterface はCollectorがMetricsCollectorインターフェースを実装することを検証する。
func TestCollector_ImplementsMetricsCollectorInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ MetricsCollector = NewCollector(reg)
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.RecordScan("reddit", true, time.Millisecond)
	c2.RecordScan("reddit", true, time.Millisecond)
	c2.RecordScan("reddit", true, time.Millisecond)

	metrics1, _ := reg1.Gather()
	metrics2, _ := reg2.Gather()

	var val1, val2 float64
	for _, mf := range metrics1 {
		if mf.GetName() == "beacon_scan_success_total" {
			val1 = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	for _, mf := range metrics2 {
		if mf.GetName() == "beacon_scan_success_total" {
			val2 = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}

	if val1 != 1 {
		t.Errorf("reg1 scan_success = %v, want 1", val1)
	}
	if val2 != 2 {
		t.Errorf("reg2 scan_success = %v, want 2", val2)
	}
}
