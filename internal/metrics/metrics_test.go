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

// counterValue はレジストリから指定メトリクスのカウンタ値を取り出す。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

// TestRecordCompletion_IncrementsCounter は完了カウンタが増加することを検証する。
func TestRecordCompletion_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCompletion()
	c.RecordCompletion()

	if got := counterValue(t, reg, "sidequest_completions_total"); got != 2 {
		t.Errorf("completions_total = %v, want 2", got)
	}
}

// TestRecordAssignment_EmptyCategoryBecomesAll はカテゴリなし割り当てがallで集計されることを検証する。
func TestRecordAssignment_EmptyCategoryBecomesAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAssignment("")
	c.RecordAssignment("fitness")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	labels := map[string]bool{}
	for _, mf := range metrics {
		if mf.GetName() != "sidequest_assignments_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "category" {
					labels[l.GetValue()] = true
				}
			}
		}
	}
	if !labels["all"] || !labels["fitness"] {
		t.Errorf("labels = %v, want all and fitness", labels)
	}
}

// TestRecordWebhookLatency_Observes はヒストグラムに記録されることを検証する。
func TestRecordWebhookLatency_Observes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordWebhookLatency(150 * time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "sidequest_webhook_latency_seconds" {
			found = true
			if count := mf.GetMetric()[0].GetHistogram().GetSampleCount(); count != 1 {
				t.Errorf("sample count = %d, want 1", count)
			}
		}
	}
	if !found {
		t.Error("sidequest_webhook_latency_seconds metric not found")
	}
}

// TestHandler_ServesExposition は/metricsハンドラーがPrometheus形式を返すことを検証する。
func TestHandler_ServesExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordWebhookSuccess()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET returned error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "sidequest_webhook_success_total") {
		t.Error("exposition does not contain sidequest_webhook_success_total")
	}
}
