// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層と通知クライアントから利用する。
type MetricsCollector interface {
	RecordAssignment(category string)
	RecordAssignmentRejected(reason string)
	RecordCompletion()
	RecordCompletionRejected(reason string)
	RecordWebhookSuccess()
	RecordWebhookFailure()
	RecordWebhookLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	assignments        *prometheus.CounterVec
	assignmentRejected *prometheus.CounterVec
	completions        prometheus.Counter
	completionRejected *prometheus.CounterVec
	webhookSuccess     prometheus.Counter
	webhookFail        prometheus.Counter
	webhookLatency     prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sidequest_assignments_total",
			Help: "タスク割り当て成功のカテゴリ別合計数",
		}, []string{"category"}),
		assignmentRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sidequest_assignments_rejected_total",
			Help: "タスク割り当て拒否の理由別合計数",
		}, []string{"reason"}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sidequest_completions_total",
			Help: "タスク完了の合計数",
		}),
		completionRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sidequest_completions_rejected_total",
			Help: "タスク完了拒否の理由別合計数",
		}, []string{"reason"}),
		webhookSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sidequest_webhook_success_total",
			Help: "Webhook通知成功の合計数",
		}),
		webhookFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sidequest_webhook_fail_total",
			Help: "Webhook通知失敗の合計数",
		}),
		webhookLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sidequest_webhook_latency_seconds",
			Help:    "Webhook通知のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.assignments,
		c.assignmentRejected,
		c.completions,
		c.completionRejected,
		c.webhookSuccess,
		c.webhookFail,
		c.webhookLatency,
	)

	return c
}

// RecordAssignment はタスク割り当て成功を記録する。
// カテゴリ指定なしの割り当ては "all" として集計する。
func (c *Collector) RecordAssignment(category string) {
	if category == "" {
		category = "all"
	}
	c.assignments.WithLabelValues(category).Inc()
}

// RecordAssignmentRejected はタスク割り当て拒否を理由付きで記録する。
func (c *Collector) RecordAssignmentRejected(reason string) {
	c.assignmentRejected.WithLabelValues(reason).Inc()
}

// RecordCompletion はタスク完了を記録する。
func (c *Collector) RecordCompletion() {
	c.completions.Inc()
}

// RecordCompletionRejected はタスク完了拒否を理由付きで記録する。
func (c *Collector) RecordCompletionRejected(reason string) {
	c.completionRejected.WithLabelValues(reason).Inc()
}

// RecordWebhookSuccess はWebhook通知成功を記録する。
func (c *Collector) RecordWebhookSuccess() {
	c.webhookSuccess.Inc()
}

// RecordWebhookFailure はWebhook通知失敗を記録する。
func (c *Collector) RecordWebhookFailure() {
	c.webhookFail.Inc()
}

// RecordWebhookLatency はWebhook通知のレイテンシを記録する。
func (c *Collector) RecordWebhookLatency(duration time.Duration) {
	c.webhookLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。テストとメトリクス無効時に使用する。
type Nop struct{}

func (Nop) RecordAssignment(category string)       {}
func (Nop) RecordAssignmentRejected(reason string) {}
func (Nop) RecordCompletion()                      {}
func (Nop) RecordCompletionRejected(reason string) {}
func (Nop) RecordWebhookSuccess()                  {}
func (Nop) RecordWebhookFailure()                  {}
func (Nop) RecordWebhookLatency(d time.Duration)   {}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
