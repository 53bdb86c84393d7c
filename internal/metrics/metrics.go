// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordRegistration()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordRecordCreated()
	RecordRecordUpdated()
	RecordRecordDeleted()
	RecordShortenerFallback()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations     prometheus.Counter
	loginSuccess      prometheus.Counter
	loginFail         prometheus.Counter
	recordsCreated    prometheus.Counter
	recordsUpdated    prometheus.Counter
	recordsDeleted    prometheus.Counter
	shortenerFallback prometheus.Counter
	httpStatus        *prometheus.CounterVec
	requestLatency    prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medchart_registrations_total",
			Help: "アカウント登録成功の合計数",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medchart_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medchart_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		recordsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medchart_records_created_total",
			Help: "作成された服薬記録の合計数",
		}),
		recordsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medchart_records_updated_total",
			Help: "更新された服薬記録の合計数",
		}),
		recordsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medchart_records_deleted_total",
			Help: "削除された服薬記録の合計数",
		}),
		shortenerFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medchart_shortener_fallback_total",
			Help: "URL短縮失敗により元のURLへフォールバックした合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medchart_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "medchart_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.loginSuccess,
		c.loginFail,
		c.recordsCreated,
		c.recordsUpdated,
		c.recordsDeleted,
		c.shortenerFallback,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordRegistration はアカウント登録成功を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordRecordCreated は服薬記録の作成を記録する。
func (c *Collector) RecordRecordCreated() {
	c.recordsCreated.Inc()
}

// RecordRecordUpdated は服薬記録の更新を記録する。
func (c *Collector) RecordRecordUpdated() {
	c.recordsUpdated.Inc()
}

// RecordRecordDeleted は服薬記録の削除を記録する。
func (c *Collector) RecordRecordDeleted() {
	c.recordsDeleted.Inc()
}

// RecordShortenerFallback はURL短縮失敗によるフォールバックを記録する。
func (c *Collector) RecordShortenerFallback() {
	c.shortenerFallback.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
