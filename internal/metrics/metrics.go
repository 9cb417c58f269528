package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 上传结果标签
const (
	ResultOK           = "ok"
	ResultSchemaError  = "schema_error"
	ResultEmptyPayload = "empty_payload"
	ResultError        = "error"
)

// Metrics 服务指标，nil值可安全调用
type Metrics struct {
	registry *prometheus.Registry

	uploads  *prometheus.CounterVec
	evicted  prometheus.Counter
	deleted  prometheus.Counter
	reports  *prometheus.CounterVec
	rows     prometheus.Histogram
	duration prometheus.Histogram
}

// New 创建指标并注册到独立的Registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "equip_uploads_total",
			Help: "Dataset uploads by result.",
		}, []string{"result"}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "equip_datasets_evicted_total",
			Help: "Datasets removed by the per-owner retention cap.",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "equip_datasets_deleted_total",
			Help: "Datasets removed by explicit delete requests.",
		}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "equip_reports_rendered_total",
			Help: "Reports rendered by format.",
		}, []string{"format"}),
		rows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "equip_upload_rows",
			Help:    "Number of data rows per accepted upload.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "equip_upload_duration_seconds",
			Help:    "Time from payload receipt to committed dataset.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}

	m.registry.MustRegister(
		m.uploads, m.evicted, m.deleted, m.reports, m.rows, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry 返回指标Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 暴露指标的HTTP处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveUpload 记录一次上传
func (m *Metrics) ObserveUpload(result string, rows int, seconds float64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
	if result == ResultOK {
		m.rows.Observe(float64(rows))
		m.duration.Observe(seconds)
	}
}

// AddEvicted 记录被保留上限淘汰的数据集数量
func (m *Metrics) AddEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.evicted.Add(float64(n))
}

// IncDeleted 记录一次显式删除
func (m *Metrics) IncDeleted() {
	if m == nil {
		return
	}
	m.deleted.Inc()
}

// IncReport 记录一次报告渲染
func (m *Metrics) IncReport(format string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(format).Inc()
}
