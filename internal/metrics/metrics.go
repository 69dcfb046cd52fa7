// Package metrics 通过 Prometheus 暴露仪表盘计数。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ruleforty"

// Recorder 接收仪表盘事件，实现必须并发安全。
type Recorder interface {
	Submission(result string)
	ChapterAdvance()
	PanelResize()
	SessionCreated()
	HTTPRequest(route string, status int, elapsed time.Duration)
}

// Noop 丢弃所有事件。
type Noop struct{}

func (Noop) Submission(string)                      {}
func (Noop) ChapterAdvance()                        {}
func (Noop) PanelResize()                           {}
func (Noop) SessionCreated()                        {}
func (Noop) HTTPRequest(string, int, time.Duration) {}

// Prom 使用独立的 registry，多个实例之间互不冲突。
type Prom struct {
	registry        *prometheus.Registry
	submissions     *prometheus.CounterVec
	chapterAdvances prometheus.Counter
	panelResizes    prometheus.Counter
	sessionsCreated prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewProm 注册所有 collector。activeSessions 非 nil 时作为
// ruleforty_active_sessions gauge 的数据来源。
func NewProm(activeSessions func() int) *Prom {
	reg := prometheus.NewRegistry()
	p := &Prom{
		registry: reg,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Company submissions by result.",
		}, []string{"result"}),
		chapterAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chapter_advances_total",
			Help:      "Next-chapter clicks that moved the reader.",
		}),
		panelResizes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panel_resizes_total",
			Help:      "Chapter panel height changes.",
		}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Browser sessions created.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(
		p.submissions,
		p.chapterAdvances,
		p.panelResizes,
		p.sessionsCreated,
		p.httpRequests,
		p.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if activeSessions != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Live browser sessions.",
		}, func() float64 { return float64(activeSessions()) }))
	}
	return p
}

func (p *Prom) Registry() *prometheus.Registry { return p.registry }

// Handler 以 Prometheus 文本格式输出 registry。
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func (p *Prom) Submission(result string) {
	if result == "" {
		result = "unknown"
	}
	p.submissions.WithLabelValues(result).Inc()
}

func (p *Prom) ChapterAdvance() { p.chapterAdvances.Inc() }

func (p *Prom) PanelResize() { p.panelResizes.Inc() }

func (p *Prom) SessionCreated() { p.sessionsCreated.Inc() }

func (p *Prom) HTTPRequest(route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
