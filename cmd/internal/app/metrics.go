package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry and the auth counters. It implements
// the auth API's EventRecorder so handlers stay metrics-agnostic.
type Metrics struct {
	registry *prometheus.Registry

	logins    *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	revoked   prometheus.Counter
	swept     prometheus.Counter
}

// NewMetrics builds an isolated registry with Go runtime and process
// collectors plus the authd counters.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authd",
			Name:      "login_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authd",
			Name:      "refresh_total",
			Help:      "Refresh-token exchanges by result.",
		}, []string{"result"}),
		revoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authd",
			Name:      "revoked_tokens_total",
			Help:      "Refresh tokens revoked via logout-all.",
		}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authd",
			Name:      "cleanup_swept_total",
			Help:      "Expired refresh-token records removed by the janitor.",
		}),
	}
	reg.MustRegister(m.logins, m.refreshes, m.revoked, m.swept)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) LoginSucceeded() { m.logins.WithLabelValues("ok").Inc() }

func (m *Metrics) LoginFailed(reason string) { m.logins.WithLabelValues(reason).Inc() }

func (m *Metrics) RefreshSucceeded() { m.refreshes.WithLabelValues("ok").Inc() }

func (m *Metrics) RefreshFailed(reason string) { m.refreshes.WithLabelValues(reason).Inc() }

func (m *Metrics) TokensRevoked(n int64) { m.revoked.Add(float64(n)) }

func (m *Metrics) CleanupSwept(n int64) { m.swept.Add(float64(n)) }
