// Package monitor holds the observers that watch provider attempts, batches and pdf
// compression without taking part in any decision.
package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/pdf"
	"github.com/reusedev/cutout-hub/internal/modules/remover"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	attempts    *prometheus.CounterVec
	cost        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	batchItems  *prometheus.CounterVec
	pdfAttempts *prometheus.CounterVec
}

// NewMetrics registers its collectors on a fresh registry so several instances can coexist.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		gatherer: reg,
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cutout_provider_attempts_total",
			Help: "Provider attempts by outcome.",
		}, []string{"provider", "result"}),
		cost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cutout_provider_cost_dollars_total",
			Help: "Estimated spend on successful provider calls.",
		}, []string{"provider"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cutout_provider_duration_seconds",
			Help:    "Provider call latency.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cutout_batch_items_total",
			Help: "Batch items by outcome.",
		}, []string{"result"}),
		pdfAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdf_compression_attempts_total",
			Help: "PDF compression attempts by method and quality.",
		}, []string{"method", "quality", "within_budget"}),
	}
	reg.MustRegister(m.attempts, m.cost, m.duration, m.batchItems, m.pdfAttempts)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Update(event string, data interface{}) {
	switch event {
	case consts.EventProviderAttempt:
		a, ok := data.(cutout.Attempt)
		if !ok {
			return
		}
		switch {
		case a.Skipped:
			m.attempts.WithLabelValues(a.Provider, "skipped").Inc()
			return
		case a.Err != nil:
			m.attempts.WithLabelValues(a.Provider, "failure").Inc()
		default:
			m.attempts.WithLabelValues(a.Provider, "success").Inc()
			m.cost.WithLabelValues(a.Provider).Add(a.Cost)
		}
		m.duration.WithLabelValues(a.Provider).Observe(a.Duration.Seconds())
	case consts.EventBatchDone:
		o, ok := data.(remover.BatchOutcome)
		if !ok {
			return
		}
		m.batchItems.WithLabelValues("success").Add(float64(o.Successful))
		m.batchItems.WithLabelValues("failure").Add(float64(o.Failed))
	case consts.EventPDFAttempt:
		a, ok := data.(pdf.Attempt)
		if !ok {
			return
		}
		within := "false"
		if a.WithinBudget {
			within = "true"
		}
		m.pdfAttempts.WithLabelValues(a.Method.String(), string(a.Quality), within).Inc()
	}
}
