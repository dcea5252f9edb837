package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "folio"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	fetches        *prom.CounterVec
	fetchDuration  *prom.HistogramVec
	renderDuration *prom.HistogramVec
	exportedPages  *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil registry gets a fresh one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		fetches: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "content_fetches_total",
			Help:      "Content origin fetches by resource and result",
		}, []string{"resource", "result"}),
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "content_fetch_duration_seconds",
			Help:      "Duration of content origin fetches",
			Buckets:   prom.DefBuckets,
		}, []string{"resource"}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_render_duration_seconds",
			Help:      "Duration of full page renders",
			Buckets:   prom.DefBuckets,
		}, []string{"page"}),
		exportedPages: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "exported_pages_total",
			Help:      "Exported pages by outcome",
		}, []string{"result"}),
	}

	reg.MustRegister(pr.fetches, pr.fetchDuration, pr.renderDuration, pr.exportedPages)

	return pr
}

func (p *PrometheusRecorder) IncFetch(resource string, result ResultLabel) {
	if p == nil {
		return
	}
	p.fetches.WithLabelValues(resource, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveFetchDuration(resource string, d time.Duration) {
	if p == nil {
		return
	}
	p.fetchDuration.WithLabelValues(resource).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRenderDuration(page string, d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(page).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncExportedPage(result ResultLabel) {
	if p == nil {
		return
	}
	p.exportedPages.WithLabelValues(string(result)).Inc()
}

// HTTPHandler returns an http.Handler that serves the metrics in reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
