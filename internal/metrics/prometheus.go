package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "doxyrst"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	fileDuration  *prom.HistogramVec
	files         *prom.CounterVec
	buildDuration prom.Histogram
	builds        *prom.CounterVec
	snippets      *prom.CounterVec
	resources     prom.Counter
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		fileDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "file_duration_seconds",
			Help:      "Time spent converting one html file",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"outcome"}),
		files: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Html files handled by outcome",
		}, []string{"outcome"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of a whole directory build",
			Buckets:   prom.DefBuckets,
		}),
		builds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Directory builds by result",
		}, []string{"result"}),
		snippets: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_with_markup_total",
			Help:      "Converted documents by embedded markup format",
		}, []string{"format"}),
		resources: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "resources_copied_total",
			Help:      "Static resources copied to the sphinx output",
		}),
	}
	reg.MustRegister(pr.fileDuration, pr.files, pr.buildDuration, pr.builds, pr.snippets, pr.resources)
	return pr
}

func (p *PrometheusRecorder) ObserveFile(outcome FileOutcome, d time.Duration) {
	if p == nil {
		return
	}
	p.files.WithLabelValues(string(outcome)).Inc()
	if outcome != FileSkipped {
		p.fileDuration.WithLabelValues(string(outcome)).Observe(d.Seconds())
	}
}

func (p *PrometheusRecorder) ObserveBuild(_ string, d time.Duration, failed bool) {
	if p == nil {
		return
	}
	result := "success"
	if failed {
		result = "failed"
	}
	p.builds.WithLabelValues(result).Inc()
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncSnippets(format string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.snippets.WithLabelValues(format).Add(float64(n))
}

func (p *PrometheusRecorder) AddResourcesCopied(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.resources.Add(float64(n))
}

// HTTPHandler serves the metrics gathered by reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
