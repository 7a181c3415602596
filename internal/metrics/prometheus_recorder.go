package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	transformDuration *prom.HistogramVec
	transformResults  *prom.CounterVec
	pageDuration      prom.Histogram
	pageResults       *prom.CounterVec
	indexDuration     prom.Histogram
	indexEntries      prom.Gauge
	indexResults      *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them with reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		transformDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docpost",
			Name:      "transform_duration_seconds",
			Help:      "Duration of individual page transforms",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"transform"}),
		transformResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpost",
			Name:      "transform_results_total",
			Help:      "Transform invocations by outcome",
		}, []string{"transform", "result"}),
		pageDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docpost",
			Name:      "page_duration_seconds",
			Help:      "Duration of the full parse, transform, serialize and format pass per page",
			Buckets:   prom.DefBuckets,
		}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpost",
			Name:      "page_results_total",
			Help:      "Processed pages by outcome",
		}, []string{"result"}),
		indexDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docpost",
			Name:      "search_index_duration_seconds",
			Help:      "Duration of the whole-site search index build",
			Buckets:   prom.DefBuckets,
		}),
		indexEntries: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docpost",
			Name:      "search_index_entries",
			Help:      "Entries in the last written search index",
		}),
		indexResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpost",
			Name:      "search_index_results_total",
			Help:      "Search index build signals by outcome",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.transformDuration, pr.transformResults, pr.pageDuration, pr.pageResults,
		pr.indexDuration, pr.indexEntries, pr.indexResults)
	return pr
}

func (p *PrometheusRecorder) ObserveTransformDuration(transform string, d time.Duration) {
	if p == nil {
		return
	}
	p.transformDuration.WithLabelValues(transform).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTransformResult(transform string, result ResultLabel) {
	if p == nil {
		return
	}
	p.transformResults.WithLabelValues(transform, string(result)).Inc()
}

func (p *PrometheusRecorder) ObservePageDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.pageDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.pageResults.WithLabelValues(string(result)).Inc()
}

// ObserveIndexBuild records one build-complete signal. Skipped signals only
// bump the result counter.
func (p *PrometheusRecorder) ObserveIndexBuild(d time.Duration, entries int, result ResultLabel) {
	if p == nil {
		return
	}
	p.indexResults.WithLabelValues(string(result)).Inc()
	if result != ResultSuccess {
		return
	}
	p.indexDuration.Observe(d.Seconds())
	p.indexEntries.Set(float64(entries))
}
