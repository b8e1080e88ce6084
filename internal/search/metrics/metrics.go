package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SearchesTotal       prometheus.Counter
	EmptyQueriesTotal   prometheus.Counter
	SearchSeconds       prometheus.Histogram
	FindingsPerSearch   prometheus.Histogram
	SourceFailuresTotal *prometheus.CounterVec
	AdapterCallsTotal   *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dossier_searches_total",
			Help: "Total number of accepted search invocations",
		}),
		EmptyQueriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dossier_empty_queries_total",
			Help: "Total number of searches rejected for having no attributes",
		}),
		SearchSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dossier_search_seconds",
			Help:    "End to end duration of a search invocation",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		FindingsPerSearch: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dossier_findings_per_search",
			Help:    "Number of correlated results returned per search",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		}),
		SourceFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_source_failures_total",
			Help: "Adapter lookup failures by source and error category",
		}, []string{"source", "category"}),
		AdapterCallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_adapter_calls_total",
			Help: "Adapter lookups dispatched, by source",
		}, []string{"source"}),
	}
}

// ObserveSearch records one completed search.
func (m *Metrics) ObserveSearch(d time.Duration, results int) {
	m.SearchesTotal.Inc()
	m.SearchSeconds.Observe(d.Seconds())
	m.FindingsPerSearch.Observe(float64(results))
}
