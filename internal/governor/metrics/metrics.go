package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PermitsInFlight      prometheus.Gauge
	PermitWaiters        prometheus.Gauge
	AcquiresTotal        prometheus.Counter
	WindowExhaustedTotal prometheus.Counter
	AcquireWaitSeconds   prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		PermitsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "dossier_governor_permits_in_flight",
			Help: "Current number of admission permits held by outbound lookups",
		}),
		PermitWaiters: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "dossier_governor_permit_waiters",
			Help: "Current number of callers queued for an admission permit",
		}),
		AcquiresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dossier_governor_acquires_total",
			Help: "Total number of admission permits granted",
		}),
		WindowExhaustedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dossier_governor_window_exhausted_total",
			Help: "Total number of waits caused by an exhausted rate window",
		}),
		AcquireWaitSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dossier_governor_acquire_wait_seconds",
			Help:    "Time spent waiting in Acquire before a permit was granted",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}
