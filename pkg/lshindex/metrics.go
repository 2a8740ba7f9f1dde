package lshindex

// metricsSink is a private interface with a noop/Prometheus split:
// noopMetrics is the zero-cost default, promMetrics is created only when
// WithMetrics(reg) is passed.
//
// © 2025 lshnet authors. MIT License.

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metricsSink interface {
	incStore()
	incQuery()
	incRehashChanged()
	incRehashUnchanged()
	observeBucketSize(n int)
}

type noopMetrics struct{}

func (noopMetrics) incStore()             {}
func (noopMetrics) incQuery()             {}
func (noopMetrics) incRehashChanged()     {}
func (noopMetrics) incRehashUnchanged()   {}
func (noopMetrics) observeBucketSize(int) {}

type promMetrics struct {
	stores          prometheus.Counter
	queries         prometheus.Counter
	rehashChanged   prometheus.Counter
	rehashUnchanged prometheus.Counter
	bucketSize      prometheus.Histogram
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	pm := &promMetrics{
		stores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lshnet",
			Subsystem: "lshindex",
			Name:      "stores_total",
			Help:      "Number of vectors inserted into the index.",
		}),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lshnet",
			Subsystem: "lshindex",
			Name:      "queries_total",
			Help:      "Number of bucket queries issued against the index.",
		}),
		rehashChanged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lshnet",
			Subsystem: "lshindex",
			Name:      "rehash_changed_total",
			Help:      "Number of rehash calls that moved an id to a new bucket.",
		}),
		rehashUnchanged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lshnet",
			Subsystem: "lshindex",
			Name:      "rehash_unchanged_total",
			Help:      "Number of rehash calls whose hash did not change.",
		}),
		bucketSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lshnet",
			Subsystem: "lshindex",
			Name:      "bucket_size",
			Help:      "Distribution of bucket sizes observed on query.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	reg.MustRegister(pm.stores, pm.queries, pm.rehashChanged, pm.rehashUnchanged, pm.bucketSize)
	return pm
}

func (m *promMetrics) incStore()           { m.stores.Inc() }
func (m *promMetrics) incQuery()           { m.queries.Inc() }
func (m *promMetrics) incRehashChanged()   { m.rehashChanged.Inc() }
func (m *promMetrics) incRehashUnchanged() { m.rehashUnchanged.Inc() }
func (m *promMetrics) observeBucketSize(n int) {
	m.bucketSize.Observe(float64(n))
}

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
