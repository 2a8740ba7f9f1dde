package network

import "github.com/prometheus/client_golang/prometheus"

type metricsSink interface {
	incForward()
	incBackprop()
	incUpdateParam()
	incRehash()
	observeLoss(v float64)
}

type noopMetrics struct{}

func (noopMetrics) incForward()        {}
func (noopMetrics) incBackprop()       {}
func (noopMetrics) incUpdateParam()    {}
func (noopMetrics) incRehash()         {}
func (noopMetrics) observeLoss(float64) {}

type promMetrics struct {
	forwards     prometheus.Counter
	backprops    prometheus.Counter
	updateParams prometheus.Counter
	rehashes     prometheus.Counter
	loss         prometheus.Histogram
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	pm := &promMetrics{
		forwards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lshnet", Subsystem: "network", Name: "forward_total",
			Help: "Number of forward passes executed.",
		}),
		backprops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lshnet", Subsystem: "network", Name: "backprop_total",
			Help: "Number of backprop passes executed.",
		}),
		updateParams: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lshnet", Subsystem: "network", Name: "update_param_total",
			Help: "Number of update_param calls executed (one per layer per step).",
		}),
		rehashes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lshnet", Subsystem: "network", Name: "rehash_total",
			Help: "Number of rehash passes executed.",
		}),
		loss: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lshnet", Subsystem: "network", Name: "loss",
			Help:    "Distribution of per-example loss values from backprop.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(pm.forwards, pm.backprops, pm.updateParams, pm.rehashes, pm.loss)
	return pm
}

func (m *promMetrics) incForward()     { m.forwards.Inc() }
func (m *promMetrics) incBackprop()    { m.backprops.Inc() }
func (m *promMetrics) incUpdateParam() { m.updateParams.Inc() }
func (m *promMetrics) incRehash()      { m.rehashes.Inc() }
func (m *promMetrics) observeLoss(v float64) {
	m.loss.Observe(v)
}

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
