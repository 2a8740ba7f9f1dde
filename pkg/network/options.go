// Package network implements the sparse, LSH-gated feed-forward network:
// perceptron storage in a shared Weight Arena, forward propagation
// restricted to LSH-selected candidates, additive delta backprop across
// the sparse activation graph, and periodic rehashing that reconciles
// updated weights with each layer's LSH index.
//
// © 2025 lshnet authors. MIT License.
package network

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option customizes a Network at construction time.
type Option func(*config)

type config struct {
	registry *prometheus.Registry
	logger   *zap.Logger
}

func defaultConfig() *config {
	return &config{logger: zap.NewNop()}
}

// WithMetrics enables Prometheus metrics collection: forward, backprop,
// update_param and rehash call counts, and the distribution of backprop
// loss values. No timings are recorded.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithLogger plugs an external zap.Logger. The network never logs on the
// forward/backprop/update/rehash path; the only event emitted is a
// debug-level message at construction. The logger is also passed to each
// layer's LSH index.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

var errDimsTooShort = errors.New("network: dimensions must have at least 2 entries")
var errActivationCount = errors.New("network: len(activations) must equal len(dimensions)-1")
var errInvalidK = errors.New("network: k (projections) must be > 0")
var errInvalidTables = errors.New("network: numTables must be > 0")
