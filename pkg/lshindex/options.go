// Package lshindex implements the multi-table LSH index: N independent
// sign-random-projection hash families, each paired with a table in a
// pluggable bucketstore.Store backend.
//
// Construction uses the Option/defaultConfig/applyOptions functional-
// option trio; every knob here is index-global, so there is no generic
// type parameter to thread through.
//
// © 2025 lshnet authors. MIT License.
package lshindex

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option customizes an Index at construction time.
type Option func(*config)

type config struct {
	numTables int
	k         int
	dim       int
	seed      uint64
	registry  *prometheus.Registry
	logger    *zap.Logger
}

func defaultConfig(numTables, k, dim int, seed uint64) *config {
	return &config{
		numTables: numTables,
		k:         k,
		dim:       dim,
		seed:      seed,
		logger:    zap.NewNop(),
	}
}

// WithMetrics enables Prometheus metrics collection for the index.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithLogger plugs an external zap.Logger. The index never logs on the
// query/insert/update path; the only event emitted is a debug-level
// message at construction.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func applyOptions(cfg *config, opts []Option) error {
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.numTables <= 0 {
		return errInvalidNumTables
	}
	if cfg.k <= 0 {
		return errInvalidK
	}
	if cfg.dim <= 0 {
		return errInvalidDim
	}
	return nil
}

var (
	errInvalidNumTables = errors.New("lshindex: numTables must be > 0")
	errInvalidK         = errors.New("lshindex: k (projections) must be > 0")
	errInvalidDim       = errors.New("lshindex: dim must be > 0")
)
