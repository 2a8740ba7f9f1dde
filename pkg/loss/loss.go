// Package loss provides the pluggable (loss, delta) function pairs
// consumed by the sparse network's backprop pass. Delta folds in the
// last-layer activation's derivative so that backprop's accumulation
// step never needs to know which concrete loss is in play.
//
// © 2025 lshnet authors. MIT License.
package loss

import (
	"fmt"
	"math"
)

func logf(x float32) float32 { return float32(math.Log(float64(x))) }

// Loss computes a per-output loss term and its gradient with respect to
// the pre-activation z (i.e. delta already folds in the last-layer
// activation's derivative).
type Loss interface {
	Loss(yTrue, a float32) float32
	Delta(yTrue, a float32) float32
}

// MSE is mean squared error with a linear output activation folded in:
// delta = a - yTrue. Requires the network's last layer to use activation.Linear
// (derivative 1); pairing it with any other last-layer activation silently
// mis-folds the derivative.
type MSE struct{}

func (MSE) Loss(yTrue, a float32) float32 {
	d := a - yTrue
	return d * d
}

func (MSE) Delta(yTrue, a float32) float32 {
	return a - yTrue
}

// NLL is negative log-likelihood with a sigmoid output activation folded
// in: delta = a - yTrue (the familiar cross-entropy/sigmoid
// simplification). Requires the network's last layer to use
// activation.Sigmoid; any other pairing mis-folds the derivative.
type NLL struct{}

func (NLL) Loss(yTrue, a float32) float32 {
	const eps = 1e-7
	if yTrue >= 0.5 {
		return -logf(a + eps)
	}
	return -logf(1 - a + eps)
}

func (NLL) Delta(yTrue, a float32) float32 {
	return a - yTrue
}

var (
	_ Loss = MSE{}
	_ Loss = NLL{}
)

// ByName resolves a loss kind by its configuration name ("mse" or
// "nll").
func ByName(name string) (Loss, error) {
	switch name {
	case "mse":
		return MSE{}, nil
	case "nll":
		return NLL{}, nil
	default:
		return nil, fmt.Errorf("loss: unknown kind %q", name)
	}
}
