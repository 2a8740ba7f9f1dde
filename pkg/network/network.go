package network

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/Voskan/lshnet/internal/bucketstore"
	"github.com/Voskan/lshnet/pkg/activation"
	"github.com/Voskan/lshnet/pkg/arena"
	"github.com/Voskan/lshnet/pkg/lshindex"
	"github.com/Voskan/lshnet/pkg/loss"
	"github.com/Voskan/lshnet/pkg/lshtypes"
)

// Neuron records one perceptron's contribution to a forward pass: which
// layer and logical pid it is, which arena slot backs its weight vector,
// its pre-activation z, activation a, and the delta accumulated by
// backprop (zero until backprop runs).
type Neuron struct {
	Layer int
	J     lshtypes.PerceptronId
	Slot  lshtypes.ArenaIndex
	Z     float32
	A     float32
	Delta float32
}

// Network is the sparse, LSH-gated feed-forward network. It owns one LSH
// Index per weight layer and a single global Weight Arena; pid↔slot and
// pid↔bias mappings are private per layer.
type Network struct {
	dims        []int
	activations []activation.Activation
	lossFn      loss.Loss
	lr          float32

	indices  []*lshindex.Index
	pool     *arena.Arena
	lsh2pool []map[lshtypes.PerceptronId]lshtypes.ArenaIndex
	lsh2bias []map[lshtypes.PerceptronId]float32
	w        [][]lshtypes.PerceptronId

	logger  *zap.Logger
	metrics metricsSink
}

// New constructs a fully-populated Network: every perceptron is inserted
// into its layer's LSH Index, its weight added to the arena, its bias
// initialised to zero, and the arena frozen.
//
// dims is [d0,...,d_{L-1}]; activationNames has length L-1 and each
// entry is "linear", "relu", or "sigmoid"; k is the number of SRP
// projections per table; numTables is N; lossName is "mse" or "nll".
func New(dims []int, activationNames []string, k, numTables int, lr float32, seed uint64, lossName string, opts ...Option) (*Network, error) {
	if len(dims) < 2 {
		return nil, errDimsTooShort
	}
	if len(activationNames) != len(dims)-1 {
		return nil, errActivationCount
	}
	if k <= 0 {
		return nil, errInvalidK
	}
	if numTables <= 0 {
		return nil, errInvalidTables
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	lossFn, err := loss.ByName(lossName)
	if err != nil {
		return nil, err
	}

	activations := make([]activation.Activation, len(activationNames))
	for i, name := range activationNames {
		act, err := activation.ByName(name)
		if err != nil {
			return nil, fmt.Errorf("network: layer %d: %w", i, err)
		}
		activations[i] = act
	}

	nWeightLayers := len(dims) - 1
	rng := rand.New(rand.NewSource(int64(seed)))
	pool := arena.New()

	indices := make([]*lshindex.Index, nWeightLayers)
	lsh2pool := make([]map[lshtypes.PerceptronId]lshtypes.ArenaIndex, nWeightLayers)
	lsh2bias := make([]map[lshtypes.PerceptronId]float32, nWeightLayers)
	w := make([][]lshtypes.PerceptronId, nWeightLayers)

	for i := 0; i < nWeightLayers; i++ {
		inSize := dims[i]
		outSize := dims[i+1]

		store := bucketstore.NewMemoryStore(numTables, false)
		// Layer seeds are derived from the base seed so the whole network
		// stays deterministic given (seed, dims, k, numTables).
		idx, err := lshindex.New(store, numTables, k, inSize, seed+uint64(i)*104729,
			lshindex.WithLogger(cfg.logger))
		if err != nil {
			return nil, fmt.Errorf("network: layer %d: building lsh index: %w", i, err)
		}
		// outSize is known up front, so the store can pre-size itself
		// before the per-perceptron insert loop below.
		idx.Reserve(outSize)

		lsh2poolI := make(map[lshtypes.PerceptronId]lshtypes.ArenaIndex, outSize)
		lsh2biasI := make(map[lshtypes.PerceptronId]float32, outSize)
		wI := make([]lshtypes.PerceptronId, 0, outSize)

		scale := float32(1.0 / math.Sqrt(float64(inSize)))
		for j := 0; j < outSize; j++ {
			vec := make(lshtypes.Vector, inSize)
			for d := range vec {
				vec[d] = float32(rng.NormFloat64()) * scale
			}

			pid, err := idx.StoreVec(vec)
			if err != nil {
				return nil, fmt.Errorf("network: layer %d: storing perceptron %d: %w", i, j, err)
			}
			slot := pool.Add(vec)
			lsh2poolI[pid] = slot
			lsh2biasI[pid] = 0
			wI = append(wI, pid)
		}

		lsh2pool[i] = lsh2poolI
		lsh2bias[i] = lsh2biasI
		w[i] = wI
		indices[i] = idx
	}
	pool.Freeze()

	cfg.logger.Debug("network constructed",
		zap.Ints("dims", dims), zap.Int("k", k), zap.Int("numTables", numTables))

	return &Network{
		dims:        dims,
		activations: activations,
		lossFn:      lossFn,
		lr:          lr,
		indices:     indices,
		pool:        pool,
		lsh2pool:    lsh2pool,
		lsh2bias:    lsh2bias,
		w:           w,
		logger:      cfg.logger,
		metrics:     newMetricsSink(cfg.registry),
	}, nil
}

// NumWeightLayers returns L-1, the number of weight layers.
func (n *Network) NumWeightLayers() int { return len(n.dims) - 1 }

// Forward runs x through every weight layer, gating all but the last
// with each layer's LSH index. It returns the per-layer Neuron lists and
// the per-layer input vectors later needed by UpdateParam.
func (n *Network) Forward(x []float32) ([][]Neuron, [][]float32, error) {
	n.metrics.incForward()

	nLayers := n.NumWeightLayers()
	neurons := make([][]Neuron, nLayers)
	inputs := make([][]float32, nLayers)

	input := x
	for i := 0; i < nLayers; i++ {
		lastLayer := i == nLayers-1
		inputs[i] = input

		layerNeurons, err := n.applyLayer(i, input, lastLayer)
		if err != nil {
			return nil, nil, err
		}
		neurons[i] = layerNeurons

		if !lastLayer {
			input = makeSparseInput(layerNeurons, n.dims[i+1])
		}
	}
	return neurons, inputs, nil
}

// applyLayer computes the active neuron set for weight layer i given its
// input vector. On the last weight layer every output pid is a
// candidate, bypassing LSH gating entirely.
func (n *Network) applyLayer(i int, input []float32, lastLayer bool) ([]Neuron, error) {
	var candidates []lshtypes.PerceptronId
	if lastLayer {
		outSize := n.dims[i+1]
		candidates = make([]lshtypes.PerceptronId, outSize)
		for j := 0; j < outSize; j++ {
			candidates[j] = lshtypes.PerceptronId(j)
		}
	} else {
		ids, err := n.indices[i].QueryBucketIds(lshtypes.Vector(input))
		if err != nil {
			return nil, fmt.Errorf("network: layer %d: query_bucket_ids: %w", i, err)
		}
		candidates = ids
	}

	act := n.activations[i]
	neurons := make([]Neuron, 0, len(candidates))
	for _, j := range candidates {
		slot, ok := n.lsh2pool[i][j]
		if !ok {
			return nil, fmt.Errorf("network: layer %d: perceptron %d not in pool (consistency bug)", i, j)
		}
		w := n.pool.Get(slot)
		b := n.lsh2bias[i][j]

		z := lshtypes.Vector(input).Dot(w) + b
		a := act.Activate(z)
		neurons = append(neurons, Neuron{Layer: i, J: j, Slot: slot, Z: z, A: a})
	}
	return neurons, nil
}

// makeSparseInput reconstructs the dense input to the next layer: a
// zero vector of length layerSize with out[j] = a for each active
// neuron.
func makeSparseInput(neurons []Neuron, layerSize int) []float32 {
	out := make([]float32, layerSize)
	for _, c := range neurons {
		out[c.J] = c.A
	}
	return out
}

// Backprop propagates loss and deltas backward across the sparse
// activation graph produced by Forward. Deltas are accumulated
// additively along every active neuron's backward path: every
// downstream neuron always reads the upstream neuron list directly, so
// a neuron contributing to several downstream neurons accumulates all
// of their contributions rather than only the last one visited.
func (n *Network) Backprop(neurons [][]Neuron, yTrue []uint8) (float32, error) {
	n.metrics.incBackprop()

	lastIdx := len(neurons) - 1
	lastNeurons := neurons[lastIdx]
	count := len(lastNeurons)
	if count == 0 {
		return 0, nil
	}

	var lossSum float32
	for i := range lastNeurons {
		c := &lastNeurons[i]
		if int(c.J) >= len(yTrue) {
			return 0, fmt.Errorf("network: backprop: pid %d out of bounds for y_true of length %d", c.J, len(yTrue))
		}
		yt := float32(yTrue[c.J])
		lossSum += n.lossFn.Loss(yt, c.A) / float32(count)
		c.Delta = n.lossFn.Delta(yt, c.A)
	}

	for layer := lastIdx; layer > 0; layer-- {
		downstream := neurons[layer]
		upstream := neurons[layer-1]
		act := n.activations[layer]

		for di := range downstream {
			d := &downstream[di]
			w := n.pool.Get(d.Slot)
			prime := act.Prime(d.Z)

			for ci := range upstream {
				c := &upstream[ci]
				if int(c.J) >= len(w) {
					continue
				}
				c.Delta += d.Delta * w[c.J] * prime
			}
		}
	}

	n.metrics.observeLoss(float64(lossSum))
	return lossSum, nil
}

// UpdateParam applies one layer's gradient step: W[i,c.j] -= lr*c.delta*u
// elementwise, b[i,c.j] -= lr*c.delta, for every active neuron c at
// layer i whose input was u. Invoked once per layer.
func (n *Network) UpdateParam(input []float32, neurons []Neuron) {
	n.metrics.incUpdateParam()

	for i := range neurons {
		c := &neurons[i]
		w := n.pool.GetMut(c.Slot)
		for k := range w {
			w[k] -= n.lr * c.Delta * input[k]
		}

		layerBias := n.lsh2bias[c.Layer]
		layerBias[c.J] = layerBias[c.J] - n.lr*c.Delta
	}
}

// Rehash walks every perceptron in every weight layer; wherever its
// current weight's elementwise sum differs from the frozen snapshot's
// sum, it re-indexes the perceptron in that layer's LSH Index and
// refreshes the snapshot.
//
// The sum-based change detector is a heuristic: it has false negatives
// when an update's per-component deltas cancel to a zero net sum.
func (n *Network) Rehash() error {
	n.metrics.incRehash()

	for layer := 0; layer < n.NumWeightLayers(); layer++ {
		for _, pid := range n.w[layer] {
			slot, ok := n.lsh2pool[layer][pid]
			if !ok {
				return fmt.Errorf("network: rehash: layer %d: perceptron %d not in pool (consistency bug)", layer, pid)
			}
			wNow := n.pool.Get(slot)
			wPrev := n.pool.Backup(slot)

			if sumVector(wNow) == sumVector(wPrev) {
				continue
			}
			if err := n.indices[layer].UpdateByIdx(pid, wNow, wPrev); err != nil {
				return fmt.Errorf("network: rehash: layer %d: update_by_idx(%d): %w", layer, pid, err)
			}
			n.pool.Snapshot(slot)
		}
	}
	return nil
}

func sumVector(v lshtypes.Vector) float32 {
	var s float32
	for _, f := range v {
		s += f
	}
	return s
}

// Weight returns the current weight vector of perceptron pid in the
// given weight layer.
func (n *Network) Weight(layer int, pid lshtypes.PerceptronId) (lshtypes.Vector, error) {
	slot, ok := n.lsh2pool[layer][pid]
	if !ok {
		return nil, fmt.Errorf("network: layer %d: perceptron %d not found", layer, pid)
	}
	return n.pool.Get(slot), nil
}

// Bias returns the current bias of perceptron pid in the given weight
// layer.
func (n *Network) Bias(layer int, pid lshtypes.PerceptronId) (float32, error) {
	b, ok := n.lsh2bias[layer][pid]
	if !ok {
		return 0, fmt.Errorf("network: layer %d: perceptron %d not found", layer, pid)
	}
	return b, nil
}

// SetWeight overwrites perceptron pid's weight vector in place, in both
// the live pool and the frozen snapshot, so the write is not mistaken
// for a rehash-worthy change on the next Rehash call. Intended for
// callers that seed a network with known parameters (tests, loading a
// serialized model) rather than for use during normal training, where
// weights are mutated only by UpdateParam.
func (n *Network) SetWeight(layer int, pid lshtypes.PerceptronId, v lshtypes.Vector) error {
	slot, ok := n.lsh2pool[layer][pid]
	if !ok {
		return fmt.Errorf("network: layer %d: perceptron %d not found", layer, pid)
	}
	dst := n.pool.GetMut(slot)
	if len(dst) != len(v) {
		return fmt.Errorf("network: layer %d: perceptron %d: weight length %d, want %d", layer, pid, len(v), len(dst))
	}
	copy(dst, v)
	n.pool.Snapshot(slot)
	return nil
}

// SetBias overwrites perceptron pid's bias in place.
func (n *Network) SetBias(layer int, pid lshtypes.PerceptronId, b float32) error {
	if _, ok := n.lsh2bias[layer][pid]; !ok {
		return fmt.Errorf("network: layer %d: perceptron %d not found", layer, pid)
	}
	n.lsh2bias[layer][pid] = b
	return nil
}

// PerceptronIDs returns the ordered list of pids belonging to a weight
// layer.
func (n *Network) PerceptronIDs(layer int) []lshtypes.PerceptronId {
	return n.w[layer]
}

// IndexStats returns layer's LSH index bucket diagnostics (min/max/avg
// bucket length, distinct hash count per table). Returns
// bucketstore.ErrUnsupported when the layer's backend does not implement
// bucketstore.BucketStats.
func (n *Network) IndexStats(layer int) ([]lshindex.TableStats, error) {
	return n.indices[layer].Stats()
}
