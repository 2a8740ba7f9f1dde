// Package bench provides reproducible micro-benchmarks for lshnet. Run
// via: go test ./bench -bench=. -benchmem -cpu 1,4,16
//
// We measure:
//   1. StoreVec        – insertion into a single-layer LSH index.
//   2. QueryBucketIds  – bucket lookup after warm-up.
//   3. Forward         – full sparse forward pass through a small network.
//   4. Rehash          – maintenance pass after a round of updates.
//
// Results are printed in ns/op + alloc/op so CI can diff via benchstat.
//
// NOTE: Unit tests live alongside each package; this file is only for
// performance.
//
// © 2025 lshnet authors. MIT License.
package bench

import (
	"math/rand"
	"testing"

	"github.com/Voskan/lshnet/internal/bucketstore"
	"github.com/Voskan/lshnet/pkg/lshindex"
	"github.com/Voskan/lshnet/pkg/lshtypes"
	"github.com/Voskan/lshnet/pkg/network"
)

const (
	dim       = 64
	numTables = 4
	k         = 8
	vectors   = 1 << 14 // 16384 vectors for dataset
)

var ds = func() []lshtypes.Vector {
	rng := rand.New(rand.NewSource(42))
	arr := make([]lshtypes.Vector, vectors)
	for i := range arr {
		v := make(lshtypes.Vector, dim)
		for j := range v {
			v[j] = float32(rng.NormFloat64())
		}
		arr[i] = v
	}
	return arr
}()

func newTestIndex() *lshindex.Index {
	store := bucketstore.NewMemoryStore(numTables, false)
	idx, err := lshindex.New(store, numTables, k, dim, 7)
	if err != nil {
		panic(err)
	}
	return idx
}

func BenchmarkStoreVec(b *testing.B) {
	idx := newTestIndex()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := idx.StoreVec(ds[i&(vectors-1)]); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkQueryBucketIds(b *testing.B) {
	idx := newTestIndex()
	for _, v := range ds {
		if _, err := idx.StoreVec(v); err != nil {
			b.Fatal(err)
		}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := idx.QueryBucketIds(ds[i&(vectors-1)]); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkQueryBucketIdsParallel(b *testing.B) {
	idx := newTestIndex()
	for _, v := range ds {
		if _, err := idx.StoreVec(v); err != nil {
			b.Fatal(err)
		}
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			i = (i + 1) & (vectors - 1)
			_, _ = idx.QueryBucketIds(ds[i])
		}
	})
}

func newTestNetwork(b *testing.B) *network.Network {
	net, err := network.New([]int{dim, 32, 4}, []string{"relu", "sigmoid"}, k, numTables, 0.01, 7, "mse")
	if err != nil {
		b.Fatal(err)
	}
	return net
}

func BenchmarkForward(b *testing.B) {
	net := newTestNetwork(b)
	x := make([]float32, dim)
	for i := range x {
		x[i] = float32(i%7) - 3
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := net.Forward(x); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRehash(b *testing.B) {
	net := newTestNetwork(b)
	x := make([]float32, dim)
	for i := range x {
		x[i] = float32(i%7) - 3
	}
	y := []uint8{1, 0, 1, 0}

	neurons, inputs, err := net.Forward(x)
	if err != nil {
		b.Fatal(err)
	}
	if _, err := net.Backprop(neurons, y); err != nil {
		b.Fatal(err)
	}
	for i := range neurons {
		net.UpdateParam(inputs[i], neurons[i])
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := net.Rehash(); err != nil {
			b.Fatal(err)
		}
	}
}
