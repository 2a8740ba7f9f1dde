//go:build !goexperiment.arenas
// +build !goexperiment.arenas

package bucketstore

// newVectorSink returns the vector-retention backend used by MemoryStore.
// Without the goexperiment.arenas build tag the arena-backed sink is
// unavailable, so retention falls back to a plain heap-allocated slice.
func newVectorSink() vectorSink {
	return newSliceVectorSink()
}
