//go:build goexperiment.arenas
// +build goexperiment.arenas

package bucketstore

// newVectorSink returns the vector-retention backend used by MemoryStore.
// Built with goexperiment.arenas, retention uses the arena-backed sink to
// keep retained vectors off the GC-scanned heap.
func newVectorSink() vectorSink {
	return newArenaVectorSink()
}
