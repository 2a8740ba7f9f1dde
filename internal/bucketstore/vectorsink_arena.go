//go:build goexperiment.arenas
// +build goexperiment.arenas

package bucketstore

import (
	goarena "github.com/Voskan/lshnet/internal/arena"
	"github.com/Voskan/lshnet/pkg/lshtypes"
)

// arenaVectorSink retains vectors off-heap in a single growing Go arena,
// avoiding per-vector GC pressure when a store is expected to retain a
// large number of original vectors. Unlike sliceVectorSink, elements are
// never individually freed; the whole arena is released when the sink
// itself is discarded via close.
type arenaVectorSink struct {
	ar   *goarena.Arena
	vecs []lshtypes.Vector
}

func newArenaVectorSink() *arenaVectorSink {
	return &arenaVectorSink{ar: goarena.New()}
}

func (s *arenaVectorSink) push(v lshtypes.Vector) lshtypes.PerceptronId {
	id := lshtypes.PerceptronId(len(s.vecs))
	dst := goarena.MakeSlice[float32](s.ar, len(v))
	copy(dst, v)
	s.vecs = append(s.vecs, lshtypes.Vector(dst))
	return id
}

func (s *arenaVectorSink) get(id lshtypes.PerceptronId) (lshtypes.Vector, bool) {
	if int(id) >= len(s.vecs) {
		return nil, false
	}
	return s.vecs[id], true
}

// close releases every vector retained by this sink in one O(1) step.
// Callers must not use any previously returned Vector after calling this.
func (s *arenaVectorSink) close() {
	s.ar.Free()
	s.vecs = nil
}
