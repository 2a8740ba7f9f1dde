package bucketstore

import "github.com/Voskan/lshnet/pkg/lshtypes"

// vectorSink is the storage backend for retained original vectors, kept
// separate from MemoryStore's bucket maps so that it can be swapped for an
// arena-backed implementation (see vectorsink_arena.go) without touching
// bucket logic. The default implementation below is a plain
// insertion-ordered slice.
type vectorSink interface {
	push(v lshtypes.Vector) lshtypes.PerceptronId
	get(id lshtypes.PerceptronId) (lshtypes.Vector, bool)
}

// sliceVectorSink is the default vectorSink: an append-only slice of
// cloned vectors, indexed by insertion order (which, for the memory store,
// always matches PerceptronId since retention only ever happens on table 0
// of a fresh insert).
type sliceVectorSink struct {
	vecs []lshtypes.Vector
}

func newSliceVectorSink() *sliceVectorSink {
	return &sliceVectorSink{}
}

func (s *sliceVectorSink) push(v lshtypes.Vector) lshtypes.PerceptronId {
	id := lshtypes.PerceptronId(len(s.vecs))
	s.vecs = append(s.vecs, v.Clone())
	return id
}

func (s *sliceVectorSink) get(id lshtypes.PerceptronId) (lshtypes.Vector, bool) {
	if int(id) >= len(s.vecs) {
		return nil, false
	}
	return s.vecs[id], true
}
