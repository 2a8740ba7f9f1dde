//go:build goexperiment.arenas
// +build goexperiment.arenas

// Package goarena wraps Go's experimental arena package behind a tiny,
// stable surface. It backs the optional arena-allocated vector sink
// (internal/bucketstore's vectorsink_arena.go) used to retain original
// vectors off-heap when a store is built with vector retention enabled
// and the goexperiment.arenas build tag is set; without the tag,
// bucketstore falls back to the plain slice-backed sink.
//
// goarena.Arena is not thread-safe; callers serialize access themselves
// (bucketstore's MemoryStore already holds a mutex around its vector sink).
//
// © 2025 lshnet authors. MIT License.
package goarena

import (
	"arena"
)

// Arena is a thin new-type wrapper so the rest of lshnet never imports the
// standard library's experimental arena package directly.
type Arena struct{ ar arena.Arena }

// New constructs an empty arena ready for allocations.
func New() *Arena {
	return &Arena{ar: *arena.NewArena()}
}

// Free releases all memory allocated in the arena. Pointers and slices
// returned from NewValue/MakeSlice become invalid after Free.
func (a *Arena) Free() {
	a.ar.Free()
}

// NewValue allocates a zero-initialised T inside the arena.
func NewValue[T any](a *Arena) *T { return arena.New[T](&a.ar) }

// MakeSlice allocates a slice of length==cap==n inside the arena.
func MakeSlice[T any](a *Arena, n int) []T { return arena.MakeSlice[T](&a.ar, n, n) }
