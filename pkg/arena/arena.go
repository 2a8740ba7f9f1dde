// Package arena implements the Weight Arena: an index-addressed pool of
// weight vectors with a frozen snapshot used by the network's rehash
// pass to detect which perceptrons' weights have changed since the last
// reconciliation with the LSH index.
//
// © 2025 lshnet authors. MIT License.
package arena

import "github.com/Voskan/lshnet/pkg/lshtypes"

// Arena is the index-addressed weight pool. The zero value is an empty
// arena ready for use; New returns one.
type Arena struct {
	pool       []lshtypes.Vector
	poolBackup []lshtypes.Vector
	free       []lshtypes.ArenaIndex
}

// New returns an empty Arena.
func New() *Arena {
	return &Arena{}
}

// Add stores v in a reused slot from the free-list if one is available,
// otherwise appends a new slot. Returns the slot the vector now occupies.
func (a *Arena) Add(v lshtypes.Vector) lshtypes.ArenaIndex {
	if n := len(a.free); n > 0 {
		slot := a.free[n-1]
		a.free = a.free[:n-1]
		a.pool[slot] = v
		return slot
	}
	slot := lshtypes.ArenaIndex(len(a.pool))
	a.pool = append(a.pool, v)
	return slot
}

// Get returns the vector stored at slot. Panics on an out-of-range slot:
// an out-of-bounds slot indicates a consistency bug and is fatal.
func (a *Arena) Get(slot lshtypes.ArenaIndex) lshtypes.Vector {
	return a.pool[slot]
}

// GetMut returns a mutable reference to the vector at slot: callers may
// write through the returned slice directly (it aliases the arena's
// backing storage, matching Rust's get_mut semantics).
func (a *Arena) GetMut(slot lshtypes.ArenaIndex) lshtypes.Vector {
	return a.pool[slot]
}

// Backup returns the frozen snapshot vector for slot, as last captured by
// Freeze or Snapshot.
func (a *Arena) Backup(slot lshtypes.ArenaIndex) lshtypes.Vector {
	return a.poolBackup[slot]
}

// Free releases slot back to the free-list for reuse by a future Add.
// The network's lifecycle never calls this (no deletion occurs during a
// network's lifetime); it exists for completeness and for callers
// outside the network that want arena slot reuse.
func (a *Arena) Free(slot lshtypes.ArenaIndex) {
	a.free = append(a.free, slot)
}

// Freeze copies pool into pool_backup wholesale. Called once, after
// network initialisation populates every slot.
func (a *Arena) Freeze() {
	a.poolBackup = make([]lshtypes.Vector, len(a.pool))
	for i, v := range a.pool {
		a.poolBackup[i] = v.Clone()
	}
}

// Snapshot overwrites pool_backup[slot] from pool[slot]. Called by rehash
// for exactly the slots whose change detector fired.
func (a *Arena) Snapshot(slot lshtypes.ArenaIndex) {
	a.poolBackup[slot] = a.pool[slot].Clone()
}

// Len returns the number of slots in the pool (including any currently
// on the free-list).
func (a *Arena) Len() int { return len(a.pool) }

// BackupLen returns the number of slots in pool_backup. It must equal
// Len() after Freeze and through every subsequent update+rehash cycle.
func (a *Arena) BackupLen() int { return len(a.poolBackup) }
