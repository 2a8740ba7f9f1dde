// Package bucketstore implements the pluggable key→set-of-ids backends
// behind the LSH Index: an in-memory map-based store and a persistent
// tabular store (Badger-backed). Both satisfy the Store contract; the
// optional Deleter, VectorStore, and Grower capabilities are satisfied only
// where the backend can support them cheaply.
//
// © 2025 lshnet authors. MIT License.
package bucketstore

import (
	"errors"

	"github.com/Voskan/lshnet/pkg/lshtypes"
)

// ErrNotFound is the sentinel for a lookup that expects a direct hit. No
// operation in this package returns it; QueryBucketIds in particular
// treats an absent bucket as contributing nothing.
var ErrNotFound = errors.New("bucketstore: not found")

// ErrUnsupported is returned when a table index is out of range for the
// backend, and by lshindex.Index when a capability (Delete, Stats) is
// invoked against a backend that does not implement it.
var ErrUnsupported = errors.New("bucketstore: operation not supported by this backend")

// Store is the capability every backend must provide: insert a hash under
// a table with an auto-assigned id, insert a hash under a table with an
// explicit id (used to re-home an id into a new bucket during
// update_by_idx), and query a table's bucket for a hash.
type Store interface {
	// Put inserts hash into the given table under a freshly assigned id
	// and returns that id. Every call assigns a new id: the id returned
	// equals the store's running insertion counter, which then advances by
	// one. A logical insertion therefore calls Put once (at table 0) and
	// PutAt with the returned id for the remaining tables. v is the
	// original vector being hashed; backends that retain originals persist
	// it once, on table 0, to avoid N-fold duplication.
	Put(hash lshtypes.Hash, v lshtypes.Vector, tableIdx int) (lshtypes.PerceptronId, error)

	// PutAt inserts hash into the given table under an explicit,
	// already-assigned id. It is idempotent: inserting the same
	// (hash, id, tableIdx) twice leaves exactly one entry.
	PutAt(hash lshtypes.Hash, id lshtypes.PerceptronId, tableIdx int) error

	// Query returns the bucket of ids sharing hash in the given table. A
	// hash with no entries yields an empty, non-nil bucket; this is not
	// an error.
	Query(hash lshtypes.Hash, tableIdx int) (lshtypes.Bucket, error)

	// NumTables returns N, the number of parallel tables this store holds.
	NumTables() int
}

// Deleter is the optional capability to remove a single id from a single
// table's bucket. The network never calls it: deletion is a generic LSH
// table capability, not a network operation.
type Deleter interface {
	Delete(hash lshtypes.Hash, id lshtypes.PerceptronId, tableIdx int) error
}

// VectorStore is the optional capability to retrieve the original vector
// for a given id. Only populated when the backend is configured to retain
// originals.
type VectorStore interface {
	VectorByID(id lshtypes.PerceptronId) (lshtypes.Vector, bool)
}

// Grower is the optional capacity-hinting capability: a caller that
// knows it is about to insert n vectors can pre-size the backend.
type Grower interface {
	IncreaseStorage(n int)
}

// BucketStats is the optional capability to enumerate the size of every
// populated bucket in a table, used for describe()-style diagnostics
// (bucket count, min/max/avg size) without exposing the buckets
// themselves.
type BucketStats interface {
	// BucketSizes returns the size of every distinct, non-empty bucket in
	// tableIdx, in unspecified order.
	BucketSizes(tableIdx int) ([]int, error)
}
