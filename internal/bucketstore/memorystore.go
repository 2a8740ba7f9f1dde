package bucketstore

import (
	"sync"

	"github.com/Voskan/lshnet/pkg/lshtypes"
)

// MemoryStore is the in-memory bucket-store backend: N independent
// map[string]Bucket tables, one shared insertion counter, and an optional
// vector sink used to retain original vectors (populated only on table 0
// regardless of how many hash tables reference it).
//
// A single RWMutex guards every table; the LSH index's own concurrency
// (singleflight-deduplicated queries) keeps contention low in practice,
// since bucket-store operations here are already cheap map lookups.
type MemoryStore struct {
	mu      sync.RWMutex
	tables  []map[string]lshtypes.Bucket
	counter uint32
	retain  bool
	vectors vectorSink
}

// NewMemoryStore constructs a MemoryStore with numTables independent
// tables. When retainVectors is true, the vector passed to the first Put
// call for each logical insertion is kept and retrievable via VectorByID.
func NewMemoryStore(numTables int, retainVectors bool) *MemoryStore {
	if numTables <= 0 {
		panic("bucketstore: numTables must be > 0")
	}
	tables := make([]map[string]lshtypes.Bucket, numTables)
	for i := range tables {
		tables[i] = make(map[string]lshtypes.Bucket)
	}
	var sink vectorSink
	if retainVectors {
		sink = newVectorSink()
	}
	return &MemoryStore{
		tables:  tables,
		retain:  retainVectors,
		vectors: sink,
	}
}

func (m *MemoryStore) NumTables() int { return len(m.tables) }

// Put inserts hash into table tableIdx. The id is assigned once, the first
// time Put is called for a given logical insertion (table 0), and every
// subsequent call for the remaining tables of that same insertion must be
// made with PutAt using the id returned here: Put itself has no way to
// know "this is the 2nd of N calls" other than the caller's own table
// ordering, so by convention callers always call Put once (at table 0) and
// PutAt for tables 1..N-1. See lshindex.Index.StoreVec for the composition.
func (m *MemoryStore) Put(hash lshtypes.Hash, v lshtypes.Vector, tableIdx int) (lshtypes.PerceptronId, error) {
	if tableIdx < 0 || tableIdx >= len(m.tables) {
		return 0, ErrUnsupported
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := lshtypes.PerceptronId(m.counter)
	m.counter++

	key := hash.Key()
	bucket := m.tables[tableIdx][key]
	if bucket == nil {
		bucket = lshtypes.NewBucket(1)
		m.tables[tableIdx][key] = bucket
	}
	bucket.Add(id)

	if m.retain && tableIdx == 0 {
		m.vectors.push(v)
	}

	return id, nil
}

// PutAt inserts hash into table tableIdx under an already-assigned id.
// Idempotent: Bucket is a set, so repeated insertion of the same id is a
// no-op on the second call.
func (m *MemoryStore) PutAt(hash lshtypes.Hash, id lshtypes.PerceptronId, tableIdx int) error {
	if tableIdx < 0 || tableIdx >= len(m.tables) {
		return ErrUnsupported
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := hash.Key()
	bucket := m.tables[tableIdx][key]
	if bucket == nil {
		bucket = lshtypes.NewBucket(1)
		m.tables[tableIdx][key] = bucket
	}
	bucket.Add(id)
	return nil
}

// Query returns the bucket of ids under hash in table tableIdx. The
// returned Bucket is a defensive copy: callers may range over it freely
// without holding any lock and without risk of observing later mutations.
func (m *MemoryStore) Query(hash lshtypes.Hash, tableIdx int) (lshtypes.Bucket, error) {
	if tableIdx < 0 || tableIdx >= len(m.tables) {
		return nil, ErrUnsupported
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.tables[tableIdx][hash.Key()]
	out := lshtypes.NewBucket(len(src))
	for id := range src {
		out.Add(id)
	}
	return out, nil
}

// Delete removes id from hash's bucket in table tableIdx. A miss (hash or
// id not present) is not an error; deletion is idempotent.
func (m *MemoryStore) Delete(hash lshtypes.Hash, id lshtypes.PerceptronId, tableIdx int) error {
	if tableIdx < 0 || tableIdx >= len(m.tables) {
		return ErrUnsupported
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := hash.Key()
	bucket, ok := m.tables[tableIdx][key]
	if !ok {
		return nil
	}
	bucket.Remove(id)
	if len(bucket) == 0 {
		delete(m.tables[tableIdx], key)
	}
	return nil
}

// VectorByID returns the original vector retained for id, if vector
// retention was enabled at construction and that id's vector was pushed.
func (m *MemoryStore) VectorByID(id lshtypes.PerceptronId) (lshtypes.Vector, bool) {
	if !m.retain {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vectors.get(id)
}

// IncreaseStorage pre-sizes every table's map for an additional n entries.
// Go maps cannot be resized in place, so this only helps when called
// before any inserts have happened; afterwards it is a harmless no-op.
func (m *MemoryStore) IncreaseStorage(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tables {
		if len(t) > 0 {
			continue
		}
		m.tables[i] = make(map[string]lshtypes.Bucket, n)
	}
}

// BucketSizes returns the size of every populated bucket in table tableIdx.
func (m *MemoryStore) BucketSizes(tableIdx int) ([]int, error) {
	if tableIdx < 0 || tableIdx >= len(m.tables) {
		return nil, ErrUnsupported
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	table := m.tables[tableIdx]
	sizes := make([]int, 0, len(table))
	for _, bucket := range table {
		sizes = append(sizes, len(bucket))
	}
	return sizes, nil
}

var (
	_ Store       = (*MemoryStore)(nil)
	_ Deleter     = (*MemoryStore)(nil)
	_ VectorStore = (*MemoryStore)(nil)
	_ Grower      = (*MemoryStore)(nil)
	_ BucketStats = (*MemoryStore)(nil)
)
