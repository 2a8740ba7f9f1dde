package lshindex

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Voskan/lshnet/internal/bucketstore"
	"github.com/Voskan/lshnet/internal/hashfamily"
	"github.com/Voskan/lshnet/internal/unsafehelpers"
	"github.com/Voskan/lshnet/pkg/lshtypes"
)

// Index is a multi-table LSH index: N independent sign-random-projection
// hash families, each paired with a table inside a single bucketstore.Store
// backend. It owns the store exclusively; external callers never address
// the store directly.
//
// Concurrency: queries (StoreVec excluded) are read-only against the
// store and are deduplicated across concurrent identical callers via
// singleflight, useful when a query fans out from multiple goroutines
// racing the same input vector.
type Index struct {
	families []*hashfamily.SRP
	store    bucketstore.Store
	logger   *zap.Logger
	metrics  metricsSink
	qGroup   singleflight.Group
}

// New constructs an Index with numTables parallel hash families, each
// producing length-k hashes over dim-dimensional vectors, backed by
// store. store must report NumTables() == numTables.
func New(store bucketstore.Store, numTables, k, dim int, seed uint64, opts ...Option) (*Index, error) {
	cfg := defaultConfig(numTables, k, dim, seed)
	if err := applyOptions(cfg, opts); err != nil {
		return nil, err
	}
	if store.NumTables() != numTables {
		return nil, fmt.Errorf("lshindex: store has %d tables, want %d", store.NumTables(), numTables)
	}

	families := make([]*hashfamily.SRP, numTables)
	for t := range families {
		// Each table's family is seeded off the base seed so that tables
		// are independent but the whole index stays deterministic given
		// (seed, numTables, k, dim).
		f, err := hashfamily.New(cfg.k, dim, seed+uint64(t))
		if err != nil {
			return nil, err
		}
		families[t] = f
	}

	cfg.logger.Debug("lshindex constructed",
		zap.Int("tables", numTables), zap.Int("k", k), zap.Int("dim", dim))

	return &Index{
		families: families,
		store:    store,
		logger:   cfg.logger,
		metrics:  newMetricsSink(cfg.registry),
	}, nil
}

// StoreVec hashes v under every table, in order, and inserts it. The id
// returned is shared across all N insertions: table 0 is inserted via Put
// (which assigns the id and, if configured, retains v), the remaining
// tables via PutAt with that same id.
func (idx *Index) StoreVec(v lshtypes.Vector) (lshtypes.PerceptronId, error) {
	h0, err := idx.families[0].Hash(v)
	if err != nil {
		return 0, err
	}
	id, err := idx.store.Put(h0, v, 0)
	if err != nil {
		return 0, err
	}
	for t := 1; t < len(idx.families); t++ {
		h, err := idx.families[t].Hash(v)
		if err != nil {
			return 0, err
		}
		if err := idx.store.PutAt(h, id, t); err != nil {
			return 0, err
		}
	}
	idx.metrics.incStore()
	return id, nil
}

// QueryBucketIds unions the N buckets obtained by hashing v under each
// table and returns the distinct pids found, in unspecified order. A
// table whose bucket is empty simply contributes nothing; this is
// never an error.
func (idx *Index) QueryBucketIds(v lshtypes.Vector) ([]lshtypes.PerceptronId, error) {
	key := vectorDedupKey(v)
	res, err, _ := idx.qGroup.Do(key, func() (any, error) {
		union := lshtypes.NewBucket(0)
		for t, fam := range idx.families {
			h, err := fam.Hash(v)
			if err != nil {
				return nil, err
			}
			bucket, err := idx.store.Query(h, t)
			if err != nil {
				return nil, err
			}
			for id := range bucket {
				union.Add(id)
			}
		}
		idx.metrics.incQuery()
		idx.metrics.observeBucketSize(len(union))
		return union.IDs(), nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]lshtypes.PerceptronId), nil
}

// UpdateByIdx re-hashes vNew and vOld under every table; wherever the
// hashes differ, pid is moved from vOld's bucket to vNew's bucket. Tables
// where the hashes coincide are left untouched.
func (idx *Index) UpdateByIdx(pid lshtypes.PerceptronId, vNew, vOld lshtypes.Vector) error {
	deleter, canDelete := idx.store.(bucketstore.Deleter)

	moved := false
	for t, fam := range idx.families {
		hNew, err := fam.Hash(vNew)
		if err != nil {
			return err
		}
		hOld, err := fam.Hash(vOld)
		if err != nil {
			return err
		}
		if hNew.Equal(hOld) {
			continue
		}
		moved = true
		if canDelete {
			if err := deleter.Delete(hOld, pid, t); err != nil {
				return err
			}
		}
		if err := idx.store.PutAt(hNew, pid, t); err != nil {
			return err
		}
	}
	if moved {
		idx.metrics.incRehashChanged()
	} else {
		idx.metrics.incRehashUnchanged()
	}
	return nil
}

// Reserve hints the backend to pre-size its storage for n additional
// insertions, when the backend implements bucketstore.Grower.
func (idx *Index) Reserve(n int) {
	if grower, ok := idx.store.(bucketstore.Grower); ok {
		grower.IncreaseStorage(n)
	}
}

// VectorByID returns the vector retained for id, when the backend was
// configured to retain originals and implements bucketstore.VectorStore.
func (idx *Index) VectorByID(id lshtypes.PerceptronId) (lshtypes.Vector, bool) {
	if vs, ok := idx.store.(bucketstore.VectorStore); ok {
		return vs.VectorByID(id)
	}
	return nil, false
}

// Delete removes id from v's bucket in every table. This is a generic
// capability: the network never calls it.
func (idx *Index) Delete(id lshtypes.PerceptronId, v lshtypes.Vector) error {
	deleter, ok := idx.store.(bucketstore.Deleter)
	if !ok {
		return bucketstore.ErrUnsupported
	}
	for t, fam := range idx.families {
		h, err := fam.Hash(v)
		if err != nil {
			return err
		}
		if err := deleter.Delete(h, id, t); err != nil {
			return err
		}
	}
	return nil
}

// NumTables returns N.
func (idx *Index) NumTables() int { return len(idx.families) }

// TableStats summarizes one table's bucket population: how many distinct
// hashes are populated, and the min/max/avg size of their buckets.
type TableStats struct {
	Table   int
	Buckets int
	MinSize int
	MaxSize int
	AvgSize float64
}

// Stats reports per-table bucket diagnostics, recovering the original
// mem.rs describe() output as a plain struct instead of a stdout dump.
// Returns bucketstore.ErrUnsupported when the backend does not implement
// bucketstore.BucketStats.
func (idx *Index) Stats() ([]TableStats, error) {
	bs, ok := idx.store.(bucketstore.BucketStats)
	if !ok {
		return nil, bucketstore.ErrUnsupported
	}

	out := make([]TableStats, len(idx.families))
	for t := range idx.families {
		sizes, err := bs.BucketSizes(t)
		if err != nil {
			return nil, err
		}
		ts := TableStats{Table: t, Buckets: len(sizes)}
		if len(sizes) == 0 {
			out[t] = ts
			continue
		}
		sum := 0
		ts.MinSize, ts.MaxSize = sizes[0], sizes[0]
		for _, s := range sizes {
			if s < ts.MinSize {
				ts.MinSize = s
			}
			if s > ts.MaxSize {
				ts.MaxSize = s
			}
			sum += s
		}
		ts.AvgSize = float64(sum) / float64(len(sizes))
		out[t] = ts
	}
	return out, nil
}

// vectorDedupKey derives an exact singleflight key from v's raw bytes: a
// zero-copy view of the backing float32 array, the same trick
// lshtypes.Hash.Key() uses for map keys. Unlike a hash digest this cannot
// collide two distinct vectors onto the same key.
func vectorDedupKey(v lshtypes.Vector) string {
	if len(v) == 0 {
		return ""
	}
	b := unsafehelpers.ByteSliceFrom(unsafe.Pointer(&v[0]), uintptr(len(v))*unsafe.Sizeof(v[0]))
	return unsafehelpers.BytesToString(b)
}
