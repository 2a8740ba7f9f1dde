// Package bucketstore's Badger-backed implementation persists every table
// in a single embedded Badger database, using key prefixes to separate
// tables the way a one-table-per-hash-table relational layout would,
// except Badger has no notion of tables, so the table index is folded
// into the key instead.
//
// Key layout for a bucket entry: table(4B BE) ++ hash-blob ++ id(4B BE).
// The value is empty; existence of the key is the entry. This makes
// PutAt trivially idempotent (Badger Set on an identical key is a no-op
// from the bucket's point of view) and Query a prefix scan over
// table ++ hash-blob.
//
// Key layout for a retained vector: 0xFF ++ id(4B BE), value is the
// vector's float32 components encoded little-endian, one after another.
package bucketstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/Voskan/lshnet/pkg/lshtypes"
)

// BadgerStore is the persistent tabular bucket-store backend: N logical
// tables folded into one Badger database via key prefixing.
type BadgerStore struct {
	db        *badger.DB
	numTables int
	retain    bool
	counter   uint32
}

// NewBadgerStore opens (or creates) a Badger database at dir and wraps it
// as a Store with numTables logical tables. When retainVectors is true,
// the vector passed to table-0 Put calls is persisted alongside the
// bucket entries and retrievable via VectorByID.
//
// The counter used to assign fresh ids is rebuilt on open from the ids
// carried by the database's existing keys (bucket entries and retained
// vectors alike), so a BadgerStore reopened against an
// existing directory continues assigning ids above the highest one seen
// rather than restarting at zero.
func NewBadgerStore(dir string, numTables int, retainVectors bool) (*BadgerStore, error) {
	if numTables <= 0 {
		return nil, fmt.Errorf("bucketstore: numTables must be > 0")
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("bucketstore: opening badger at %q: %w", dir, err)
	}

	bs := &BadgerStore{db: db, numTables: numTables, retain: retainVectors}
	if err := bs.restoreCounter(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return bs, nil
}

// Close releases the underlying Badger database.
func (b *BadgerStore) Close() error { return b.db.Close() }

func (b *BadgerStore) NumTables() int { return b.numTables }

const vectorKeyPrefix = byte(0xFF)

func bucketKey(tableIdx int, hash lshtypes.Hash, id lshtypes.PerceptronId) []byte {
	hb := hashBlob(hash)
	key := make([]byte, 4+len(hb)+4)
	binary.BigEndian.PutUint32(key[0:4], uint32(tableIdx))
	copy(key[4:4+len(hb)], hb)
	binary.BigEndian.PutUint32(key[4+len(hb):], uint32(id))
	return key
}

func bucketPrefix(tableIdx int, hash lshtypes.Hash) []byte {
	hb := hashBlob(hash)
	key := make([]byte, 4+len(hb))
	binary.BigEndian.PutUint32(key[0:4], uint32(tableIdx))
	copy(key[4:], hb)
	return key
}

// hashBlob encodes a Hash as its little-endian byte layout. Nothing in
// this file decodes a blob back into a Hash: Query and BucketSizes compare
// blobs as raw bytes.
func hashBlob(h lshtypes.Hash) []byte {
	out := make([]byte, 4*len(h))
	for i, v := range h {
		binary.LittleEndian.PutUint32(out[4*i:], uint32(v))
	}
	return out
}

func vectorKey(id lshtypes.PerceptronId) []byte {
	key := make([]byte, 5)
	key[0] = vectorKeyPrefix
	binary.BigEndian.PutUint32(key[1:], uint32(id))
	return key
}

func encodeVector(v lshtypes.Vector) []byte {
	out := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

func decodeVector(b []byte) lshtypes.Vector {
	out := make(lshtypes.Vector, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}

func (b *BadgerStore) restoreCounter() error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var max uint32
		seen := false
		// Bucket keys and vector keys both end in id(4B BE).
		for it.Rewind(); it.Valid(); it.Next() {
			k := it.Item().Key()
			id := binary.BigEndian.Uint32(k[len(k)-4:])
			if !seen || id > max {
				max = id
				seen = true
			}
		}
		if seen {
			b.counter = max + 1
		}
		return nil
	})
}

// Put inserts hash into tableIdx under a freshly assigned id, persisting v
// alongside it when retention is enabled and tableIdx == 0.
func (b *BadgerStore) Put(hash lshtypes.Hash, v lshtypes.Vector, tableIdx int) (lshtypes.PerceptronId, error) {
	if tableIdx < 0 || tableIdx >= b.numTables {
		return 0, ErrUnsupported
	}

	id := lshtypes.PerceptronId(b.counter)
	err := b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(bucketKey(tableIdx, hash, id), nil); err != nil {
			return err
		}
		if b.retain && tableIdx == 0 {
			if err := txn.Set(vectorKey(id), encodeVector(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bucketstore: badger put: %w", err)
	}
	b.counter++
	return id, nil
}

// PutAt inserts hash into tableIdx under an explicit id. Idempotent: a
// repeated Set of the same key is a no-op from Badger's point of view.
func (b *BadgerStore) PutAt(hash lshtypes.Hash, id lshtypes.PerceptronId, tableIdx int) error {
	if tableIdx < 0 || tableIdx >= b.numTables {
		return ErrUnsupported
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(bucketKey(tableIdx, hash, id), nil)
	})
	if err != nil {
		return fmt.Errorf("bucketstore: badger putAt: %w", err)
	}
	return nil
}

// Query scans the key range under tableIdx's hash prefix and collects
// every id found.
func (b *BadgerStore) Query(hash lshtypes.Hash, tableIdx int) (lshtypes.Bucket, error) {
	if tableIdx < 0 || tableIdx >= b.numTables {
		return nil, ErrUnsupported
	}

	out := lshtypes.NewBucket(0)
	prefix := bucketPrefix(tableIdx, hash)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().Key()
			id := binary.BigEndian.Uint32(k[len(k)-4:])
			out.Add(lshtypes.PerceptronId(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bucketstore: badger query: %w", err)
	}
	return out, nil
}

// Delete removes a single (hash, id) entry from tableIdx.
func (b *BadgerStore) Delete(hash lshtypes.Hash, id lshtypes.PerceptronId, tableIdx int) error {
	if tableIdx < 0 || tableIdx >= b.numTables {
		return ErrUnsupported
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(bucketKey(tableIdx, hash, id))
	})
	if err != nil {
		return fmt.Errorf("bucketstore: badger delete: %w", err)
	}
	return nil
}

// VectorByID looks up the vector retained for id, when retention is
// enabled.
func (b *BadgerStore) VectorByID(id lshtypes.PerceptronId) (lshtypes.Vector, bool) {
	if !b.retain {
		return nil, false
	}
	var v lshtypes.Vector
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(vectorKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(raw []byte) error {
			v = decodeVector(raw)
			return nil
		})
	})
	if err != nil {
		return nil, false
	}
	return v, true
}

// BucketSizes scans tableIdx's key range and returns the size of every
// distinct hash-blob run found. Keys sharing a hash blob are contiguous
// under Badger's lexicographic ordering (table prefix ++ hash blob ++ id,
// fixed-width at every position but the last), so a single pass suffices.
func (b *BadgerStore) BucketSizes(tableIdx int) ([]int, error) {
	if tableIdx < 0 || tableIdx >= b.numTables {
		return nil, ErrUnsupported
	}

	prefix := make([]byte, 4)
	binary.BigEndian.PutUint32(prefix, uint32(tableIdx))

	var sizes []int
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		var curHash []byte
		count := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().Key()
			hashPart := k[4 : len(k)-4]
			if curHash == nil || !bytes.Equal(hashPart, curHash) {
				if curHash != nil {
					sizes = append(sizes, count)
				}
				curHash = append([]byte(nil), hashPart...)
				count = 0
			}
			count++
		}
		if curHash != nil {
			sizes = append(sizes, count)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bucketstore: badger bucket stats: %w", err)
	}
	return sizes, nil
}

var (
	_ Store       = (*BadgerStore)(nil)
	_ Deleter     = (*BadgerStore)(nil)
	_ VectorStore = (*BadgerStore)(nil)
	_ BucketStats = (*BadgerStore)(nil)
)
