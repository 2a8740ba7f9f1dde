package lshindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Voskan/lshnet/internal/bucketstore"
	"github.com/Voskan/lshnet/pkg/lshtypes"
)

func newTestIndex(t *testing.T, numTables, k, dim int) *Index {
	t.Helper()
	store := bucketstore.NewMemoryStore(numTables, true)
	idx, err := New(store, numTables, k, dim, 42)
	require.NoError(t, err)
	return idx
}

func TestNewRejectsStoreTableMismatch(t *testing.T) {
	store := bucketstore.NewMemoryStore(2, false)
	_, err := New(store, 3, 4, 8, 1)
	assert.Error(t, err)
}

func TestNewValidatesParams(t *testing.T) {
	store := bucketstore.NewMemoryStore(1, false)
	_, err := New(store, 1, 0, 8, 1)
	assert.Error(t, err)

	_, err = New(store, 1, 4, 0, 1)
	assert.Error(t, err)
}

func TestStoreVecAssignsSharedIdAcrossTables(t *testing.T) {
	idx := newTestIndex(t, 3, 4, 8)
	v := lshtypes.Vector{1, 2, 3, 4, 5, 6, 7, 8}

	id, err := idx.StoreVec(v)
	require.NoError(t, err)

	ids, err := idx.QueryBucketIds(v)
	require.NoError(t, err)
	assert.Contains(t, ids, id)
}

func TestQueryBucketIdsEmptyIsNotError(t *testing.T) {
	idx := newTestIndex(t, 2, 4, 8)
	v := lshtypes.Vector{0, 0, 0, 0, 0, 0, 0, 0}
	ids, err := idx.QueryBucketIds(v)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpdateByIdxMovesAcrossTables(t *testing.T) {
	idx := newTestIndex(t, 2, 4, 4)
	vOld := lshtypes.Vector{1, 1, 1, 1}
	id, err := idx.StoreVec(vOld)
	require.NoError(t, err)

	vNew := lshtypes.Vector{-1, -1, -1, -1}
	require.NoError(t, idx.UpdateByIdx(id, vNew, vOld))

	ids, err := idx.QueryBucketIds(vNew)
	require.NoError(t, err)
	assert.Contains(t, ids, id)
}

func TestVectorByIDWithRetention(t *testing.T) {
	idx := newTestIndex(t, 1, 4, 4)
	v := lshtypes.Vector{1, 2, 3, 4}
	id, err := idx.StoreVec(v)
	require.NoError(t, err)

	got, ok := idx.VectorByID(id)
	require.True(t, ok)
	assert.Equal(t, v, got)
}

func TestDeleteRemovesFromAllTables(t *testing.T) {
	idx := newTestIndex(t, 2, 4, 4)
	v := lshtypes.Vector{1, 2, 3, 4}
	id, err := idx.StoreVec(v)
	require.NoError(t, err)

	require.NoError(t, idx.Delete(id, v))
	ids, err := idx.QueryBucketIds(v)
	require.NoError(t, err)
	assert.NotContains(t, ids, id)
}

func TestNumTables(t *testing.T) {
	idx := newTestIndex(t, 5, 2, 4)
	assert.Equal(t, 5, idx.NumTables())
}

func TestStatsReportsBucketDiagnostics(t *testing.T) {
	idx := newTestIndex(t, 2, 4, 4)
	idx.Reserve(8)

	_, err := idx.StoreVec(lshtypes.Vector{1, 1, 1, 1})
	require.NoError(t, err)
	_, err = idx.StoreVec(lshtypes.Vector{1, 1, 1, 1})
	require.NoError(t, err)

	stats, err := idx.Stats()
	require.NoError(t, err)
	require.Len(t, stats, 2)
	for _, ts := range stats {
		assert.GreaterOrEqual(t, ts.Buckets, 1)
		assert.GreaterOrEqual(t, ts.MinSize, 1)
		assert.GreaterOrEqual(t, ts.MaxSize, ts.MinSize)
		assert.Greater(t, ts.AvgSize, 0.0)
	}
}

func TestVectorDedupKeyIsExactNotHashed(t *testing.T) {
	a := vectorDedupKey(lshtypes.Vector{1, 2, 3})
	b := vectorDedupKey(lshtypes.Vector{1, 2, 3})
	c := vectorDedupKey(lshtypes.Vector{3, 2, 1})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
