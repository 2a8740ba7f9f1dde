package bucketstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Voskan/lshnet/pkg/lshtypes"
)

func TestHashBlobRoundTrip(t *testing.T) {
	cases := []lshtypes.Hash{
		{2, 3, 4},
		{-200, 687, 1245},
		{-8979875, -2, -3, 1, 2, 3, 4, 5, 6},
	}
	for _, h := range cases {
		blob := hashBlob(h)
		require.Len(t, blob, 4*len(h))

		got := make(lshtypes.Hash, len(h))
		for i := range got {
			var u uint32
			for b := 0; b < 4; b++ {
				u |= uint32(blob[4*i+b]) << (8 * b)
			}
			got[i] = int32(u)
		}
		assert.True(t, h.Equal(got))
	}
}

func TestBadgerStorePutAndQuery(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBadgerStore(dir, 2, true)
	require.NoError(t, err)
	defer s.Close()

	h := lshtypes.Hash{1, -1}
	v := lshtypes.Vector{1, 2, 3, 4}

	id, err := s.Put(h, v, 0)
	require.NoError(t, err)
	require.NoError(t, s.PutAt(h, id, 1))

	for table := 0; table < 2; table++ {
		bucket, err := s.Query(h, table)
		require.NoError(t, err)
		assert.True(t, bucket.Has(id))
	}

	got, ok := s.VectorByID(id)
	require.True(t, ok)
	assert.Equal(t, v, got)
}

func TestBadgerStorePutAtIdempotent(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBadgerStore(dir, 1, false)
	require.NoError(t, err)
	defer s.Close()

	h := lshtypes.Hash{3, 3}
	require.NoError(t, s.PutAt(h, 5, 0))
	require.NoError(t, s.PutAt(h, 5, 0))

	bucket, err := s.Query(h, 0)
	require.NoError(t, err)
	assert.Len(t, bucket, 1)
}

func TestBadgerStoreReopenRestoresCounter(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewBadgerStore(dir, 1, true)
	require.NoError(t, err)

	id1, err := s1.Put(lshtypes.Hash{1}, lshtypes.Vector{1}, 0)
	require.NoError(t, err)
	id2, err := s1.Put(lshtypes.Hash{2}, lshtypes.Vector{2}, 0)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := NewBadgerStore(dir, 1, true)
	require.NoError(t, err)
	defer s2.Close()

	id3, err := s2.Put(lshtypes.Hash{3}, lshtypes.Vector{3}, 0)
	require.NoError(t, err)

	assert.Greater(t, uint32(id3), uint32(id2))
	assert.Greater(t, uint32(id2), uint32(id1))
}

func TestBadgerStoreBucketSizes(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBadgerStore(dir, 2, false)
	require.NoError(t, err)
	defer s.Close()

	h1 := lshtypes.Hash{1, 1}
	h2 := lshtypes.Hash{2, 2}
	_, err = s.Put(h1, lshtypes.Vector{1}, 0)
	require.NoError(t, err)
	_, err = s.Put(h1, lshtypes.Vector{1}, 0)
	require.NoError(t, err)
	_, err = s.Put(h2, lshtypes.Vector{1}, 0)
	require.NoError(t, err)
	// table 1 stays empty.

	sizes, err := s.BucketSizes(0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{2, 1}, sizes)

	sizes, err = s.BucketSizes(1)
	require.NoError(t, err)
	assert.Empty(t, sizes)
}

func TestBadgerStoreDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBadgerStore(dir, 1, false)
	require.NoError(t, err)
	defer s.Close()

	h := lshtypes.Hash{9}
	id, err := s.Put(h, lshtypes.Vector{1}, 0)
	require.NoError(t, err)

	require.NoError(t, s.Delete(h, id, 0))
	bucket, err := s.Query(h, 0)
	require.NoError(t, err)
	assert.False(t, bucket.Has(id))
}
