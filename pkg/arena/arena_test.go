package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Voskan/lshnet/pkg/lshtypes"
)

func TestAddAssignsSequentialSlots(t *testing.T) {
	a := New()
	s0 := a.Add(lshtypes.Vector{1, 2})
	s1 := a.Add(lshtypes.Vector{3, 4})
	assert.Equal(t, lshtypes.ArenaIndex(0), s0)
	assert.Equal(t, lshtypes.ArenaIndex(1), s1)
	assert.Equal(t, 2, a.Len())
}

func TestFreeThenAddReusesSlot(t *testing.T) {
	a := New()
	s0 := a.Add(lshtypes.Vector{1})
	_ = a.Add(lshtypes.Vector{2})
	a.Free(s0)

	s2 := a.Add(lshtypes.Vector{9})
	assert.Equal(t, s0, s2)
	assert.Equal(t, lshtypes.Vector{9}, a.Get(s2))
	assert.Equal(t, 2, a.Len())
}

func TestGetMutAliasesStorage(t *testing.T) {
	a := New()
	slot := a.Add(lshtypes.Vector{1, 2, 3})
	mut := a.GetMut(slot)
	mut[0] = 99
	assert.Equal(t, float32(99), a.Get(slot)[0])
}

func TestFreezeAndSnapshot(t *testing.T) {
	a := New()
	slot := a.Add(lshtypes.Vector{1, 2})
	a.Freeze()
	assert.Equal(t, a.Len(), a.BackupLen())
	assert.Equal(t, lshtypes.Vector{1, 2}, a.Backup(slot))

	a.GetMut(slot)[0] = 42
	assert.Equal(t, lshtypes.Vector{1, 2}, a.Backup(slot))

	a.Snapshot(slot)
	assert.Equal(t, lshtypes.Vector{42, 2}, a.Backup(slot))
}

func TestBackupIsIndependentCopy(t *testing.T) {
	a := New()
	slot := a.Add(lshtypes.Vector{1, 2})
	a.Freeze()

	backup := a.Backup(slot)
	backup[0] = 77
	assert.Equal(t, float32(1), a.Get(slot)[0])
}
