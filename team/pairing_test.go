package team

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPairingTable_RoundRobin(t *testing.T) {
	require.NoError(t, DefaultPairingTable.Validate())

	met := make(map[[2]int]int)
	for _, step := range DefaultPairingTable.Rotations {
		for _, p := range step {
			a, b := min(p[0], p[1]), max(p[0], p[1])
			met[[2]int{a, b}]++
		}
	}
	assert.Len(t, met, 15, "every pair of 6 slots meets")
	for pair, n := range met {
		assert.Equal(t, 1, n, "pair %v", pair)
	}
}

func TestPartner(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	tbl := DefaultPairingTable

	assert.Equal(t, 2, tbl.RotationIndex(3))
	assert.Equal(t, 0, tbl.RotationIndex(6))
	assert.Equal(t, 4, tbl.RotationIndex(0))

	p, ok := tbl.Partner(3, ids, "a")
	require.True(t, ok)
	assert.Equal(t, "e", p)

	// Partnership is symmetric within a step.
	p, ok = tbl.Partner(3, ids, "e")
	require.True(t, ok)
	assert.Equal(t, "a", p)

	_, ok = tbl.Partner(3, ids, "zz")
	assert.False(t, ok)

	_, ok = tbl.Partner(3, ids[:3], "a")
	assert.False(t, ok, "partner slot 4 unknown")

	sparse := PairingTable{Slots: 3, Rotations: [][][2]int{{{0, 1}}}}
	_, ok = sparse.Partner(1, []string{"a", "b", "c"}, "c")
	assert.False(t, ok, "slot not in any pair")
}

func TestPairingTable_Validate(t *testing.T) {
	bad := []PairingTable{
		{Slots: 1, Rotations: [][][2]int{{{0, 0}}}},
		{Slots: 4},
		{Slots: 4, Rotations: [][][2]int{{{0, 1}, {1, 2}}}},
		{Slots: 4, Rotations: [][][2]int{{{0, 4}, {1, 2}}}},
		{Slots: 4, Rotations: [][][2]int{{{0, 1}}}},
	}
	for _, tbl := range bad {
		assert.ErrorIs(t, tbl.Validate(), ErrInvalidPairingTable, "%+v", tbl)
	}
}

func TestLoadPairingTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pairs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slots: 4\nrotations:\n  - [[0, 1], [2, 3]]\n  - [[0, 2], [1, 3]]\n  - [[0, 3], [1, 2]]\n"), 0o600))

	tbl, err := LoadPairingTable(path)
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.Slots)
	assert.Len(t, tbl.Rotations, 3)
	assert.Equal(t, [2]int{1, 3}, tbl.Rotations[1][1])

	require.NoError(t, os.WriteFile(path, []byte("slots: 4\nrotations:\n  - [[0, 1, 2]]\n"), 0o600))
	_, err = LoadPairingTable(path)
	assert.ErrorIs(t, err, ErrInvalidPairingTable)

	_, err = LoadPairingTable(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
