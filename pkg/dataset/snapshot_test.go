package dataset

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{CellType: "Perovskite", MaterialClass: "Emerging PV", Group: "KRICT", Efficiency: Eff(25.7)},
		{CellType: "Amorphous Si:H (stabilized)", MaterialClass: "Thin-Film", Description: "a-Si single junction", Efficiency: Eff(10.2)},
		{CellType: "perovskite", MaterialClass: "Emerging PV", Efficiency: Eff(22.1)},
		{CellType: "", MaterialClass: "Thin-Film", Efficiency: Eff(1.0)},
		{CellType: "CIGS", MaterialClass: "Thin-Film", Efficiency: Eff(23.4)},
	}
}

func TestSnapshotExactCellTypeIgnoresCase(t *testing.T) {
	snap := NewSnapshot(sampleRecords())

	assert.Equal(t, []int{0, 2}, snap.ExactCellType("PEROVSKITE"))
	assert.Equal(t, []int{1}, snap.ExactCellType("amorphous si:h (stabilized)"))
	assert.Nil(t, snap.ExactCellType("Perov"))
	assert.Equal(t, []int{3}, snap.ExactCellType(""), "blank term matches blank cell types")
}

func TestSnapshotContainsAnyIsLiteral(t *testing.T) {
	snap := NewSnapshot(sampleRecords())

	assert.Equal(t, []int{1}, snap.ContainsAny("Si:H (stab", true, true, true))
	assert.Empty(t, snap.ContainsAny("Si.H", true, true, true), "dot must not act as a wildcard")
	assert.Empty(t, snap.ContainsAny("(", false, false, true))
	assert.Equal(t, []int{1}, snap.ContainsAny("single junction", false, true, false))
	assert.Equal(t, []int{1, 3, 4}, snap.ContainsAny("thin", false, false, true))
}

func TestSnapshotVocabularyOrder(t *testing.T) {
	snap := NewSnapshot(sampleRecords())

	want := []string{
		"Perovskite", "Amorphous Si:H (stabilized)", "perovskite", "CIGS",
		"Emerging PV", "Thin-Film",
	}
	assert.Equal(t, want, snap.Vocabulary())
}

func TestSnapshotIsolatedFromCallerSlice(t *testing.T) {
	records := sampleRecords()
	snap := NewSnapshot(records)
	records[0].CellType = "changed"

	assert.Equal(t, "Perovskite", snap.At(0).CellType)
	got := snap.Records()
	got[1].CellType = "changed"
	assert.Equal(t, "Amorphous Si:H (stabilized)", snap.At(1).CellType)
}

func TestSnapshotVersionsAreUnique(t *testing.T) {
	a := NewSnapshot(nil)
	b := NewSnapshot(nil)
	assert.NotEqual(t, a.Version(), b.Version())
	assert.True(t, a.Empty())

	var nilSnap *Snapshot
	assert.True(t, nilSnap.Empty())
}

func TestStoreSwapDuringReads(t *testing.T) {
	store := NewStore()
	require.Nil(t, store.Current())

	first := NewSnapshot(sampleRecords())
	assert.Nil(t, store.Swap(first))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				snap := store.Current()
				n := snap.Len()
				// a captured snapshot never changes under the reader
				assert.Equal(t, n, len(snap.Records()))
			}
		}()
	}
	for i := 0; i < 20; i++ {
		store.Swap(NewSnapshot(sampleRecords()[:i%5+1]))
	}
	wg.Wait()
}
