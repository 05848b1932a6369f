package suggest

import (
	"fmt"
	"testing"

	"github.com/bastiangx/effserve/pkg/dataset"
	"github.com/stretchr/testify/assert"
)

func manyLabels(n int) *dataset.Snapshot {
	records := make([]dataset.Record, 0, n*2)
	for i := 0; i < n; i++ {
		label := fmt.Sprintf("Silicon variant %02d", i)
		records = append(records,
			dataset.Record{CellType: label, MaterialClass: "Crystalline"},
			dataset.Record{CellType: label, MaterialClass: "Crystalline"},
		)
	}
	return dataset.NewSnapshot(records)
}

func TestCompleteLimit(t *testing.T) {
	c := NewCompleter(0, 0)
	got := c.Complete(manyLabels(12), "variant")

	expected := make([]string, 0, DefaultLimit)
	for i := 0; i < DefaultLimit; i++ {
		expected = append(expected, fmt.Sprintf("Silicon variant %02d", i))
	}
	assert.Equal(t, expected, got, "first-seen order, capped")
}

func TestCompleteShortQuery(t *testing.T) {
	c := NewCompleter(0, 0)
	snap := manyLabels(3)

	for _, q := range []string{"", "s", "  s  ", "\t"} {
		t.Run(fmt.Sprintf("%q", q), func(t *testing.T) {
			got := c.Complete(snap, q)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestCompleteMatching(t *testing.T) {
	snap := dataset.NewSnapshot([]dataset.Record{
		{CellType: "Amorphous Si:H (stabilized)", MaterialClass: "Thin-Film"},
		{CellType: "CIGS", MaterialClass: "Thin-Film"},
		{CellType: "", MaterialClass: "Thin-Film"},
		{CellType: "Perovskite", MaterialClass: "Emerging PV", Description: "thin-film perovskite"},
		{CellType: "CIGS", MaterialClass: "Thin-Film"},
	})
	c := NewCompleter(0, 0)

	testCases := []struct {
		query    string
		expected []string
	}{
		{"thin", []string{"Amorphous Si:H (stabilized)", "CIGS"}},
		{"  THIN-film ", []string{"Amorphous Si:H (stabilized)", "CIGS"}},
		{"Si:H (", []string{"Amorphous Si:H (stabilized)"}},
		{".*", []string{}},
		{"pv", []string{"Perovskite"}},
		{"silicium", []string{}},
		{"Perovskyte", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.Complete(snap, tc.query))
		})
	}
}

func TestCompleteEmptySnapshot(t *testing.T) {
	c := NewCompleter(0, 0)
	assert.Empty(t, c.Complete(nil, "silicon"))
	assert.Empty(t, c.Complete(dataset.NewSnapshot(nil), "silicon"))
}

func TestCompleteCustomLimit(t *testing.T) {
	c := NewCompleter(3, 4)
	assert.Len(t, c.Complete(manyLabels(5), "variant"), 3)
	assert.Empty(t, c.Complete(manyLabels(5), "sil"))
	assert.Equal(t, map[string]int{"limit": 3, "minLen": 4}, c.Stats())
}

func TestSuggestions(t *testing.T) {
	c := NewCompleter(0, 0)
	expected := []string{"Perovskite", "Silicon", "CIGS", "CdTe", "Gallium (GaAs)", "Organic", "Tandem"}
	assert.Equal(t, expected, c.Suggestions())

	got := c.Suggestions()
	got[0] = "changed"
	assert.Equal(t, expected, c.Suggestions(), "callers cannot modify the list")
}
