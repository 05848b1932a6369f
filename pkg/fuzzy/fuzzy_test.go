package fuzzy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// IMPORTANT to know:
// the resolver only trusts a fuzzy match at 75 and above, so cases here pin
// which side of that line typical inputs fall on.
func TestWRatio(t *testing.T) {
	testCases := []struct {
		a, b        string
		expected    int
		description string
	}{
		{"Perovskite", "Perovskite", 100, "Identical"},
		{"perovskite", "PEROVSKITE", 100, "Case insensitive"},
		{"Perovskyte", "Perovskite", 90, "One substitution"},
		{"Perovskite", "Perovskite Tandem Cell", 90, "Query is a full word of a longer label"},
		{"xyzzy", "Perovskite", 0, "Nothing in common"},
		{"!!!", "Perovskite", 0, "Empty after processing"},
		{"--", "(+)", 0, "Different, both empty after processing"},
		{"--", "--", 100, "Identical punctuation only"},
		{"(+)", "(+)", 100, "Identical brackets only"},
		{"", "", 100, "Both empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, WRatio{}.Score(tc.a, tc.b))
		})
	}
}

func TestWRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Si:H (stab)", "Amorphous Si:H (stabilized)"},
		{"monocrystalline", "Single crystal"},
		{"CIGS", "CIGS (concentrator)"},
	}
	for _, p := range pairs {
		t.Run(p[0], func(t *testing.T) {
			assert.Equal(t, WRatio{}.Score(p[0], p[1]), WRatio{}.Score(p[1], p[0]))
		})
	}
}

func TestProcess(t *testing.T) {
	assert.Equal(t, "amorphous si h  stabilized", Process("Amorphous Si:H (stabilized)"))
	assert.Equal(t, "thin film", Process("  Thin-Film "))
	assert.Equal(t, "under_score", Process("under_score"))
}

func TestRatioAndPartialRatio(t *testing.T) {
	assert.InDelta(t, 100, Ratio("abc", "abc"), 1e-9)
	assert.InDelta(t, 90, Ratio("perovskyte", "perovskite"), 1e-9)
	assert.InDelta(t, 0, Ratio("abc", ""), 1e-9)
	assert.InDelta(t, 100, PartialRatio("skit", "perovskite"), 1e-9)
	assert.InDelta(t, 100, PartialRatio("perovskite", "skit"), 1e-9)
}

func TestTokenRatios(t *testing.T) {
	assert.InDelta(t, 100, tokenSortRatio("crystal single", "single crystal"), 1e-9)
	assert.InDelta(t, 100, tokenSetRatio("single crystal", "crystal single crystal"), 1e-9)
	assert.InDelta(t, 100, partialTokenSetRatio("silicon cell", "silicon heterojunction"), 1e-9)
}

// check if our lev distance impl returns correct distance int
func TestLevenshteinDistance(t *testing.T) {
	testCases := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "a", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"book", "back", 2},
		{"book", "books", 1},
		{"hello", "hallo", 1},
		{"hétéro", "hetero", 2},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s→%s", tc.a, tc.b), func(t *testing.T) {
			assert.Equal(t, tc.expected, Distance(tc.a, tc.b))
		})
	}
}

func TestLevenshteinScore(t *testing.T) {
	assert.Equal(t, 100, Levenshtein{}.Score("CdTe", "cdte"))
	assert.Equal(t, 57, Levenshtein{}.Score("kitten", "sitting"))
	assert.Equal(t, 100, Levenshtein{}.Score("", ""))
	assert.Equal(t, 0, Levenshtein{}.Score("abc", ""))
}

func TestExtractOne(t *testing.T) {
	choices := []string{"Silicon", "Perovskite", "perovskite", "CIGS"}

	m, err := ExtractOne("Perovskyte", choices, WRatio{})
	require.NoError(t, err)
	assert.Equal(t, "Perovskite", m.Candidate, "earliest choice wins a tie")
	assert.Equal(t, 1, m.Index)
	assert.Equal(t, 90, m.Score)

	m, err = ExtractOne("zzz", []string{"Silicon"}, WRatio{})
	require.NoError(t, err)
	assert.Equal(t, "Silicon", m.Candidate)
	assert.Equal(t, 0, m.Score)
}

func TestExtractOneNoCandidates(t *testing.T) {
	_, err := ExtractOne("Perovskite", nil, WRatio{})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestByName(t *testing.T) {
	s, ok := ByName("WRatio")
	require.True(t, ok)
	assert.IsType(t, WRatio{}, s)

	s, ok = ByName("levenshtein")
	require.True(t, ok)
	assert.IsType(t, Levenshtein{}, s)

	_, ok = ByName("soundex")
	assert.False(t, ok)
}

// 1000 candidates, 5 inputs
func BenchmarkExtractOne(b *testing.B) {
	choices := make([]string, 1000)
	for i := range choices {
		choices[i] = fmt.Sprintf("Technology %d (variant)", i)
	}
	inputs := []string{"Tecnology 12", "technolgy 500", "variant", "Perovskite", "Si:H"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ExtractOne(inputs[i%len(inputs)], choices, WRatio{})
	}
}
