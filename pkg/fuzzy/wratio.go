package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Constants for scoring
const (
	unbaseScale      = 0.95
	partialScale     = 0.90
	longPartialScale = 0.6
	partialMinRatio  = 1.5
	longLengthRatio  = 8.0
)

// WRatio is the weighted ratio scorer. The zero value is ready to use.
type WRatio struct{}

// Score implements Scorer.
func (WRatio) Score(a, b string) int {
	if a == b {
		return 100
	}
	p1, p2 := Process(a), Process(b)
	if p1 == "" || p2 == "" {
		return 0
	}
	r1, r2 := []rune(p1), []rune(p2)

	base := ratio(r1, r2)
	l1, l2 := float64(len(r1)), float64(len(r2))
	lenRatio := math.Max(l1, l2) / math.Min(l1, l2)

	if lenRatio < partialMinRatio {
		tsor := tokenSortRatio(p1, p2) * unbaseScale
		tser := tokenSetRatio(p1, p2) * unbaseScale
		return toScore(maxOf(base, tsor, tser))
	}

	scale := partialScale
	if lenRatio > longLengthRatio {
		scale = longPartialScale
	}
	partial := partialRatio(r1, r2) * scale
	ptsor := partialTokenSortRatio(p1, p2) * unbaseScale * scale
	ptser := partialTokenSetRatio(p1, p2) * unbaseScale * scale
	return toScore(maxOf(base, partial, ptsor, ptser))
}

// Process replaces every rune that is not a letter, digit or underscore with
// a space, lowercases the result and trims it.
func Process(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.TrimSpace(mapped)
}

// Ratio is the plain similarity of a and b: twice the longest common
// subsequence over the total length, times 100.
func Ratio(a, b string) float64 {
	return ratio([]rune(a), []rune(b))
}

// PartialRatio is the best Ratio of the shorter string against any window of
// the longer one.
func PartialRatio(a, b string) float64 {
	return partialRatio([]rune(a), []rune(b))
}

func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(lcsLength(a, b)) / float64(total)
}

func partialRatio(a, b []rune) float64 {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}

	ls, ll := len(short), len(long)
	best := 0.0
	// windows hanging over either end let a prefix or suffix of short align
	for start := -(ls - 1); start < ll; start++ {
		lo, hi := max(0, start), min(ll, start+ls)
		if r := ratio(short, long[lo:hi]); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

func partialTokenSortRatio(a, b string) float64 {
	return PartialRatio(sortedTokens(a), sortedTokens(b))
}

// tokenSets splits both strings into token sets and returns the sorted
// intersection and the two sorted differences.
func tokenSets(a, b string) (sect, diffAB, diffBA []string) {
	setA := make(map[string]struct{})
	for _, t := range strings.Fields(a) {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{})
	for _, t := range strings.Fields(b) {
		setB[t] = struct{}{}
	}
	for t := range setA {
		if _, ok := setB[t]; ok {
			sect = append(sect, t)
		} else {
			diffAB = append(diffAB, t)
		}
	}
	for t := range setB {
		if _, ok := setA[t]; !ok {
			diffBA = append(diffBA, t)
		}
	}
	sort.Strings(sect)
	sort.Strings(diffAB)
	sort.Strings(diffBA)
	return sect, diffAB, diffBA
}

func tokenSetRatio(a, b string) float64 {
	sect, diffAB, diffBA := tokenSets(a, b)
	if len(sect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	t0 := strings.Join(sect, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(diffAB, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(diffBA, " "))
	return maxOf(Ratio(t0, t1), Ratio(t0, t2), Ratio(t1, t2))
}

func partialTokenSetRatio(a, b string) float64 {
	sect, diffAB, diffBA := tokenSets(a, b)
	if len(sect) > 0 {
		return 100
	}
	return PartialRatio(strings.Join(diffAB, " "), strings.Join(diffBA, " "))
}

func maxOf(first float64, rest ...float64) float64 {
	m := first
	for _, v := range rest {
		if v > m {
			m = v
		}
	}
	return m
}

// toScore rounds half to even and clamps to [0,100].
func toScore(v float64) int {
	s := int(math.RoundToEven(v))
	return max(0, min(100, s))
}
