/*
Package fuzzy scores how close two strings are on a 0 to 100 scale.

Two scorers are provided. WRatio is the default: it preprocesses both strings
(punctuation to spaces, lowercase, trim) and takes a weighted maximum of a
plain similarity ratio, a best-window partial ratio and two token based ratios,
so that "Si:H stabilized" still scores high against "Amorphous Si:H
(stabilized)". Levenshtein is a plain edit-distance ratio.

	best, err := fuzzy.ExtractOne("Perovskyte", vocabulary, fuzzy.WRatio{})
	if errors.Is(err, fuzzy.ErrNoCandidates) {
		// nothing to score against
	}

Identical strings always score 100.
*/
package fuzzy

import (
	"errors"
	"strings"
)

// ErrNoCandidates is returned by ExtractOne when the choice list is empty.
var ErrNoCandidates = errors.New("no candidates to score")

// Scorer rates the similarity of two strings in [0,100].
type Scorer interface {
	Score(a, b string) int
}

// Match is the best scoring candidate of an ExtractOne call.
type Match struct {
	Candidate string
	Score     int
	Index     int
}

// ExtractOne scores query against every choice and returns the best one.
// On ties the earliest choice wins, so the result only depends on the order
// of choices.
func ExtractOne(query string, choices []string, scorer Scorer) (Match, error) {
	if len(choices) == 0 {
		return Match{}, ErrNoCandidates
	}

	best := Match{Index: -1, Score: -1}
	for i, c := range choices {
		score := scorer.Score(query, c)
		if score > best.Score {
			best = Match{Candidate: c, Score: score, Index: i}
			if score == 100 {
				break
			}
		}
	}
	return best, nil
}

// ByName returns the scorer registered under name, and false for unknown names.
func ByName(name string) (Scorer, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "wratio":
		return WRatio{}, true
	case "levenshtein":
		return Levenshtein{}, true
	default:
		return nil, false
	}
}
