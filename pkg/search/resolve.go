/*
Package search resolves free-text technology names against a dataset snapshot.

Resolution runs a fixed cascade and stops at the first tier that matches:

  - exact: the canonical term equals a CellType, ignoring case
  - substring: the canonical term occurs literally in CellType, Description or MaterialClass
  - fuzzy: the closest vocabulary entry, if it scores at least the threshold

The resolved records then feed either Best, which picks one record for point
queries, or History, which builds the time series of a technology.
*/
package search

import (
	"errors"

	"github.com/bastiangx/effserve/internal/logger"
	"github.com/bastiangx/effserve/pkg/dataset"
	"github.com/bastiangx/effserve/pkg/fuzzy"
	"github.com/bastiangx/effserve/pkg/terms"
	"github.com/charmbracelet/log"
)

// Defaults used when Options leave a field at its zero value.
const (
	DefaultThreshold  = 75
	DefaultCacheSize  = 1024
	DefaultNoiseFloor = 0.1
	DefaultUnknownLab = "Unknown lab"
)

// Tier is the cascade stage that produced a resolution.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierSubstring
	TierFuzzy
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierSubstring:
		return "substring"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Resolution is the outcome of one cascade run.
// Term is the canonical term, or the vocabulary entry when the fuzzy tier matched.
// Score is only set by the fuzzy tier.
type Resolution struct {
	Records []dataset.Record
	Term    string
	Tier    Tier
	Score   int
}

// Found reports whether any record matched.
func (r Resolution) Found() bool {
	return len(r.Records) > 0
}

// Options tunes a Resolver. Zero or negative Threshold and NoiseFloor select
// the defaults.
type Options struct {
	Threshold  int
	Scorer     fuzzy.Scorer
	CacheSize  int // negative disables the correction cache
	NoiseFloor float64
	UnknownLab string
	Logger     *log.Logger
}

// Resolver runs the tier cascade. It holds no per-query state and is safe for
// concurrent use.
type Resolver struct {
	terms      *terms.Normalizer
	scorer     fuzzy.Scorer
	threshold  int
	cache      *CorrectionCache
	noiseFloor float64
	unknownLab string
	log        *log.Logger
}

// NewResolver creates a resolver. A nil normalizer uses the default term table.
func NewResolver(n *terms.Normalizer, opts Options) (*Resolver, error) {
	if n == nil {
		n = terms.New(nil)
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Scorer == nil {
		opts.Scorer = fuzzy.WRatio{}
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.NoiseFloor <= 0 {
		opts.NoiseFloor = DefaultNoiseFloor
	}
	if opts.UnknownLab == "" {
		opts.UnknownLab = DefaultUnknownLab
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("search")
	}

	r := &Resolver{
		terms:      n,
		scorer:     opts.Scorer,
		threshold:  opts.Threshold,
		noiseFloor: opts.NoiseFloor,
		unknownLab: opts.UnknownLab,
		log:        opts.Logger,
	}
	if opts.CacheSize > 0 {
		cache, err := NewCorrectionCache(opts.CacheSize)
		if err != nil {
			return nil, err
		}
		r.cache = cache
	}
	return r, nil
}

// Threshold returns the minimum fuzzy score accepted as a match.
func (r *Resolver) Threshold() int {
	return r.threshold
}

// Cache returns the correction cache, nil when disabled.
func (r *Resolver) Cache() *CorrectionCache {
	return r.cache
}

// Resolve matches keyword against snap. An empty or missing snapshot resolves
// to nothing.
func (r *Resolver) Resolve(snap *dataset.Snapshot, keyword string) Resolution {
	term := r.terms.Canonical(keyword)
	res := Resolution{Term: term, Tier: TierNone}
	if snap.Empty() {
		return res
	}

	if idx := snap.ExactCellType(term); len(idx) > 0 {
		res.Records, res.Tier = snap.Select(idx), TierExact
		return res
	}

	if idx := snap.ContainsAny(term, true, true, true); len(idx) > 0 {
		res.Records, res.Tier = snap.Select(idx), TierSubstring
		return res
	}

	m, ok := r.correct(snap, term)
	if !ok {
		return res
	}
	res.Score = m.Score
	if m.Score < r.threshold {
		r.log.Debugf("No match for %q, best %q scored %d", term, m.Candidate, m.Score)
		return res
	}

	res.Records = snap.Select(snap.EqualCellOrClass(m.Candidate))
	res.Term, res.Tier = m.Candidate, TierFuzzy
	r.log.Debugf("Corrected %q to %q (score %d)", term, m.Candidate, m.Score)
	return res
}

// correct finds the closest vocabulary entry for term, going through the cache.
func (r *Resolver) correct(snap *dataset.Snapshot, term string) (fuzzy.Match, bool) {
	if m, ok := r.cache.Get(snap.Version(), term); ok {
		return m, true
	}

	m, err := fuzzy.ExtractOne(term, snap.Vocabulary(), r.scorer)
	if errors.Is(err, fuzzy.ErrNoCandidates) {
		return fuzzy.Match{}, false
	}
	r.cache.Add(snap.Version(), term, m)
	return m, true
}
