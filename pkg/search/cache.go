package search

import (
	"sync/atomic"

	"github.com/bastiangx/effserve/pkg/fuzzy"
	lru "github.com/hashicorp/golang-lru/v2"
)

type correctionKey struct {
	version uint64
	term    string
}

// CorrectionCache remembers the best vocabulary match per canonical term.
// Keys carry the snapshot version, so entries of a replaced snapshot are
// never returned and simply age out.
// A nil *CorrectionCache is valid and caches nothing.
type CorrectionCache struct {
	entries *lru.Cache[correctionKey, fuzzy.Match]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewCorrectionCache creates a cache holding up to size entries.
func NewCorrectionCache(size int) (*CorrectionCache, error) {
	entries, err := lru.New[correctionKey, fuzzy.Match](size)
	if err != nil {
		return nil, err
	}
	return &CorrectionCache{entries: entries}, nil
}

func (c *CorrectionCache) Get(version uint64, term string) (fuzzy.Match, bool) {
	if c == nil {
		return fuzzy.Match{}, false
	}
	m, ok := c.entries.Get(correctionKey{version, term})
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return m, ok
}

func (c *CorrectionCache) Add(version uint64, term string, m fuzzy.Match) {
	if c == nil {
		return
	}
	c.entries.Add(correctionKey{version, term}, m)
}

// Purge drops every entry.
func (c *CorrectionCache) Purge() {
	if c == nil {
		return
	}
	c.entries.Purge()
}

func (c *CorrectionCache) Stats() map[string]int {
	if c == nil {
		return map[string]int{}
	}
	return map[string]int{
		"cacheEntries": c.entries.Len(),
		"cacheHits":    int(c.hits.Load()),
		"cacheMisses":  int(c.misses.Load()),
	}
}
