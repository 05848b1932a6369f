package dataset

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastiangx/effserve/internal/utils"
	"github.com/tchap/go-patricia/v2/patricia"
)

var versionSeq atomic.Uint64

// lowered keeps the lowercase text fields used by the case-insensitive tiers.
type lowered struct {
	cellType      string
	materialClass string
	description   string
}

// Snapshot is an immutable, queryable version of the whole dataset.
type Snapshot struct {
	records  []Record
	lower    []lowered
	exact    *patricia.Trie
	blank    []int
	version  uint64
	loadedAt time.Time

	vocabOnce sync.Once
	vocab     []string
}

// NewSnapshot copies records into a new snapshot and builds its indexes.
func NewSnapshot(records []Record) *Snapshot {
	s := &Snapshot{
		records:  make([]Record, len(records)),
		lower:    make([]lowered, len(records)),
		exact:    patricia.NewTrie(),
		version:  versionSeq.Add(1),
		loadedAt: time.Now(),
	}
	copy(s.records, records)

	for i, r := range s.records {
		l := lowered{
			cellType:      strings.ToLower(r.CellType),
			materialClass: strings.ToLower(r.MaterialClass),
			description:   strings.ToLower(r.Description),
		}
		s.lower[i] = l

		if l.cellType == "" {
			s.blank = append(s.blank, i)
			continue
		}
		key := patricia.Prefix(l.cellType)
		if item := s.exact.Get(key); item != nil {
			s.exact.Set(key, append(item.([]int), i))
		} else {
			s.exact.Insert(key, []int{i})
		}
	}
	return s
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Empty reports whether the snapshot is missing or holds no records.
func (s *Snapshot) Empty() bool {
	return s.Len() == 0
}

// Version is unique per snapshot for the life of the process.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// LoadedAt returns the snapshot build time.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// At returns the i-th record.
func (s *Snapshot) At(i int) Record {
	return s.records[i]
}

// Records returns a copy of all records in order.
func (s *Snapshot) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Select returns the records at the given indexes, in index order.
func (s *Snapshot) Select(idx []int) []Record {
	out := make([]Record, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.records[i])
	}
	return out
}

// ExactCellType returns indexes of records whose CellType equals term, ignoring case.
func (s *Snapshot) ExactCellType(term string) []int {
	key := strings.ToLower(term)
	if key == "" {
		return s.blank
	}
	item := s.exact.Get(patricia.Prefix(key))
	if item == nil {
		return nil
	}
	return item.([]int)
}

// ContainsAny returns indexes of records where any of the chosen fields contains
// term literally, ignoring case.
func (s *Snapshot) ContainsAny(term string, cellType, description, materialClass bool) []int {
	needle := strings.ToLower(term)
	var out []int
	for i, l := range s.lower {
		if (cellType && strings.Contains(l.cellType, needle)) ||
			(description && strings.Contains(l.description, needle)) ||
			(materialClass && strings.Contains(l.materialClass, needle)) {
			out = append(out, i)
		}
	}
	return out
}

// EqualCellOrClass returns indexes of records whose CellType or MaterialClass
// equals value exactly.
func (s *Snapshot) EqualCellOrClass(value string) []int {
	var out []int
	for i, r := range s.records {
		if r.CellType == value || r.MaterialClass == value {
			out = append(out, i)
		}
	}
	return out
}

// Vocabulary returns the distinct non-empty CellType values followed by the
// distinct non-empty MaterialClass values, in first-seen order.
func (s *Snapshot) Vocabulary() []string {
	s.vocabOnce.Do(func() {
		seen := utils.NewOrderedSet(len(s.records))
		for _, r := range s.records {
			seen.Add(r.CellType)
		}
		for _, r := range s.records {
			seen.Add(r.MaterialClass)
		}
		s.vocab = seen.Items()
	})
	return s.vocab
}
