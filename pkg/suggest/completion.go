package suggest

import (
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/effserve/internal/utils"
	"github.com/bastiangx/effserve/pkg/dataset"
)

const (
	DefaultLimit  = 8
	DefaultMinLen = 2
)

var examples = []string{"Perovskite", "Silicon", "CIGS", "CdTe", "Gallium (GaAs)", "Organic", "Tandem"}

type Completer struct {
	limit  int
	minLen int
}

// NewCompleter creates a completer. Zero or negative values pick the defaults.
func NewCompleter(limit, minLen int) *Completer {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if minLen <= 0 {
		minLen = DefaultMinLen
	}
	return &Completer{limit: limit, minLen: minLen}
}

// Complete scans CellType and MaterialClass for query as a literal,
// case-insensitive substring and returns the distinct CellType labels of the
// matching records in dataset order.
// Queries shorter than the minimum length after trimming return an empty list without a scan.
func (c *Completer) Complete(snap *dataset.Snapshot, query string) []string {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < c.minLen || snap.Empty() {
		return []string{}
	}

	labels := utils.NewLimitedSet(c.limit)
	for _, i := range snap.ContainsAny(trimmed, true, false, true) {
		labels.Add(snap.At(i).CellType)
		if labels.Full() {
			break
		}
	}
	return labels.Items()
}

// Suggestions returns a copy of the example list.
func (c *Completer) Suggestions() []string {
	out := make([]string, len(examples))
	copy(out, examples)
	return out
}

func (c *Completer) Stats() map[string]int {
	return map[string]int{
		"limit":  c.limit,
		"minLen": c.minLen,
	}
}
