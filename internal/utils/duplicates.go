package utils

// OrderedSet collects distinct non-empty strings in first-seen order.
// Comparison is exact, "Si" and "si" are different entries.
type OrderedSet struct {
	seen  map[string]struct{}
	items []string
	limit int
}

// NewOrderedSet creates an unbounded set with room for sizeHint entries.
func NewOrderedSet(sizeHint int) *OrderedSet {
	return &OrderedSet{
		seen:  make(map[string]struct{}, sizeHint),
		items: make([]string, 0, sizeHint),
	}
}

// NewLimitedSet creates a set that stops accepting entries after limit items.
func NewLimitedSet(limit int) *OrderedSet {
	return &OrderedSet{
		seen:  make(map[string]struct{}, limit),
		items: make([]string, 0, limit),
		limit: limit,
	}
}

// Add inserts s unless it is empty, already present, or the set is full.
// Returns true if s was added.
func (o *OrderedSet) Add(s string) bool {
	if s == "" || o.Full() {
		return false
	}
	if _, ok := o.seen[s]; ok {
		return false
	}
	o.seen[s] = struct{}{}
	o.items = append(o.items, s)
	return true
}

// Full reports whether a limited set reached its limit.
func (o *OrderedSet) Full() bool {
	return o.limit > 0 && len(o.items) >= o.limit
}

// Len returns the number of entries.
func (o *OrderedSet) Len() int {
	return len(o.items)
}

// Items returns the entries in insertion order.
func (o *OrderedSet) Items() []string {
	return o.items
}
