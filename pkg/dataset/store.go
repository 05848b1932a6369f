package dataset

import "sync/atomic"

// Store holds the active snapshot. Readers call Current once per query and
// keep using that pointer; Swap never mutates a published snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store with no snapshot loaded.
func NewStore() *Store {
	return &Store{}
}

// Current returns the active snapshot, or nil if nothing was loaded yet.
func (st *Store) Current() *Snapshot {
	return st.current.Load()
}

// Swap publishes snap and returns the previous snapshot.
func (st *Store) Swap(snap *Snapshot) *Snapshot {
	return st.current.Swap(snap)
}
