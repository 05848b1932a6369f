// Package suggest provides the autocomplete lookups, literal substring matching over technology labels and the fixed example list.
package suggest

import "github.com/bastiangx/effserve/pkg/dataset"

// ICompleter defines the interface for autocomplete engines
type ICompleter interface {
	// Complete returns up to the configured limit of CellType labels matching query
	Complete(snap *dataset.Snapshot, query string) []string

	// Suggestions returns example technology names, independent of the data
	Suggestions() []string

	// Stats returns the completer settings
	Stats() map[string]int
}
