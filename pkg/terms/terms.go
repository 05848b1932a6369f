// Package terms maps user search terms to the canonical technology names used in the dataset.
package terms

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultMapping translates common French technology names to the English
// labels of the NREL chart.
var DefaultMapping = map[string]string{
	"silicium":       "Silicon",
	"monocristallin": "Single crystal",
	"polycristallin": "Multicrystalline",
	"couche mince":   "Thin-Film",
	"perovskite":     "Perovskite",
	"organique":      "Organic",
	"colorant":       "Dye",
	"cellule":        "Cell",
	"tandem":         "Tandem",
	"hétérojonction": "Heterojunction",
	"amorphe":        "Amorphous",
	"gallium (gaas)": "GaAs",
	"gallium":        "GaAs",
	"gaas":           "GaAs",
	"concentration":  "Concentrator",
	"cigs":           "CIGS",
	"cdte":           "CdTe",
	"quantum dot":    "Quantum Dot",
}

// Normalizer holds a fixed translation table. It is safe for concurrent use
// since the table is never modified after construction.
type Normalizer struct {
	table map[string]string
}

// New builds a normalizer from DefaultMapping plus extra entries. Extra keys
// override defaults and are normalized the same way lookups are.
func New(extra map[string]string) *Normalizer {
	table := make(map[string]string, len(DefaultMapping)+len(extra))
	for k, v := range DefaultMapping {
		table[Key(k)] = v
	}
	for k, v := range extra {
		if key := Key(k); key != "" && v != "" {
			table[key] = v
		}
	}
	return &Normalizer{table: table}
}

// Key is the lookup form of a term: trimmed, lowercased, NFC composed.
// NFC makes a decomposed "é" typed on some keyboards hit the same entry.
func Key(raw string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(raw)))
}

// Canonical returns the mapped term for raw, or raw itself, untrimmed and
// with its original casing, when there is no mapping.
func (n *Normalizer) Canonical(raw string) string {
	if mapped, ok := n.table[Key(raw)]; ok {
		return mapped
	}
	return raw
}

// Len returns the number of entries in the table.
func (n *Normalizer) Len() int {
	return len(n.table)
}
