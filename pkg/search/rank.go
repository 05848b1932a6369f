package search

import (
	"sort"

	"github.com/bastiangx/effserve/pkg/dataset"
)

// Best picks the representative record of a resolved set: highest positive
// efficiency, latest date on ties, records without a date last among ties.
// With no positive efficiency it falls back to the first record.
// ok is false only for an empty set.
func Best(records []dataset.Record) (best dataset.Record, ok bool) {
	if len(records) == 0 {
		return dataset.Record{}, false
	}

	ranked := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		if eff, present := r.EfficiencyValue(); present && eff > 0 {
			ranked = append(ranked, r)
		}
	}
	if len(ranked) == 0 {
		return records[0], true
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ei, _ := ranked[i].EfficiencyValue()
		ej, _ := ranked[j].EfficiencyValue()
		if ei != ej {
			return ei > ej
		}
		di, okI := ranked[i].Date()
		dj, okJ := ranked[j].Date()
		if okI != okJ {
			return okI
		}
		return di.After(dj)
	})
	return ranked[0], true
}
