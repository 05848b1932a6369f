package search

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/effserve/pkg/dataset"
)

const dateLayout = "2006-01-02"

// Point is one measurement in a technology history.
type Point struct {
	Date       string  `json:"date" msgpack:"date"`
	Year       int     `json:"year" msgpack:"year"`
	Efficiency float64 `json:"efficiency" msgpack:"efficiency"`
	Lab        string  `json:"lab" msgpack:"lab"`
}

// History is the result of a history extraction. Points is never nil.
// Err is set when extraction failed; Points is then empty.
type History struct {
	Points []Point
	Term   string
	Tier   Tier
	Err    error
}

// History resolves keyword and returns the dated measurements of the best
// matching technology, oldest first.
//
// Records are scoped to the CellType of the highest efficiency record, or to
// its MaterialClass when that CellType is a single character or empty.
// Records without a date or efficiency, or at or below the noise floor, are
// left out.
func (r *Resolver) History(snap *dataset.Snapshot, keyword string) (h History) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Errorf("History for %q failed: %v", keyword, p)
			h = History{Points: []Point{}, Term: h.Term, Tier: h.Tier, Err: fmt.Errorf("history %q: %v", keyword, p)}
		}
	}()

	h.Points = []Point{}
	res := r.Resolve(snap, keyword)
	h.Term, h.Tier = res.Term, res.Tier
	if !res.Found() {
		return h
	}

	target := strongest(res.Records)
	scoped := scope(res.Records, target)

	kept := make([]dataset.Record, 0, len(scoped))
	for _, rec := range scoped {
		eff, hasEff := rec.EfficiencyValue()
		_, hasDate := rec.Date()
		if !hasEff || !hasDate || eff <= r.noiseFloor {
			continue
		}
		kept = append(kept, rec)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].MeasurementDate.Before(*kept[j].MeasurementDate)
	})

	h.Points = make([]Point, 0, len(kept))
	for _, rec := range kept {
		d := *rec.MeasurementDate
		h.Points = append(h.Points, Point{
			Date:       d.Format(dateLayout),
			Year:       d.Year(),
			Efficiency: *rec.Efficiency,
			Lab:        r.labName(rec.Group),
		})
	}
	return h
}

// strongest returns the first record holding the highest efficiency, or the
// first record when none has one.
func strongest(records []dataset.Record) dataset.Record {
	best := records[0]
	bestEff, found := best.EfficiencyValue()
	for _, rec := range records[1:] {
		eff, ok := rec.EfficiencyValue()
		if ok && (!found || eff > bestEff) {
			best, bestEff, found = rec, eff, true
		}
	}
	return best
}

func scope(records []dataset.Record, target dataset.Record) []dataset.Record {
	byCell := utf8.RuneCountInString(target.CellType) > 1
	out := make([]dataset.Record, 0, len(records))
	for _, rec := range records {
		if byCell && rec.CellType == target.CellType {
			out = append(out, rec)
		} else if !byCell && rec.MaterialClass == target.MaterialClass {
			out = append(out, rec)
		}
	}
	return out
}

func (r *Resolver) labName(group string) string {
	g := strings.TrimSpace(group)
	if g == "" || strings.EqualFold(g, "nan") {
		return r.unknownLab
	}
	return group
}
