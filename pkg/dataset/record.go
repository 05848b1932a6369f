/*
Package dataset holds the typed efficiency records and the immutable snapshots
every query runs against.

A Snapshot is built once from a slice of records and never changes afterwards.
The Store keeps a pointer to the current snapshot and swaps it atomically on
reload, so readers that already captured the old snapshot finish against it.

	snap := dataset.NewSnapshot(records)
	store := dataset.NewStore()
	store.Swap(snap)

	current := store.Current() // nil until the first Swap

Records come either from callers directly or from the CSV/TSV loader:

	records, err := dataset.LoadFile("nrel_data.csv")
*/
package dataset

import "time"

// Record is one measured cell efficiency row.
type Record struct {
	CellType        string
	MaterialClass   string
	Description     string
	Group           string
	Efficiency      *float64
	MeasurementDate *time.Time
}

// EfficiencyValue returns the efficiency and whether it is present.
func (r Record) EfficiencyValue() (float64, bool) {
	if r.Efficiency == nil {
		return 0, false
	}
	return *r.Efficiency, true
}

// Date returns the measurement date and whether it is present.
func (r Record) Date() (time.Time, bool) {
	if r.MeasurementDate == nil {
		return time.Time{}, false
	}
	return *r.MeasurementDate, true
}

// Eff is a helper for building records with a present efficiency.
func Eff(v float64) *float64 {
	return &v
}

// Day is a helper for building records with a present measurement date.
func Day(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
