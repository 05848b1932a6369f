package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Column headers of the NREL efficiency export.
const (
	ColCellType      = "Eff. Chart Cell Type"
	ColMaterialClass = "Eff. Chart Material Class"
	ColDescription   = "Detailed description"
	ColGroup         = "Group(s)"
	ColEfficiency    = "Combined efficiency (%)"
	ColDate          = "Measurement Date"
)

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("dataset has no header row")

// naTokens are cell values that mean "missing" in the exported sheets.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
}

// columns maps the known headers to their positions, -1 when absent.
type columns struct {
	cellType, materialClass, description, group, efficiency, date int
}

func locateColumns(header []string) columns {
	cols := columns{-1, -1, -1, -1, -1, -1}
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case ColCellType:
			cols.cellType = i
		case ColMaterialClass:
			cols.materialClass = i
		case ColDescription:
			cols.description = i
		case ColGroup:
			cols.group = i
		case ColEfficiency:
			cols.efficiency = i
		case ColDate:
			cols.date = i
		}
	}
	return cols
}

// LoadFile loads records from a CSV or TSV file.
func LoadFile(path string) ([]Record, error) {
	info, err := ValidateFile(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer file.Close()

	records, err := Load(bufio.NewReader(file), info.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}
	log.Debugf("Loaded %d records from %s", len(records), path)
	return records, nil
}

// Load parses delimited text with a header row into records. Text cells that
// hold a missing-value marker become empty strings; efficiency and date cells
// that do not parse become absent.
func Load(r io.Reader, delimiter rune) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols := locateColumns(header)
	if cols.cellType < 0 {
		log.Warnf("Column %q not found, every record will have an empty cell type", ColCellType)
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		records = append(records, Record{
			CellType:        textCell(row, cols.cellType),
			MaterialClass:   textCell(row, cols.materialClass),
			Description:     textCell(row, cols.description),
			Group:           textCell(row, cols.group),
			Efficiency:      parseEfficiency(cell(row, cols.efficiency)),
			MeasurementDate: parseDate(cell(row, cols.date)),
		})
	}
	return records, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func textCell(row []string, i int) string {
	v := cell(row, i)
	if _, na := naTokens[strings.TrimSpace(v)]; na {
		return ""
	}
	return v
}

func parseEfficiency(raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	return &v
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if _, na := naTokens[raw]; na {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
