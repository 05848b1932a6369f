package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileFormat represents the tabular file formats the loader understands
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatCSV                // Comma separated
	FormatTSV                // Tab separated
	FormatSheet              // Spreadsheet, recognized but not parsed
)

// ErrUnsupportedFormat is returned for files the loader cannot parse.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// FormatInfo contains metadata about a dataset file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	Delimiter   rune
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatCSV: {
		Format:      FormatCSV,
		Description: "Comma Separated Values",
		Extensions:  []string{".csv"},
		Delimiter:   ',',
	},
	FormatTSV: {
		Format:      FormatTSV,
		Description: "Tab Separated Values",
		Extensions:  []string{".tsv", ".tab"},
		Delimiter:   '\t',
	},
	FormatSheet: {
		Format:      FormatSheet,
		Description: "Spreadsheet",
		Extensions:  []string{".xlsx", ".xls"},
	},
}

// DetectFileFormat picks a format from the file extension.
func DetectFileFormat(filename string) FileFormat {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format
			}
		}
	}
	return FormatUnknown
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

// ValidateFile checks that filename exists, is a regular file and has a
// format the loader can parse.
func ValidateFile(filename string) (FormatInfo, error) {
	stat, err := os.Stat(filename)
	if err != nil {
		return FormatInfo{}, fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if stat.IsDir() {
		return FormatInfo{}, fmt.Errorf("%s is a directory", filename)
	}

	format := DetectFileFormat(filename)
	info, ok := GetFormatInfo(format)
	if !ok {
		return FormatInfo{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if info.Delimiter == 0 {
		return info, fmt.Errorf("%w: %s (export it as CSV)", ErrUnsupportedFormat, info.Description)
	}
	return info, nil
}
