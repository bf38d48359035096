// Package prices loads day-ahead price series from CSV files.
//
// Two layouts are accepted: a single price column, or any number of leading
// columns (typically a timestamp) with the price in the last one. A header
// row is detected and skipped. Blank or unparseable cells become NaN so the
// conditioner can decide how to treat them.
package prices

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrNoRows is returned when the input contains no price rows.
var ErrNoRows = errors.New("no price rows")

// Load reads a price series in $/MWh from the CSV file at path.
func Load(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prices: %w", err)
	}
	defer f.Close()
	series, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return series, nil
}

// Read parses a price series from CSV data.
func Read(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	start := 0
	if len(records) > 0 {
		cell := priceCell(records[0])
		if cell != "" {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				start = 1
			}
		}
	}

	out := make([]float64, 0, len(records)-start)
	for _, rec := range records[start:] {
		cell := priceCell(rec)
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			v = math.NaN()
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

// priceCell returns the trimmed last column of a record, where the price
// lives in both accepted layouts.
func priceCell(rec []string) string {
	if len(rec) == 0 {
		return ""
	}
	return strings.TrimSpace(rec[len(rec)-1])
}
