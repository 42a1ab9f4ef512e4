// Package dataset provides the read-only tabular engine the analyst tools query.
// A Dataset is loaded once from a CSV file with a header row and never mutated.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrColumnNotFound is returned when a column name does not match exactly.
	ErrColumnNotFound = errors.New("column not found")

	// ErrNotNumeric is returned when a numeric operation targets a text column.
	ErrNotNumeric = errors.New("column is not numeric")

	// ErrEmpty is returned when a statistic is requested over no values.
	ErrEmpty = errors.New("no numeric values")
)

// Dataset is an immutable table of string cells addressed by column name.
type Dataset struct {
	name    string
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a Dataset from a header and rows. Short rows are padded with
// empty cells and long rows truncated so every row has len(columns) cells.
func New(name string, columns []string, rows [][]string) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, errors.New("dataset has no columns")
	}

	index := make(map[string]int, len(columns))
	cols := make([]string, len(columns))
	for i, c := range columns {
		c = strings.TrimSpace(c)
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		index[c] = i
		cols[i] = c
	}

	normalized := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, len(cols))
		copy(row, r)
		normalized[i] = row
	}

	return &Dataset{name: name, columns: cols, index: index, rows: normalized}, nil
}

// Load reads a CSV file with a header row. The delimiter is inferred from the
// file extension (.tsv is tab separated, everything else comma separated).
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = sniffDelimiter(path)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: missing header row", path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}

	return New(filepath.Base(path), header, rows)
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Name returns the base name of the source file.
func (d *Dataset) Name() string { return d.name }

// Columns returns the column names in file order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// Len returns the number of data rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Has reports whether the column exists (exact match).
func (d *Dataset) Has(column string) bool {
	_, ok := d.index[column]
	return ok
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.columns))
	copy(out, d.rows[i])
	return out
}

// Strings returns the raw cells of a column.
func (d *Dataset) Strings(column string) ([]string, error) {
	ci, ok := d.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	out := make([]string, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[ci]
	}
	return out, nil
}

// Floats returns a column parsed as numbers. Empty cells become NaN; any other
// unparsable cell makes the whole column non-numeric.
func (d *Dataset) Floats(column string) ([]float64, error) {
	cells, err := d.Strings(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, ok := ParseNumber(c)
		if !ok {
			if isMissing(c) {
				out[i] = math.NaN()
				continue
			}
			return nil, fmt.Errorf("%w: %q has value %q at row %d", ErrNotNumeric, column, c, i)
		}
		out[i] = v
	}
	return out, nil
}

// IsNumeric reports whether every non-missing cell of the column parses as a number.
func (d *Dataset) IsNumeric(column string) bool {
	_, err := d.Floats(column)
	return err == nil
}

// ParseNumber parses a cell as float64, tolerating surrounding spaces.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isMissing(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "n/a", "nan", "null":
		return true
	}
	return false
}
