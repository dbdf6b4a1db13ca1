// Package dataset models the survey table: ordered columns, one key
// column promoted out of the data, and cells with explicit missingness.
// Qualtrics exports carry two metadata rows that are not data; Read
// skips them by physical position so the rest of the program never sees
// them.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Cell is one table cell. Present is false when the source cell was
// empty, which is how a missing answer reaches the remap rules.
type Cell struct {
	Value   string
	Present bool
}

// Present wraps a non-missing cell value.
func Present(value string) Cell { return Cell{Value: value, Present: true} }

// Row is one record keyed by the promoted key column.
type Row struct {
	Key   string
	Cells map[string]Cell
}

// Get returns the named cell; a column absent from the row reads as missing.
func (r Row) Get(column string) Cell { return r.Cells[column] }

// Table is an in-memory tabular dataset. Columns excludes the key
// column and fixes the serialization order.
type Table struct {
	Key     string
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given key column name and
// ordered non-key columns.
func New(key string, columns []string) *Table {
	return &Table{Key: key, Columns: columns}
}

// Append adds a row to the table.
func (t *Table) Append(r Row) { t.Rows = append(t.Rows, r) }

// ReadOptions controls CSV parsing.
type ReadOptions struct {
	// SkipRows lists 1-based physical row numbers to discard before
	// any interpretation (Qualtrics metadata rows 1 and 3).
	SkipRows []int
	// KeyColumn names the header column promoted to the row key.
	KeyColumn string
}

// Read parses a delimited table. The first non-skipped row is the
// header; every later non-skipped row is data. Empty cells become
// missing cells.
func Read(r io.Reader, opts ReadOptions) (*Table, error) {
	skip := make(map[int]bool, len(opts.SkipRows))
	for _, n := range opts.SkipRows {
		skip[n] = true
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // metadata rows may be ragged

	var (
		table    *Table
		header   []string
		keyIndex = -1
		physical = 0
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		physical++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", physical, err)
		}
		if skip[physical] {
			continue
		}

		if header == nil {
			header = record
			for i, name := range header {
				if name == opts.KeyColumn {
					keyIndex = i
					break
				}
			}
			if keyIndex < 0 {
				return nil, fmt.Errorf("key column %q not found in header", opts.KeyColumn)
			}
			columns := make([]string, 0, len(header)-1)
			for i, name := range header {
				if i != keyIndex {
					columns = append(columns, name)
				}
			}
			table = New(opts.KeyColumn, columns)
			continue
		}

		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", physical, len(record), len(header))
		}
		row := Row{Cells: make(map[string]Cell, len(header)-1)}
		for i, name := range header {
			if i == keyIndex {
				row.Key = record[i]
				continue
			}
			if record[i] != "" {
				row.Cells[name] = Present(record[i])
			}
		}
		table.Append(row)
	}

	if table == nil {
		return nil, fmt.Errorf("no header row after skipping metadata")
	}
	return table, nil
}

// ReadFile reads a table from a file path.
func ReadFile(path string, opts ReadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}

// Write serializes the table: key column first, then Columns in order.
// Missing cells serialize as empty fields.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{t.Key}, t.Columns...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(t.Columns)+1)
	for _, row := range t.Rows {
		record[0] = row.Key
		for i, name := range t.Columns {
			record[i+1] = row.Cells[name].Value
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %q: %w", row.Key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path atomically: the CSV is built in a
// temp file in the same directory and renamed into place, so a failed
// run never leaves a partial file that a later run would mistake for a
// completed one.
func (t *Table) WriteFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := t.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
