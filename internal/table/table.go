// Package table holds the in-memory dataset processed by the batch and its
// spreadsheet representation on disk.
package table

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/UnknownOlympus/geosheet/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Names of the columns appended to the dataset.
const (
	LatitudeColumn  = "LATITUDE"
	LongitudeColumn = "LONGITUDE"
)

// ErrColumnNotFound is wrapped by SchemaError.
var ErrColumnNotFound = errors.New("column not found")

// SchemaError reports a required column missing from the dataset.
type SchemaError struct {
	Column    string   // Column is the configured column name.
	Available []string // Available lists the columns present in the header.
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("column %q not found, available columns: [%s]", e.Column, strings.Join(e.Available, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrColumnNotFound }

// Status is the processing state of a row.
type Status int

const (
	StatusUnprocessed Status = iota
	StatusSkipped
	StatusFound
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	default:
		return "unprocessed"
	}
}

// Row is one record of the dataset.
type Row struct {
	Values     []string          // Values are the original cells, aligned with Table.Columns.
	Status     Status            // Status is the row's terminal state once processed.
	Resolution models.Resolution // Resolution is set together with a Found or NotFound status.
}

// Value returns the cell at col, or an empty string for short rows.
func (r *Row) Value(col int) string {
	if col < 0 || col >= len(r.Values) {
		return ""
	}

	return r.Values[col]
}

// Table is a header plus rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// New builds a table from a header and raw row values. Rows are copied.
// Non-blank cells to the right of the last header cell get unnamed columns,
// so that columns appended later never land on existing data.
func New(columns []string, values [][]string) *Table {
	width := len(columns)
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{Values: slices.Clone(v)}
		width = max(width, usedWidth(v))
	}

	header := make([]string, width)
	copy(header, columns)

	return &Table{Columns: header, Rows: rows}
}

// ColumnIndex finds name in the header. An exact match after Unicode NFC
// normalization and trimming wins; otherwise a single case and accent
// insensitive match is accepted. It returns a *SchemaError when neither exists.
func (t *Table) ColumnIndex(name string) (int, error) {
	want := normalize(name)
	for i, col := range t.Columns {
		if normalize(col) == want {
			return i, nil
		}
	}

	folded := fold(name)
	match := -1
	for i, col := range t.Columns {
		if fold(col) != folded {
			continue
		}
		if match >= 0 {
			match = -1
			break
		}
		match = i
	}
	if match >= 0 {
		return match, nil
	}

	return -1, &SchemaError{Column: name, Available: append([]string(nil), t.Columns...)}
}

// EnsureColumn returns the index of name, appending it to the header when absent.
func (t *Table) EnsureColumn(name string) int {
	want := normalize(name)
	for i, col := range t.Columns {
		if normalize(col) == want {
			return i
		}
	}
	t.Columns = append(t.Columns, name)

	return len(t.Columns) - 1
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// fold removes accents and lowercases, so "Endereço" and "ENDERECO" compare equal.
func fold(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.ToLower(strings.TrimSpace(s)),
	)

	return s
}

// usedWidth is the number of cells up to the last non-blank one.
func usedWidth(values []string) int {
	for i := len(values) - 1; i >= 0; i-- {
		if strings.TrimSpace(values[i]) != "" {
			return i + 1
		}
	}

	return 0
}
