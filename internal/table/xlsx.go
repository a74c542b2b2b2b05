package table

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tealeg/xlsx/v2"
)

// Extension is the spreadsheet file extension handled by the workbook adapter.
const Extension = ".xlsx"

// ErrFileNotFound is returned by Open when the input path does not exist.
var ErrFileNotFound = errors.New("input file not found")

// Workbook is an xlsx file whose first sheet is exposed as a Table.
// Saving writes the table's coordinate columns back into that sheet and keeps
// everything else in the workbook untouched.
type Workbook struct {
	file  *xlsx.File
	sheet *xlsx.Sheet
	Table *Table
}

// Open reads the first sheet of the workbook at path. The first row is the header.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat input file: %w", err)
	}

	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	sheet := file.Sheets[0]

	tbl := &Table{}
	if len(sheet.Rows) > 0 {
		values := make([][]string, 0, len(sheet.Rows)-1)
		for _, row := range sheet.Rows[1:] {
			values = append(values, rowToStrings(row))
		}
		// Sheets often carry formatted but empty rows below the data.
		for len(values) > 0 && isBlank(values[len(values)-1]) {
			values = values[:len(values)-1]
		}
		tbl = New(rowToStrings(sheet.Rows[0]), values)
	}

	return &Workbook{file: file, sheet: sheet, Table: tbl}, nil
}

// Save writes the coordinate columns into the sheet and stores the workbook at path.
// Found rows get numeric cells; every other row gets empty ones.
func (w *Workbook) Save(path string) error {
	latCol := w.Table.EnsureColumn(LatitudeColumn)
	lngCol := w.Table.EnsureColumn(LongitudeColumn)
	width := len(w.Table.Columns)

	if len(w.sheet.Rows) == 0 {
		w.sheet.AddRow()
	}
	header := padRow(w.sheet.Rows[0], width)
	for i, name := range w.Table.Columns {
		if header.Cells[i].String() != name {
			header.Cells[i].SetString(name)
		}
	}

	for i, row := range w.Table.Rows {
		sheetIdx := i + 1
		for sheetIdx >= len(w.sheet.Rows) {
			w.sheet.AddRow()
		}
		sheetRow := padRow(w.sheet.Rows[sheetIdx], width)

		if coords := row.Resolution.Coordinates; row.Status == StatusFound && coords != nil {
			sheetRow.Cells[latCol].SetFloat(coords.Latitude)
			sheetRow.Cells[lngCol].SetFloat(coords.Longitude)
			continue
		}
		sheetRow.Cells[latCol].SetString("")
		sheetRow.Cells[lngCol].SetString("")
	}

	if err := w.file.Save(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

// OutputPath derives the output file name by inserting suffix before the extension.
func OutputPath(input, suffix string) string {
	ext := filepath.Ext(input)
	if ext == "" {
		return input + suffix + Extension
	}

	return strings.TrimSuffix(input, ext) + suffix + ext
}

// Candidates lists the spreadsheet files in dir, sorted by name.
func Candidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), Extension) {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	return names, nil
}

func padRow(row *xlsx.Row, width int) *xlsx.Row {
	for len(row.Cells) < width {
		row.AddCell()
	}

	return row
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}

	return cells
}

func isBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}

	return true
}
