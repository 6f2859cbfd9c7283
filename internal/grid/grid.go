package grid

import "github.com/spf13/cast"

// HeaderRow is the sheet row number of the header.
const HeaderRow = 1

// FirstDataRow is the sheet row number of the first data row.
const FirstDataRow = HeaderRow + 1

// Grid is an ordered set of rows of cell strings; row 0 is the header.
// Rows may be ragged: the remote API trims trailing empty cells.
type Grid [][]string

// FromValues converts the loosely typed values returned by the remote API
// into a Grid. Non-string cells are stringified; nil becomes "".
func FromValues(values [][]interface{}) Grid {
	g := make(Grid, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cast.ToString(v)
		}
		g[i] = cells
	}
	return g
}

// Header validates and returns the header row.
func (g Grid) Header() (Header, error) {
	if len(g) == 0 {
		return nil, ErrEmptySheet
	}
	return NewHeader(g[0])
}

// DataRows returns the number of rows below the header.
func (g Grid) DataRows() int {
	if len(g) <= 1 {
		return 0
	}
	return len(g) - 1
}

// Row returns the cells of the given sheet row number, or nil when the row
// is outside the grid.
func (g Grid) Row(rowNumber int) []string {
	i := rowNumber - HeaderRow
	if i < 0 || i >= len(g) {
		return nil
	}
	return g[i]
}

// cell returns the value at column idx, treating missing cells as "".
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Header is a validated header row: non-empty and without duplicate names.
type Header []string

// NewHeader validates cells as a header row.
func NewHeader(cells []string) (Header, error) {
	if len(cells) == 0 {
		return nil, ErrEmptyHeader
	}
	seen := make(map[string]struct{}, len(cells))
	for _, name := range cells {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			return nil, &DuplicateColumnError{Column: name, Where: "the header row"}
		}
		seen[name] = struct{}{}
	}
	return Header(cells), nil
}

// Resolve returns the position of name in the header. The match is exact
// and case-sensitive.
func (h Header) Resolve(name string) (int, error) {
	for i, col := range h {
		if col == name {
			return i, nil
		}
	}
	return -1, &ColumnNotFoundError{Column: name, Header: []string(h)}
}

// Has reports whether name is a header column.
func (h Header) Has(name string) bool {
	_, err := h.Resolve(name)
	return err == nil
}
