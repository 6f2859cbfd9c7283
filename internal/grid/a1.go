package grid

import (
	"strconv"
	"strings"
)

// ColumnLetter converts a 0-based column index to its A1 letters:
// 0 is A, 25 is Z, 26 is AA.
func ColumnLetter(idx int) string {
	if idx < 0 {
		return ""
	}
	var b []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// CellRef returns the A1 reference of a 0-based column and a sheet row
// number, e.g. CellRef(2, 7) == "C7".
func CellRef(col, row int) string {
	return ColumnLetter(col) + strconv.Itoa(row)
}

// A1 qualifies ref with a sheet title. The title is always quoted, with
// embedded quotes doubled, so titles such as "Q1" or "FY2024" are not read
// as cell references. An empty ref addresses the whole sheet.
func A1(sheet, ref string) string {
	title := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if ref == "" {
		return title
	}
	return title + "!" + ref
}
