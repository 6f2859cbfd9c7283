package grid

import "sort"

// RowDeletion removes one sheet row. StartIndex and EndIndex form the
// half-open, 0-indexed dimension range the remote API expects.
type RowDeletion struct {
	RowNumber  int
	StartIndex int64
	EndIndex   int64
}

// PlanDelete returns one deletion per distinct matched row, highest row
// number first.
func PlanDelete(matches []int) []RowDeletion {
	rows := make([]int, 0, len(matches))
	seen := make(map[int]struct{}, len(matches))
	for _, r := range matches {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		rows = append(rows, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rows)))

	plan := make([]RowDeletion, len(rows))
	for i, r := range rows {
		plan[i] = RowDeletion{
			RowNumber:  r,
			StartIndex: int64(r - 1),
			EndIndex:   int64(r),
		}
	}
	return plan
}

// Assignment sets Column to Value on every matched row.
type Assignment struct {
	Column string
	Value  string
}

// CellWrite is a single-cell write. Cell is the A1 address without a sheet
// prefix, e.g. "C7".
type CellWrite struct {
	Cell   string
	Row    int
	Column int
	Value  string
}

// PlanUpdate returns one CellWrite per (matched row, assignment) pair,
// ordered by row then by assignment. Each assignment column is resolved
// once against header.
func PlanUpdate(header Header, matches []int, assignments []Assignment) ([]CellWrite, error) {
	cols := make([]int, len(assignments))
	seen := make(map[string]struct{}, len(assignments))
	for i, a := range assignments {
		if _, dup := seen[a.Column]; dup {
			return nil, &DuplicateColumnError{Column: a.Column, Where: "the update columns"}
		}
		seen[a.Column] = struct{}{}

		idx, err := header.Resolve(a.Column)
		if err != nil {
			return nil, err
		}
		cols[i] = idx
	}

	writes := make([]CellWrite, 0, len(matches)*len(assignments))
	for _, row := range matches {
		for i, a := range assignments {
			writes = append(writes, CellWrite{
				Cell:   CellRef(cols[i], row),
				Row:    row,
				Column: cols[i],
				Value:  a.Value,
			})
		}
	}
	return writes, nil
}

// NextEmptyRow returns the row after the last row that has a value in
// column A. columnA is the column read as returned by the remote API, which
// omits trailing empty rows. An empty sheet yields row 1.
func NextEmptyRow(columnA Grid) int {
	return len(columnA) + 1
}
