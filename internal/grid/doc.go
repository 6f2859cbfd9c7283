// Package grid implements row matching and mutation planning over a
// rectangular snapshot of spreadsheet values.
//
// A Grid is fetched fresh for every request. Row 0 is the header. Rows are
// addressed externally by their sheet row number: the header is row 1 and
// the first data row is row 2.
//
// The package has no I/O. Callers read a Grid from the remote API, ask the
// package which rows match, and translate the returned plans (RowDeletion,
// CellWrite) into API calls:
//
//	header, err := g.Header()
//	rows, err := grid.Match(g, conds, grid.ModeAll)
//	deletions := grid.PlanDelete(rows)
//
// Deletions are always planned highest row first. The remote API shifts
// later rows up after every deletion, so any other order removes the wrong
// rows.
package grid
