// Package coretest provides an in-memory Spreadsheets implementation for
// module and handler tests.
package coretest

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/JonMunkholm/sheethooks/internal/grid"
	"github.com/JonMunkholm/sheethooks/internal/gsheets"
)

// Sheet is one tab of a fake spreadsheet.
type Sheet struct {
	ID    int64
	Title string
	Grid  grid.Grid
}

// Call records one method invocation.
type Call struct {
	Method string
	Range  string
	Row    []string
	Writes []grid.CellWrite
	Plan   []grid.RowDeletion
}

// Sheets is an in-memory spreadsheet keyed by spreadsheet id. Mutations
// apply to the stored grids so tests can assert on the final state.
type Sheets struct {
	mu     sync.Mutex
	books  map[string][]*Sheet
	nextID int64
	calls  []Call

	// Err, when set for a method name, is returned by that method.
	Err map[string]error
}

// New returns an empty fake.
func New() *Sheets {
	return &Sheets{books: map[string][]*Sheet{}, nextID: 1000, Err: map[string]error{}}
}

// Seed adds a tab with the given rows. rows[0] is the header.
func (f *Sheets) Seed(spreadsheetID, title string, id int64, rows ...[]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(grid.Grid, len(rows))
	for i, r := range rows {
		g[i] = append([]string(nil), r...)
	}
	f.books[spreadsheetID] = append(f.books[spreadsheetID], &Sheet{ID: id, Title: title, Grid: g})
}

// Grid returns a copy of a tab's current contents.
func (f *Sheets) Grid(spreadsheetID, title string) grid.Grid {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.find(spreadsheetID, title)
	if s == nil {
		return nil
	}
	out := make(grid.Grid, len(s.Grid))
	for i, r := range s.Grid {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Calls returns the recorded invocations.
func (f *Sheets) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// LastCall returns the most recent invocation of method.
func (f *Sheets) LastCall(method string) (Call, bool) {
	calls := f.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method {
			return calls[i], true
		}
	}
	return Call{}, false
}

func (f *Sheets) record(c Call) error {
	f.calls = append(f.calls, c)
	return f.Err[c.Method]
}

// find returns the tab with title. An empty title is the first tab, the
// way the API resolves a bare cell reference.
func (f *Sheets) find(spreadsheetID, title string) *Sheet {
	if title == "" {
		if b := f.books[spreadsheetID]; len(b) > 0 {
			return b[0]
		}
		return nil
	}
	for _, s := range f.books[spreadsheetID] {
		if s.Title == title {
			return s
		}
	}
	return nil
}

func (f *Sheets) book(spreadsheetID string) ([]*Sheet, error) {
	b, ok := f.books[spreadsheetID]
	if !ok {
		return nil, &gsheets.APIError{Op: "Failed to fetch spreadsheet metadata", Status: 404, Message: "Requested entity was not found."}
	}
	return b, nil
}

func (f *Sheets) Sheets(ctx context.Context, spreadsheetID string) ([]gsheets.SheetInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Method: "Sheets"}); err != nil {
		return nil, err
	}
	b, err := f.book(spreadsheetID)
	if err != nil {
		return nil, err
	}
	out := make([]gsheets.SheetInfo, len(b))
	for i, s := range b {
		out[i] = gsheets.SheetInfo{SheetID: s.ID, Title: s.Title, Index: int64(i)}
	}
	return out, nil
}

// splitTitle separates the sheet title from the cell reference. Quoted
// titles may contain "!" and doubled quotes. An unquoted range without "!"
// that reads as a cell reference, such as "Q1", addresses the first tab.
func splitTitle(rng string) (title, ref string) {
	if !strings.HasPrefix(rng, "'") {
		head, tail, found := strings.Cut(rng, "!")
		if !found && cellPattern.MatchString(head) {
			return "", head
		}
		return head, tail
	}
	var b strings.Builder
	for i := 1; i < len(rng); i++ {
		if rng[i] != '\'' {
			b.WriteByte(rng[i])
			continue
		}
		if i+1 < len(rng) && rng[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		_, ref, _ = strings.Cut(rng[i+1:], "!")
		return b.String(), ref
	}
	return b.String(), ""
}

var (
	a1Pattern   = regexp.MustCompile(`^([A-Z]*)(\d*)(?::([A-Z]*)(\d*))?$`)
	cellPattern = regexp.MustCompile(`^[A-Z]+\d+$`)
)

// parseRange splits "Title!A1:B2" and returns the sheet and the 0-based
// row bounds and inclusive column bounds. Missing bounds are open.
func parseRange(rng string) (title string, r0, r1, c0, c1 int, err error) {
	title, ref := splitTitle(rng)
	r0, r1, c0, c1 = 0, -1, 0, -1
	if ref == "" {
		return title, r0, r1, c0, c1, nil
	}
	m := a1Pattern.FindStringSubmatch(ref)
	if m == nil {
		return "", 0, 0, 0, 0, fmt.Errorf("unable to parse range: %s", rng)
	}
	if m[1] != "" {
		c0 = colIndex(m[1])
	}
	if m[2] != "" {
		n, _ := strconv.Atoi(m[2])
		r0 = n - 1
	}
	hasEnd := strings.Contains(ref, ":")
	switch {
	case hasEnd && m[3] != "":
		c1 = colIndex(m[3])
	case !hasEnd && m[1] != "":
		c1 = c0
	}
	switch {
	case hasEnd && m[4] != "":
		n, _ := strconv.Atoi(m[4])
		r1 = n - 1
	case !hasEnd && m[2] != "":
		r1 = r0
	}
	return title, r0, r1, c0, c1, nil
}

func colIndex(letters string) int {
	n := 0
	for _, ch := range letters {
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1
}

func (f *Sheets) Values(ctx context.Context, spreadsheetID, rng string) (grid.Grid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Method: "Values", Range: rng}); err != nil {
		return nil, err
	}
	if _, err := f.book(spreadsheetID); err != nil {
		return nil, err
	}
	title, r0, r1, c0, c1, err := parseRange(rng)
	if err != nil {
		return nil, &gsheets.APIError{Op: "Failed to read sheet data", Status: 400, Message: err.Error()}
	}
	s := f.find(spreadsheetID, title)
	if s == nil {
		return nil, &gsheets.APIError{Op: "Failed to read sheet data", Status: 400, Message: "Unable to parse range: " + rng}
	}

	out := grid.Grid{}
	for i, row := range s.Grid {
		if i < r0 || (r1 >= 0 && i > r1) {
			continue
		}
		var cells []string
		for j, v := range row {
			if j < c0 || (c1 >= 0 && j > c1) {
				continue
			}
			cells = append(cells, v)
		}
		out = append(out, trimRight(cells))
	}
	// The API omits trailing empty rows.
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func trimRight(cells []string) []string {
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	if cells == nil {
		return []string{}
	}
	return cells
}

func (f *Sheets) Append(ctx context.Context, spreadsheetID, sheet string, row []string) (gsheets.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Method: "Append", Range: sheet, Row: row}); err != nil {
		return gsheets.WriteResult{}, err
	}
	s := f.find(spreadsheetID, sheet)
	if s == nil {
		return gsheets.WriteResult{}, &gsheets.APIError{Op: "Failed to add row", Status: 400, Message: "Unable to parse range: " + sheet}
	}
	s.Grid = append(s.Grid, append([]string(nil), row...))
	n := len(s.Grid)
	return gsheets.WriteResult{
		UpdatedRange: fmt.Sprintf("%s!A%d:%s%d", sheet, n, grid.ColumnLetter(len(row)-1), n),
		UpdatedRows:  1,
		UpdatedCells: int64(len(row)),
	}, nil
}

func (f *Sheets) WriteRow(ctx context.Context, spreadsheetID, rng string, row []string) (gsheets.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Method: "WriteRow", Range: rng, Row: row}); err != nil {
		return gsheets.WriteResult{}, err
	}
	title, r0, _, c0, _, err := parseRange(rng)
	if err != nil {
		return gsheets.WriteResult{}, &gsheets.APIError{Op: "Failed to write row", Status: 400, Message: err.Error()}
	}
	s := f.find(spreadsheetID, title)
	if s == nil {
		return gsheets.WriteResult{}, &gsheets.APIError{Op: "Failed to write row", Status: 400, Message: "Unable to parse range: " + rng}
	}
	for j, v := range row {
		s.set(r0, c0+j, v)
	}
	return gsheets.WriteResult{
		UpdatedRange: fmt.Sprintf("%s!%s%d:%s%d", title, grid.ColumnLetter(c0), r0+1, grid.ColumnLetter(c0+len(row)-1), r0+1),
		UpdatedRows:  1,
		UpdatedCells: int64(len(row)),
	}, nil
}

func (s *Sheet) set(r, c int, v string) {
	for len(s.Grid) <= r {
		s.Grid = append(s.Grid, []string{})
	}
	for len(s.Grid[r]) <= c {
		s.Grid[r] = append(s.Grid[r], "")
	}
	s.Grid[r][c] = v
}

func (f *Sheets) BatchWrite(ctx context.Context, spreadsheetID, sheet string, writes []grid.CellWrite) (gsheets.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Method: "BatchWrite", Range: sheet, Writes: writes}); err != nil {
		return gsheets.WriteResult{}, err
	}
	s := f.find(spreadsheetID, sheet)
	if s == nil {
		return gsheets.WriteResult{}, &gsheets.APIError{Op: "Failed to update rows", Status: 400, Message: "Unable to parse range: " + sheet}
	}
	rows := map[int]bool{}
	for _, w := range writes {
		s.set(w.Row-1, w.Column, w.Value)
		rows[w.Row] = true
	}
	return gsheets.WriteResult{UpdatedRows: int64(len(rows)), UpdatedCells: int64(len(writes))}, nil
}

func (f *Sheets) DeleteRows(ctx context.Context, spreadsheetID string, sheetID int64, plan []grid.RowDeletion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Method: "DeleteRows", Range: strconv.FormatInt(sheetID, 10), Plan: plan}); err != nil {
		return err
	}
	var s *Sheet
	for _, cand := range f.books[spreadsheetID] {
		if cand.ID == sheetID {
			s = cand
		}
	}
	if s == nil {
		return &gsheets.APIError{Op: "Failed to delete rows", Status: 400, Message: fmt.Sprintf("No grid with id: %d", sheetID)}
	}
	// Applied one at a time, shifting later rows up like the real API.
	for _, d := range plan {
		if int(d.StartIndex) < len(s.Grid) {
			s.Grid = append(s.Grid[:d.StartIndex], s.Grid[d.EndIndex:]...)
		}
	}
	return nil
}

func (f *Sheets) AddSheet(ctx context.Context, spreadsheetID, title string) (gsheets.SheetInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Method: "AddSheet", Range: title}); err != nil {
		return gsheets.SheetInfo{}, err
	}
	if f.find(spreadsheetID, title) != nil {
		return gsheets.SheetInfo{}, &gsheets.APIError{
			Op: "Failed to create tab", Status: 400,
			Message: fmt.Sprintf("Invalid requests[0].addSheet: A sheet with the name %q already exists. Please enter another name.", title),
		}
	}
	f.nextID++
	s := &Sheet{ID: f.nextID, Title: title}
	f.books[spreadsheetID] = append(f.books[spreadsheetID], s)
	return gsheets.SheetInfo{SheetID: s.ID, Title: title, Index: int64(len(f.books[spreadsheetID]) - 1)}, nil
}
