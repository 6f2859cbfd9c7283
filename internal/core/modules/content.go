package modules

import (
	"context"
	"fmt"
	"strconv"

	"github.com/JonMunkholm/sheethooks/internal/core"
	"github.com/JonMunkholm/sheethooks/internal/grid"
	"github.com/JonMunkholm/sheethooks/internal/logging"
)

// Content object ids understood by the /content endpoints.
const (
	contentSheetNames    = "sheet_names"
	contentColumnNames   = "column_names"
	contentKeyColumns    = "key_columns"
	contentUpdateColumns = "update_columns"
	contentKeyValues     = "key_values"
	contentColumnValues  = "column_values"
	contentRowOptions    = "row_options"
	contentSheetRanges   = "sheet_ranges"
)

// provider returns the options of one dropdown. Missing form inputs yield
// no options and no error.
type provider func(ctx context.Context, env core.Env, form core.FormData) ([]core.Option, error)

var providers = map[string]provider{
	contentSheetNames:    sheetNameOptions,
	contentColumnNames:   headerOptions,
	contentKeyColumns:    headerOptions,
	contentUpdateColumns: headerOptions,
	contentKeyValues:     keyValueOptions,
	contentColumnValues:  keyValueOptions,
	contentRowOptions:    rowCountOptions,
	contentSheetRanges:   cellRangeOptions,
}

// contentFor serves the requested ids that are among ids, in request order.
// Unknown ids are skipped.
func contentFor(ids ...string) core.ContentFunc {
	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}

	return func(ctx context.Context, env core.Env, req core.ContentRequest) []core.ContentObject {
		out := []core.ContentObject{}
		for _, name := range req.ContentObjectNames {
			log := logging.WithFields(ctx, "content_object", name.ID)
			p, ok := providers[name.ID]
			if !ok || !allowed[name.ID] {
				log.Debug("content object not served")
				continue
			}

			opts, err := p(ctx, env, req.FormData)
			if err != nil {
				log.Warn("content provider failed",
					"kind", core.KindOf(err),
					"error", err,
				)
				opts = nil
			}
			if opts == nil {
				opts = []core.Option{}
			}
			out = append(out, core.ContentObject{Name: name.ID, Data: opts, ArrayIndex: name.ArrayIndex})
		}
		return out
	}
}

func sheetNameOptions(ctx context.Context, env core.Env, form core.FormData) ([]core.Option, error) {
	if form.SheetID.Empty() {
		return nil, nil
	}
	sheets, err := env.Sheets.Sheets(ctx, form.SheetID.String())
	if err != nil {
		return nil, err
	}
	opts := make([]core.Option, 0, len(sheets))
	for _, s := range sheets {
		if s.Title != "" {
			opts = append(opts, core.NamedOption(s.Title))
		}
	}
	return opts, nil
}

func headerOptions(ctx context.Context, env core.Env, form core.FormData) ([]core.Option, error) {
	if form.SheetID.Empty() || form.SheetName.Empty() {
		return nil, nil
	}
	g, err := env.Sheets.Values(ctx, form.SheetID.String(), grid.A1(form.SheetName.String(), "1:1"))
	if err != nil {
		return nil, err
	}
	if len(g) == 0 {
		return nil, nil
	}
	opts := make([]core.Option, 0, len(g[0]))
	for _, col := range g[0] {
		if col != "" {
			opts = append(opts, core.NamedOption(col))
		}
	}
	return opts, nil
}

// keyValueOptions lists the distinct non-empty values of form.KeyColumn in
// first-seen order.
func keyValueOptions(ctx context.Context, env core.Env, form core.FormData) ([]core.Option, error) {
	if form.SheetID.Empty() || form.SheetName.Empty() || form.KeyColumn.Empty() {
		return nil, nil
	}
	g, err := env.Sheets.Values(ctx, form.SheetID.String(), grid.A1(form.SheetName.String(), ""))
	if err != nil {
		return nil, err
	}
	if g.DataRows() == 0 {
		return nil, nil
	}
	header, err := g.Header()
	if err != nil {
		return nil, err
	}
	idx, err := header.Resolve(form.KeyColumn.String())
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	opts := []core.Option{}
	for _, row := range g[1:] {
		if idx >= len(row) || row[idx] == "" || seen[row[idx]] {
			continue
		}
		seen[row[idx]] = true
		opts = append(opts, core.NamedOption(row[idx]))
	}
	return opts, nil
}

var rowCountSteps = []int{5, 10, 25, 50, 100, 250, 500}

// rowCountOptions offers "all" and the first-N limits that make sense for
// the sheet's size.
func rowCountOptions(ctx context.Context, env core.Env, form core.FormData) ([]core.Option, error) {
	if form.SheetID.Empty() || form.SheetName.Empty() {
		return nil, nil
	}
	g, err := env.Sheets.Values(ctx, form.SheetID.String(), grid.A1(form.SheetName.String(), env.ReadRange))
	if err != nil {
		return nil, err
	}
	if len(g) == 0 {
		return nil, nil
	}
	return rowCountChoices(g.DataRows()), nil
}

func rowCountChoices(total int) []core.Option {
	opts := []core.Option{core.NewOption("all", fmt.Sprintf("All rows (%d rows)", total))}
	for _, n := range rowCountSteps {
		switch {
		case n < total:
			opts = append(opts, core.NewOption(strconv.Itoa(n), fmt.Sprintf("First %d rows", n)))
		case n == total:
			opts = append(opts, core.NewOption(strconv.Itoa(n), fmt.Sprintf("All %d rows", n)))
		}
	}
	if total > 500 {
		opts = append(opts, core.NewOption("1000", "First 1000 rows"))
	}
	return opts
}

const (
	rangeMaxRows  = 20
	rangeMaxCols  = 10
	rangeMaxCells = 50
)

// cellRangeOptions offers "all" plus individual cell references over the
// top-left corner of the data, and shortcuts to the far edges of large
// sheets.
func cellRangeOptions(ctx context.Context, env core.Env, form core.FormData) ([]core.Option, error) {
	if form.SheetID.Empty() || form.SheetName.Empty() {
		return nil, nil
	}
	g, err := env.Sheets.Values(ctx, form.SheetID.String(), grid.A1(form.SheetName.String(), env.ReadRange))
	if err != nil {
		return nil, err
	}
	if len(g) == 0 {
		return nil, nil
	}
	return cellRangeChoices(g), nil
}

func cellRangeChoices(g grid.Grid) []core.Option {
	rows := len(g)
	cols := 0
	for _, r := range g {
		cols = max(cols, len(r))
	}

	opts := []core.Option{core.NewOption("all", "All data")}
	cells := 0
	for r := 1; r <= min(rows, rangeMaxRows) && cells < rangeMaxCells; r++ {
		for c := 0; c < min(cols, rangeMaxCols) && cells < rangeMaxCells; c++ {
			letter := grid.ColumnLetter(c)
			ref := grid.CellRef(c, r)
			var label string
			switch r {
			case grid.HeaderRow:
				label = fmt.Sprintf("%s (Header row, Column %s)", ref, letter)
			case grid.FirstDataRow:
				label = fmt.Sprintf("%s (First data row, Column %s)", ref, letter)
			default:
				label = fmt.Sprintf("%s (Row %d, Column %s)", ref, r, letter)
			}
			opts = append(opts, core.NewOption(ref, label))
			cells++
		}
	}

	if cols > 0 && (rows > rangeMaxRows || cols > rangeMaxCols) {
		last := grid.ColumnLetter(cols - 1)
		opts = append(opts,
			core.NewOption(grid.CellRef(0, rows), fmt.Sprintf("A%d (Last row, Column A)", rows)),
			core.NewOption(last+"1", fmt.Sprintf("%s1 (Header row, Last column)", last)),
			core.NewOption(grid.CellRef(cols-1, rows), fmt.Sprintf("%s%d (Last cell with data)", last, rows)),
		)
	}
	return opts
}
