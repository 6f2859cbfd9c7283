package modules

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/sheethooks/internal/core"
	"github.com/JonMunkholm/sheethooks/internal/grid"
	"github.com/JonMunkholm/sheethooks/internal/logging"
)

func init() {
	core.Register(core.ModuleDefinition{
		Info: core.ModuleInfo{
			Key:            "update_row_key_value",
			Label:          "Update Rows",
			Description:    "Set column values on every row matching all key/value conditions",
			ContentObjects: []string{contentSheetNames, contentColumnNames, contentKeyColumns, contentKeyValues, contentColumnValues, contentUpdateColumns},
			Writes:         true,
		},
		Content: contentFor(contentSheetNames, contentColumnNames, contentKeyColumns, contentKeyValues, contentColumnValues, contentUpdateColumns),
		Execute: updateRows,
	})
}

type columnAssignment struct {
	ColumnName  core.Ref `json:"column_name"`
	ColumnValue core.Ref `json:"column_value"`
}

type updateRowsInput struct {
	sheetTarget
	KeyColumn  core.Ref           `json:"key_column"`
	KeyValue   core.Ref           `json:"key_value"`
	Conditions []keyCondition     `json:"conditions"`
	RowData    []columnAssignment `json:"row_data"`
}

// conditions merges the single key pair, when set, in front of the
// conditions list.
func (in updateRowsInput) conditions() ([]grid.Condition, error) {
	pairs := in.Conditions
	if !in.KeyColumn.Empty() {
		pairs = append([]keyCondition{{KeyColumn: in.KeyColumn, KeyValue: in.KeyValue}}, pairs...)
	}
	if len(pairs) == 0 {
		return nil, core.Missing("Key column and key value")
	}
	return andConditions(pairs)
}

func (in updateRowsInput) assignments() ([]grid.Assignment, error) {
	out := make([]grid.Assignment, 0, len(in.RowData))
	for _, a := range in.RowData {
		if a.ColumnName.Empty() {
			continue
		}
		out = append(out, grid.Assignment{Column: a.ColumnName.String(), Value: a.ColumnValue.String()})
	}
	if len(out) == 0 {
		return nil, core.Missing("Row data with at least one column name")
	}
	return out, nil
}

// UpdateRowsData is the data of an update_row_key_value result.
type UpdateRowsData struct {
	SheetID      string `json:"sheet_id"`
	SheetName    string `json:"sheet_name"`
	Conditions   string `json:"conditions"`
	RowsUpdated  int    `json:"rows_updated"`
	CellsUpdated int    `json:"cells_updated"`
	RowNumbers   []int  `json:"row_numbers"`
	Message      string `json:"message"`
}

func updateRows(ctx context.Context, env core.Env, payload json.RawMessage) (*core.Result, error) {
	var in updateRowsInput
	if err := core.DecodePayload(payload, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	conds, err := in.conditions()
	if err != nil {
		return nil, err
	}
	assignments, err := in.assignments()
	if err != nil {
		return nil, err
	}

	g, header, err := readSheet(ctx, env, in.sheetTarget, "")
	if err != nil {
		return nil, err
	}
	matches, err := grid.Match(g, conds, grid.ModeAll)
	if err != nil {
		return nil, err
	}
	desc := describe(conds)
	if len(matches) == 0 {
		return nil, core.NoMatch("No rows found where %s", desc)
	}

	writes, err := grid.PlanUpdate(header, matches, assignments)
	if err != nil {
		return nil, err
	}
	res, err := env.Sheets.BatchWrite(ctx, in.id(), in.sheet(), writes)
	if err != nil {
		return nil, err
	}
	cells := int(res.UpdatedCells)
	if cells == 0 {
		cells = len(writes)
	}

	logging.FromContext(ctx).Info("rows updated",
		"sheet", in.sheet(),
		"conditions", desc,
		"rows", len(matches),
		"cells", cells,
	)

	return &core.Result{
		Data: UpdateRowsData{
			SheetID:      in.id(),
			SheetName:    in.sheet(),
			Conditions:   desc,
			RowsUpdated:  len(matches),
			CellsUpdated: cells,
			RowNumbers:   matches,
			Message:      fmt.Sprintf("Updated %d row(s) and %d cell(s) where %s.", len(matches), cells, desc),
		},
		Metadata: core.Metadata{
			AffectedRecords: len(matches),
			Message:         fmt.Sprintf("Successfully updated %d row(s) in sheet '%s'", len(matches), in.sheet()),
		},
	}, nil
}
