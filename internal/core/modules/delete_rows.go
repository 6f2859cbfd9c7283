package modules

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/sheethooks/internal/core"
	"github.com/JonMunkholm/sheethooks/internal/grid"
	"github.com/JonMunkholm/sheethooks/internal/gsheets"
	"github.com/JonMunkholm/sheethooks/internal/logging"
)

func init() {
	core.Register(core.ModuleDefinition{
		Info: core.ModuleInfo{
			Key:            "delete_row_by_key_value",
			Label:          "Delete Rows",
			Description:    "Delete every row matching all key/value conditions",
			ContentObjects: []string{contentSheetNames, contentColumnNames, contentKeyColumns, contentKeyValues},
			Writes:         true,
		},
		Content: contentFor(contentSheetNames, contentColumnNames, contentKeyColumns, contentKeyValues),
		Execute: deleteRows,
	})
}

type deleteRowsInput struct {
	sheetTarget
	Conditions []keyCondition `json:"conditions"`
}

// DeleteRowsData is the data of a delete_row_by_key_value result.
type DeleteRowsData struct {
	SheetID     string `json:"sheet_id"`
	SheetName   string `json:"sheet_name"`
	RowsDeleted int    `json:"rows_deleted"`
	RowNumbers  []int  `json:"row_numbers"`
	Message     string `json:"message"`
}

func deleteRows(ctx context.Context, env core.Env, payload json.RawMessage) (*core.Result, error) {
	var in deleteRowsInput
	if err := core.DecodePayload(payload, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	conds, err := andConditions(in.Conditions)
	if err != nil {
		return nil, err
	}

	all, err := env.Sheets.Sheets(ctx, in.id())
	if err != nil {
		return nil, err
	}
	tab, err := gsheets.FindSheet(all, in.sheet())
	if err != nil {
		return nil, err
	}

	g, _, err := readSheet(ctx, env, in.sheetTarget, "")
	if err != nil {
		return nil, err
	}
	matches, err := grid.Match(g, conds, grid.ModeAll)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, core.NoMatch("No rows found matching all conditions.")
	}

	plan := grid.PlanDelete(matches)
	if err := env.Sheets.DeleteRows(ctx, in.id(), tab.SheetID, plan); err != nil {
		return nil, err
	}

	rows := make([]int, len(plan))
	for i, d := range plan {
		rows[i] = d.RowNumber
	}
	logging.FromContext(ctx).Info("rows deleted",
		"sheet", in.sheet(),
		"conditions", describe(conds),
		"rows", rows,
	)

	return &core.Result{
		Data: DeleteRowsData{
			SheetID:     in.id(),
			SheetName:   in.sheet(),
			RowsDeleted: len(plan),
			RowNumbers:  rows,
			Message:     fmt.Sprintf("Deleted %d row(s) matching all conditions.", len(plan)),
		},
		Metadata: core.Metadata{
			AffectedRecords: len(plan),
			Message:         fmt.Sprintf("Successfully deleted %d row(s) in sheet '%s' matching all conditions.", len(plan), in.sheet()),
		},
	}, nil
}
