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
			Key:            "filter_google_sheets_data",
			Label:          "Filter Rows",
			Description:    "Return the rows containing a value and/or satisfying a comparison",
			ContentObjects: []string{contentSheetNames, contentColumnNames},
		},
		Content: contentFor(contentSheetNames, contentColumnNames),
		Execute: filterRows,
	})
}

type filterCondition struct {
	Column   core.Ref `json:"column"`
	Operator core.Ref `json:"operator"`
	Value    core.Ref `json:"value"`
}

type filterRowsInput struct {
	sheetTarget
	FilterValue core.Ref         `json:"filter_value"`
	Condition   *filterCondition `json:"condition"`
}

// FilterRowsData is the data of a filter_google_sheets_data result.
type FilterRowsData struct {
	SheetID            string        `json:"sheet_id"`
	SheetName          string        `json:"sheet_name"`
	FilterValue        string        `json:"filter_value,omitempty"`
	Condition          string        `json:"condition,omitempty"`
	TotalAvailableRows int           `json:"total_available_rows"`
	FilteredRows       int           `json:"filtered_rows"`
	Headers            []string      `json:"headers"`
	Data               []grid.Record `json:"data"`
	TotalRecords       int           `json:"total_records"`
	TotalFields        int           `json:"total_fields"`
}

func (in filterRowsInput) hasCondition() bool {
	return in.Condition != nil && !in.Condition.Column.Empty()
}

func filterRows(ctx context.Context, env core.Env, payload json.RawMessage) (*core.Result, error) {
	var in filterRowsInput
	if err := core.DecodePayload(payload, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.FilterValue.Empty() && !in.hasCondition() {
		return nil, core.Missing("Filter value or condition")
	}

	g, header, err := readSheet(ctx, env, in.sheetTarget, env.ReadRange)
	if err != nil {
		return nil, err
	}

	var (
		matches []int
		desc    string
	)
	if !in.FilterValue.Empty() {
		if matches, err = grid.MatchContains(g, in.FilterValue.String()); err != nil {
			return nil, err
		}
	}
	if in.hasCondition() {
		cond := grid.Condition{
			Column:   in.Condition.Column.String(),
			Operator: grid.Operator(in.Condition.Operator.String()),
			Value:    in.Condition.Value.String(),
		}
		byOp, err := grid.Match(g, []grid.Condition{cond}, grid.ModeOperator)
		if err != nil {
			return nil, err
		}
		if op, perr := grid.ParseOperator(string(cond.Operator)); perr == nil {
			cond.Operator = op
		}
		desc = describe([]grid.Condition{cond})
		if matches == nil {
			matches = byOp
		} else {
			matches = grid.Intersect(matches, byOp)
		}
	}

	records := g.Records(header, matches)
	logging.FromContext(ctx).Info("rows filtered",
		"sheet", in.sheet(),
		"available", g.DataRows(),
		"matched", len(records),
	)

	msg := fmt.Sprintf("Successfully filtered %d records from sheet '%s'", len(records), in.sheet())
	if !in.FilterValue.Empty() {
		msg += fmt.Sprintf(" containing '%s'", in.FilterValue.String())
	}
	if desc != "" {
		if !in.FilterValue.Empty() {
			msg += " and"
		}
		msg += fmt.Sprintf(" where %s", desc)
	}

	return &core.Result{
		Data: FilterRowsData{
			SheetID:            in.id(),
			SheetName:          in.sheet(),
			FilterValue:        in.FilterValue.String(),
			Condition:          desc,
			TotalAvailableRows: g.DataRows(),
			FilteredRows:       len(records),
			Headers:            header,
			Data:               records,
			TotalRecords:       len(records),
			TotalFields:        len(header),
		},
		Metadata: core.Metadata{
			AffectedRecords: len(records),
			Message:         msg,
		},
	}, nil
}
