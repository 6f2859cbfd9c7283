package modules

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/JonMunkholm/sheethooks/internal/core"
	"github.com/JonMunkholm/sheethooks/internal/grid"
	"github.com/JonMunkholm/sheethooks/internal/logging"
)

func init() {
	core.Register(core.ModuleDefinition{
		Info: core.ModuleInfo{
			Key:            "add_row_to_sheet",
			Label:          "Add Row",
			Description:    "Append a row of values to a sheet",
			ContentObjects: []string{contentSheetNames, contentColumnNames},
			Writes:         true,
		},
		Content: contentFor(contentSheetNames, contentColumnNames),
		Execute: addRow,
	})
}

// Placement values for add_row_to_sheet.
const (
	PlacementAppend = "append"
	PlacementTarget = "target"
)

// rowCell is one row_data entry: {"column_value": ...} or a bare string.
type rowCell struct {
	Value string
	Valid bool
}

func (c *rowCell) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		*c = rowCell{Value: v, Valid: true}
	case map[string]any:
		*c = rowCell{Value: cast.ToString(v["column_value"]), Valid: true}
	default:
		*c = rowCell{}
	}
	return nil
}

type addRowInput struct {
	sheetTarget
	RowData   []rowCell `json:"row_data"`
	TargetRow core.Ref  `json:"target_row"`
	Placement core.Ref  `json:"placement"`
}

func (in addRowInput) values() ([]string, error) {
	if len(in.RowData) == 0 {
		return nil, core.Missing("Row data")
	}
	values := make([]string, 0, len(in.RowData))
	for _, c := range in.RowData {
		if c.Valid {
			values = append(values, c.Value)
		}
	}
	if len(values) == 0 {
		return nil, core.Invalid("row data", "No valid row data provided")
	}
	return values, nil
}

// targetRow returns the requested row, or 0 when none was given.
func (in addRowInput) targetRow() (int, error) {
	if in.TargetRow.Empty() {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(in.TargetRow.String()))
	if err != nil || n < 1 {
		return 0, core.Invalid("target_row", "%q is not a positive row number", in.TargetRow.String())
	}
	return n, nil
}

func (in addRowInput) placement() (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(in.Placement.String())); p {
	case "", PlacementAppend:
		return PlacementAppend, nil
	case PlacementTarget:
		return p, nil
	default:
		return "", core.Invalid("placement", "%q is not %q or %q", in.Placement.String(), PlacementAppend, PlacementTarget)
	}
}

// AddRowData is the data of an add_row_to_sheet result. TargetRow echoes
// the request; Row is where the values landed when known.
type AddRowData struct {
	SheetID      string   `json:"sheet_id"`
	SheetName    string   `json:"sheet_name"`
	Placement    string   `json:"placement"`
	TargetRow    any      `json:"target_row"`
	Row          int      `json:"row,omitempty"`
	UpdatedRange string   `json:"updated_range"`
	RowValues    []string `json:"row_values"`
	ColumnsAdded int      `json:"columns_added"`
	Message      string   `json:"message"`
}

func addRow(ctx context.Context, env core.Env, payload json.RawMessage) (*core.Result, error) {
	var in addRowInput
	if err := core.DecodePayload(payload, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	values, err := in.values()
	if err != nil {
		return nil, err
	}
	placement, err := in.placement()
	if err != nil {
		return nil, err
	}
	target, err := in.targetRow()
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx)
	data := AddRowData{
		SheetID:   in.id(),
		SheetName: in.sheet(),
		Placement: placement,
		RowValues: values,
	}
	if target > 0 {
		data.TargetRow = target
	}

	switch placement {
	case PlacementAppend:
		if target > 0 {
			log.Warn("target_row ignored for append placement", "target_row", target)
		}
		res, err := env.Sheets.Append(ctx, in.id(), in.sheet(), values)
		if err != nil {
			return nil, err
		}
		data.UpdatedRange = res.UpdatedRange
		data.ColumnsAdded = int(res.UpdatedCells)

	case PlacementTarget:
		row := target
		if row == 0 {
			row = nextEmptyRow(ctx, env, in.sheetTarget)
		}
		res, err := env.Sheets.WriteRow(ctx, in.id(), grid.A1(in.sheet(), grid.CellRef(0, row)), values)
		if err != nil {
			return nil, err
		}
		data.Row = row
		data.UpdatedRange = res.UpdatedRange
		data.ColumnsAdded = int(res.UpdatedCells)
	}

	if data.ColumnsAdded == 0 {
		data.ColumnsAdded = len(values)
	}
	data.Message = fmt.Sprintf("Successfully added row at %s (%d cells updated)", data.UpdatedRange, data.ColumnsAdded)
	log.Info("row added", "sheet", in.sheet(), "placement", placement, "range", data.UpdatedRange)

	return &core.Result{
		Data: data,
		Metadata: core.Metadata{
			AffectedRecords: 1,
			Message:         fmt.Sprintf("Successfully added row to sheet '%s' with %d columns", in.sheet(), len(values)),
		},
	}, nil
}

// nextEmptyRow reads column A and returns the row after its last value.
// A failed read falls back to row 1.
func nextEmptyRow(ctx context.Context, env core.Env, t sheetTarget) int {
	col, err := env.Sheets.Values(ctx, t.id(), grid.A1(t.sheet(), "A:A"))
	if err != nil {
		logging.FromContext(ctx).Warn("could not read column A, writing at row 1", "error", err)
		return 1
	}
	return grid.NextEmptyRow(col)
}
