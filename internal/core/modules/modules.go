// Package modules registers the workflow modules served by the web layer.
// Each file registers one module in init; import the package for its side
// effects:
//
//	import _ "github.com/JonMunkholm/sheethooks/internal/core/modules"
package modules

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/sheethooks/internal/core"
	"github.com/JonMunkholm/sheethooks/internal/grid"
)

// sheetTarget is the spreadsheet and tab every sheet module addresses.
type sheetTarget struct {
	SheetID   core.Ref `json:"sheet_id"`
	SheetName core.Ref `json:"sheet_name"`
}

func (t sheetTarget) validate() error {
	if t.SheetID.Empty() {
		return core.Missing("Sheet ID")
	}
	if t.SheetName.Empty() {
		return core.Missing("Sheet name")
	}
	return nil
}

func (t sheetTarget) id() string    { return t.SheetID.String() }
func (t sheetTarget) sheet() string { return t.SheetName.String() }

// keyCondition is one {key_column, key_value} pair of an AND match.
type keyCondition struct {
	KeyColumn core.Ref `json:"key_column"`
	KeyValue  core.Ref `json:"key_value"`
}

// andConditions converts key pairs to equality conditions. A pair with
// an empty column is a MissingParameterError; an empty value is allowed
// and matches empty cells.
func andConditions(pairs []keyCondition) ([]grid.Condition, error) {
	if len(pairs) == 0 {
		return nil, core.Missing("At least one condition")
	}
	conds := make([]grid.Condition, len(pairs))
	for i, p := range pairs {
		if p.KeyColumn.Empty() {
			return nil, core.Missing(fmt.Sprintf("Key column of condition %d", i+1))
		}
		conds[i] = grid.Equals(p.KeyColumn.String(), p.KeyValue.String())
	}
	return conds, nil
}

// readSheet reads rng of the target tab and validates its header. An empty
// read is grid.ErrEmptySheet.
func readSheet(ctx context.Context, env core.Env, t sheetTarget, rng string) (grid.Grid, grid.Header, error) {
	g, err := env.Sheets.Values(ctx, t.id(), grid.A1(t.sheet(), rng))
	if err != nil {
		return nil, nil, err
	}
	header, err := g.Header()
	if err != nil {
		return nil, nil, err
	}
	return g, header, nil
}

// describe renders conditions for messages: "id == 1 AND name == a".
func describe(conds []grid.Condition) string {
	s := ""
	for i, c := range conds {
		if i > 0 {
			s += " AND "
		}
		op := c.Operator
		if op == "" {
			op = grid.OpEquals
		}
		s += fmt.Sprintf("%s %s %s", c.Column, op, c.Value)
	}
	return s
}
