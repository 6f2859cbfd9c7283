package modules

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/sheethooks/internal/core"
	"github.com/JonMunkholm/sheethooks/internal/logging"
)

func init() {
	core.Register(core.ModuleDefinition{
		Info: core.ModuleInfo{
			Key:         "create_sheet",
			Label:       "Create Tab",
			Description: "Add a new tab to a spreadsheet",
			Writes:      true,
		},
		Execute: createSheet,
	})
}

type createSheetInput struct {
	SheetID      core.Ref `json:"sheet_id"`
	TabSheetName core.Ref `json:"tab_sheet_name"`
}

// CreateSheetData is the data of a create_sheet result.
type CreateSheetData struct {
	Success         bool   `json:"success"`
	SheetID         string `json:"sheet_id"`
	NewTabSheetName string `json:"new_tab_sheet_name"`
	NewTabID        int64  `json:"new_tab_id"`
	Message         string `json:"message"`
}

func createSheet(ctx context.Context, env core.Env, payload json.RawMessage) (*core.Result, error) {
	var in createSheetInput
	if err := core.DecodePayload(payload, &in); err != nil {
		return nil, err
	}
	if in.SheetID.Empty() {
		return nil, core.Missing("Sheet ID")
	}
	if in.TabSheetName.Empty() {
		return nil, core.Missing("Tab Sheet Name")
	}

	tab, err := env.Sheets.AddSheet(ctx, in.SheetID.String(), in.TabSheetName.String())
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("tab created", "title", tab.Title, "tab_id", tab.SheetID)

	msg := fmt.Sprintf("Tab '%s' created successfully.", tab.Title)
	return &core.Result{
		Data: CreateSheetData{
			Success:         true,
			SheetID:         in.SheetID.String(),
			NewTabSheetName: tab.Title,
			NewTabID:        tab.SheetID,
			Message:         msg,
		},
		Metadata: core.Metadata{AffectedRecords: 1, Message: msg},
	}, nil
}
