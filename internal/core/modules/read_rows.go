package modules

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/sheethooks/internal/core"
	"github.com/JonMunkholm/sheethooks/internal/grid"
	"github.com/JonMunkholm/sheethooks/internal/logging"
)

func init() {
	core.Register(core.ModuleDefinition{
		Info: core.ModuleInfo{
			Key:            "google_sheets_reader",
			Label:          "Read Rows",
			Description:    "Read the first N data rows of a sheet as records",
			ContentObjects: []string{contentSheetNames, contentRowOptions, contentSheetRanges},
		},
		Content: contentFor(contentSheetNames, contentRowOptions, contentSheetRanges),
		Execute: readRows,
	})
}

type readRowsInput struct {
	sheetTarget
	NumRows core.Ref `json:"num_rows"`
}

// ReadRowsData is the data of a google_sheets_reader result.
type ReadRowsData struct {
	SheetID            string        `json:"sheet_id"`
	SheetName          string        `json:"sheet_name"`
	NumRows            string        `json:"num_rows"`
	TotalAvailableRows int           `json:"total_available_rows"`
	ReturnedRows       int           `json:"returned_rows"`
	Headers            []string      `json:"headers"`
	Data               []grid.Record `json:"data"`
	TotalRecords       int           `json:"total_records"`
	TotalFields        int           `json:"total_fields"`
}

// parseRowLimit reads num_rows: "", "all" or a positive integer. It returns
// -1 for all rows.
func parseRowLimit(r core.Ref) (int, error) {
	s := strings.ToLower(strings.TrimSpace(r.String()))
	if s == "" || s == "all" {
		return -1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, core.Invalid("num_rows", "%q is not \"all\" or a positive whole number", r.String())
	}
	return n, nil
}

func readRows(ctx context.Context, env core.Env, payload json.RawMessage) (*core.Result, error) {
	var in readRowsInput
	if err := core.DecodePayload(payload, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	limit, err := parseRowLimit(in.NumRows)
	if err != nil {
		return nil, err
	}
	numRows := "all"
	if limit > 0 {
		numRows = strconv.Itoa(limit)
	}

	g, header, err := readSheet(ctx, env, in.sheetTarget, env.ReadRange)
	if err != nil {
		return nil, err
	}

	records := g.Records(header, g.Leading(limit))
	logging.FromContext(ctx).Info("rows read",
		"sheet", in.sheet(),
		"available", g.DataRows(),
		"returned", len(records),
	)

	return &core.Result{
		Data: ReadRowsData{
			SheetID:            in.id(),
			SheetName:          in.sheet(),
			NumRows:            numRows,
			TotalAvailableRows: g.DataRows(),
			ReturnedRows:       len(records),
			Headers:            header,
			Data:               records,
			TotalRecords:       len(records),
			TotalFields:        len(header),
		},
		Metadata: core.Metadata{
			AffectedRecords: len(records),
			Message:         fmt.Sprintf("Successfully fetched %d records from sheet '%s' (%s rows requested)", len(records), in.sheet(), numRows),
		},
	}, nil
}
