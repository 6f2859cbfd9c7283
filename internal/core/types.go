package core

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spf13/cast"

	"github.com/JonMunkholm/sheethooks/internal/grid"
	"github.com/JonMunkholm/sheethooks/internal/gsheets"
)

// Spreadsheets is the remote API surface the modules use.
// Satisfied by *gsheets.Client.
type Spreadsheets interface {
	Sheets(ctx context.Context, spreadsheetID string) ([]gsheets.SheetInfo, error)
	Values(ctx context.Context, spreadsheetID, rng string) (grid.Grid, error)
	Append(ctx context.Context, spreadsheetID, sheet string, row []string) (gsheets.WriteResult, error)
	WriteRow(ctx context.Context, spreadsheetID, rng string, row []string) (gsheets.WriteResult, error)
	BatchWrite(ctx context.Context, spreadsheetID, sheet string, writes []grid.CellWrite) (gsheets.WriteResult, error)
	DeleteRows(ctx context.Context, spreadsheetID string, sheetID int64, plan []grid.RowDeletion) error
	AddSheet(ctx context.Context, spreadsheetID, title string) (gsheets.SheetInfo, error)
}

// Env carries a module's dependencies for one call.
type Env struct {
	Sheets Spreadsheets

	// ReadRange is the bounded A1 range, without sheet prefix, read by the
	// reader and filter modules.
	ReadRange string
}

// ModuleInfo describes a registered module. Key is the route segment,
// e.g. "google_sheets_reader". Writes marks modules that need
// service-account credentials.
type ModuleInfo struct {
	Key            string   `json:"key"`
	Label          string   `json:"label"`
	Description    string   `json:"description"`
	ContentObjects []string `json:"content_objects"`
	Writes         bool     `json:"writes"`
}

// ContentFunc populates the requested content objects. Failures are
// reported per object as empty option lists, never as an error.
type ContentFunc func(ctx context.Context, env Env, req ContentRequest) []ContentObject

// ExecuteFunc runs a module's operation on the decoded request payload.
type ExecuteFunc func(ctx context.Context, env Env, payload json.RawMessage) (*Result, error)

// ModuleDefinition contains everything needed to serve one module.
type ModuleDefinition struct {
	Info    ModuleInfo
	Content ContentFunc // nil when the module has no dropdowns
	Execute ExecuteFunc // required
}

// FormData is the partial form state sent with a /content request.
type FormData struct {
	SheetID   Ref `json:"sheet_id"`
	SheetName Ref `json:"sheet_name"`
	KeyColumn Ref `json:"key_column"`
}

// ContentName identifies one requested content object. It arrives as
// {"id": "...", "array_index": n} or as a bare string.
type ContentName struct {
	ID         string
	ArrayIndex *int
}

func (c *ContentName) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID         Ref `json:"id"`
		ArrayIndex any `json:"array_index"`
	}
	if len(b) > 0 && b[0] != '{' {
		var id Ref
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*c = ContentName{ID: id.String()}
		return nil
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = ContentName{ID: raw.ID.String()}
	if raw.ArrayIndex != nil {
		if n, err := cast.ToIntE(raw.ArrayIndex); err == nil {
			c.ArrayIndex = &n
		}
	}
	return nil
}

// ContentRequest is the body of a /content call.
type ContentRequest struct {
	FormData           FormData      `json:"form_data"`
	ContentObjectNames []ContentName `json:"content_object_names"`
}

// Option is one dropdown entry.
type Option struct {
	Value OptionValue `json:"value"`
	Label string      `json:"label"`
}

// OptionValue is the value half of an Option.
type OptionValue struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// NewOption builds an Option whose id and labels are given explicitly.
func NewOption(id, label string) Option {
	return Option{Value: OptionValue{ID: id, Label: label}, Label: label}
}

// NamedOption builds an Option that uses name as both id and label.
func NamedOption(name string) Option {
	return NewOption(name, name)
}

// ContentObject is one populated dropdown.
type ContentObject struct {
	Name       string   `json:"content_object_name"`
	Data       []Option `json:"data"`
	ArrayIndex *int     `json:"array_index,omitempty"`
}

// ContentResponse is the body of a successful /content call.
type ContentResponse struct {
	ContentObjects []ContentObject `json:"content_objects"`
}

// Result is the outcome of an /execute call.
type Result struct {
	Data     any      `json:"data"`
	Metadata Metadata `json:"metadata"`
}

// Metadata accompanies every Result.
type Metadata struct {
	AffectedRecords int    `json:"affected_records"`
	Message         string `json:"message,omitempty"`
	Module          string `json:"module,omitempty"`
	ExecutionID     string `json:"execution_id,omitempty"`
	DurationMS      int64  `json:"duration_ms"`
}

// DecodePayload unmarshals an /execute payload into v. Malformed JSON is an
// InvalidParameterError.
func DecodePayload(payload json.RawMessage, v any) error {
	if len(strings.TrimSpace(string(payload))) == 0 {
		payload = json.RawMessage("{}")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return Invalid("request body", "%v", err)
	}
	return nil
}
