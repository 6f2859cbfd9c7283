package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/sheethooks/internal/grid"
	"github.com/JonMunkholm/sheethooks/internal/gsheets"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"missing parameter", Missing("Sheet ID"), KindMissingParameter},
		{"wrapped missing parameter", fmt.Errorf("delete: %w", Missing("Sheet name")), KindMissingParameter},
		{"no conditions", grid.ErrNoConditions, KindMissingParameter},
		{"column not found", &grid.ColumnNotFoundError{Column: "x", Header: []string{"a"}}, KindColumnNotFound},
		{"duplicate header", &grid.DuplicateColumnError{Column: "a", Where: "header"}, KindInvalidParameter},
		{"bad operator", &grid.InvalidOperatorError{Operator: "~"}, KindInvalidParameter},
		{"sheet not found", &gsheets.SheetNotFoundError{Title: "x"}, KindInvalidParameter},
		{"no match", NoMatch("No rows found matching all conditions."), KindNoMatch},
		{"empty sheet", grid.ErrEmptySheet, KindNoMatch},
		{"remote api", &gsheets.APIError{Op: "Failed to read", Status: 403, Message: "denied"}, KindRemoteAPI},
		{"credential", &gsheets.CredentialError{Reason: "bad"}, KindCredential},
		{"unknown module", &UnknownModuleError{Key: "x"}, KindUnknownModule},
		{"busy", ErrTooManyExecutions, KindBusy},
		{"deadline", fmt.Errorf("read: %w", context.DeadlineExceeded), KindTimeout},
		{"cancelled", fmt.Errorf("acquire: %w", context.Canceled), KindCancelled},
		{"other", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"missing parameter", Missing("Sheet ID"), "REQ001"},
		{"invalid parameter", Invalid("num_rows", "must be a number"), "REQ002"},
		{"column not found", &grid.ColumnNotFoundError{Column: "x"}, "COL001"},
		{"duplicate column", &grid.DuplicateColumnError{Column: "x", Where: "the header row"}, "COL002"},
		{"no match", NoMatch("nothing"), "ROW001"},
		{"empty sheet", fmt.Errorf("read: %w", grid.ErrEmptySheet), "ROW002"},
		{"sheet not found", &gsheets.SheetNotFoundError{Title: "x"}, "SHEET001"},
		{"remote api", &gsheets.APIError{Message: "denied"}, "API001"},
		{"credential", &gsheets.CredentialError{Reason: "bad"}, "AUTH001"},
		{"unknown module", &UnknownModuleError{Key: "x"}, "MOD001"},
		{"busy", ErrTooManyExecutions, "BUSY001"},
		{"timeout", context.DeadlineExceeded, "REQ003"},
		{"cancelled", fmt.Errorf("read: %w", context.Canceled), "REQ004"},
		{"cancelled pattern", errors.New("Get \"https://sheets.googleapis.com\": context canceled"), "REQ004"},
		{"connection refused pattern", errors.New("dial tcp 1.2.3.4:443: connection refused"), "NET001"},
		{"timeout pattern", errors.New("i/o timeout"), "REQ003"},
		{"unknown error gets default", errors.New("something weird"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if tt.err != nil && (got.Message == "" || got.Action == "") {
				t.Errorf("MapError(%v) = %+v, want message and action", tt.err, got)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if !IsUserFacing(Missing("Sheet ID")) {
		t.Error("IsUserFacing(missing parameter) = false")
	}
	if IsUserFacing(errors.New("random")) {
		t.Error("IsUserFacing(random) = true")
	}
}

func TestErrorMessages(t *testing.T) {
	if got := Missing("Sheet ID").Error(); got != "Sheet ID is required" {
		t.Errorf("Missing().Error() = %q", got)
	}
	if got := NoMatch("No rows found where %s = %s.", "id", "7").Error(); got != "No rows found where id = 7." {
		t.Errorf("NoMatch().Error() = %q", got)
	}
	if got := Invalid("num_rows", "%q is not a number", "x").Error(); got != `invalid num_rows: "x" is not a number` {
		t.Errorf("Invalid().Error() = %q", got)
	}
}
