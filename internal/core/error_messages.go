package core

// # Error Codes Reference
//
// Every error response carries a code that callers can quote to support.
// Typed errors map to a code by kind; anything else is matched against a
// short pattern table and falls back to ERR000.
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Missing parameter: a required field is empty
//	REQ002 - Invalid parameter: a field is present but unusable
//	REQ003 - Timeout: the request or a remote call timed out
//	REQ004 - Cancelled: the caller went away
//
// # Sheet Errors (COL, ROW, SHEET)
//
//	COL001 - Column not found: the column is not in the header row
//	COL002 - Duplicate column: a header or update column appears twice
//	ROW001 - No match: no data row satisfied the conditions
//	ROW002 - Empty sheet: the read returned no rows
//	SHEET001 - Sheet not found: the tab title is not in the spreadsheet
//
// # Remote Errors (API, AUTH, NET)
//
//	API001 - Google Sheets API error: the remote message is passed through
//	AUTH001 - Credentials: the service account is missing or invalid
//	NET001 - Connection refused
//	NET002 - Connection reset
//
// # Service Errors
//
//	MOD001 - Unknown module
//	BUSY001 - Too many executions in flight
//	RATE001 - Rate limited
//	ERR000 - Unexpected error

import (
	"errors"
	"strings"

	"github.com/JonMunkholm/sheethooks/internal/grid"
	"github.com/JonMunkholm/sheethooks/internal/gsheets"
)

// UserMessage is the support-facing description of an error.
type UserMessage struct {
	Message string // Short description
	Action  string // What the caller can do about it
	Code    string // Support reference, e.g. "COL001"
}

var kindMessages = map[Kind]UserMessage{
	KindMissingParameter: {"Required parameter is missing", "Fill in every required field of the step", "REQ001"},
	KindInvalidParameter: {"Parameter value is not valid", "Check the field value and try again", "REQ002"},
	KindColumnNotFound:   {"Column not found in the sheet header", "Pick a column from the header row listed in the error", "COL001"},
	KindNoMatch:          {"No matching rows", "Check the conditions against the sheet contents", "ROW001"},
	KindRemoteAPI:        {"Google Sheets rejected the request", "Check the spreadsheet ID, sheet name and sharing settings", "API001"},
	KindCredential:       {"Google credentials are not usable", "Check the service account configuration", "AUTH001"},
	KindUnknownModule:    {"Unknown module", "Check the webhook URL", "MOD001"},
	KindBusy:             {"Too many operations in progress", "Please wait a moment and try again", "BUSY001"},
	KindTimeout:          {"Request timed out", "Please try again", "REQ003"},
	KindCancelled:        {"Request was cancelled", "Please try again", "REQ004"},
}

// errorPatterns covers untyped errors, mostly from the network stack.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "REQ004"}},
	{"connection refused", UserMessage{"Unable to reach Google Sheets", "Please try again in a few moments", "NET001"}},
	{"connection reset", UserMessage{"Connection to Google Sheets was interrupted", "Please try again", "NET002"}},
	{"timeout", UserMessage{"Request timed out", "Please try again", "REQ003"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned when nothing else matches (ERR000). The
// technical error is in the logs under the same request_id.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a UserMessage. Typed errors are mapped by kind,
// with finer codes for empty sheets, duplicate columns and missing tabs.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		dup     *grid.DuplicateColumnError
		noSheet *gsheets.SheetNotFoundError
	)
	switch {
	case errors.Is(err, grid.ErrEmptySheet), errors.Is(err, grid.ErrEmptyHeader):
		return UserMessage{"The sheet has no data", "Add a header row and data to the sheet", "ROW002"}
	case errors.As(err, &dup):
		return UserMessage{"Column name appears more than once", "Make column names unique", "COL002"}
	case errors.As(err, &noSheet):
		return UserMessage{"Sheet not found in the spreadsheet", "Pick a sheet from the list", "SHEET001"}
	}

	if msg, ok := kindMessages[KindOf(err)]; ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// IsUserFacing reports whether err maps to a specific code rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
