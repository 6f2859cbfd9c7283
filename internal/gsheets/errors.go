package gsheets

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// APIError is a non-2xx response from the Sheets API. Message is the
// remote error text, passed through unchanged.
type APIError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Op + ": " + e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// CredentialError reports service-account credentials that are missing,
// cannot be parsed or cannot be exchanged for a token.
type CredentialError struct {
	Reason string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("google credentials: %s: %v", e.Reason, e.Err)
	}
	return "google credentials: " + e.Reason
}

func (e *CredentialError) Unwrap() error { return e.Err }

// SheetNotFoundError reports a sheet title that is not in the spreadsheet.
type SheetNotFoundError struct {
	Title     string
	Available []string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found in spreadsheet (available: %s)", e.Title, strings.Join(e.Available, ", "))
}

// translate converts transport and API failures into the package's error
// types. op reads like "Failed to delete rows".
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return &CredentialError{Reason: "token exchange failed", Err: err}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = strings.TrimSpace(gerr.Body)
		}
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		return &APIError{Op: op, Status: gerr.Code, Message: msg, Err: err}
	}

	return fmt.Errorf("%s: %w", op, err)
}
