package core

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/JonMunkholm/sheethooks/internal/grid"
	"github.com/JonMunkholm/sheethooks/internal/gsheets"
)

// Kind classifies an error for the response envelope.
type Kind string

const (
	KindMissingParameter Kind = "MissingParameter"
	KindInvalidParameter Kind = "InvalidParameter"
	KindColumnNotFound   Kind = "ColumnNotFound"
	KindNoMatch          Kind = "NoMatch"
	KindRemoteAPI        Kind = "RemoteAPIError"
	KindCredential       Kind = "MalformedCredential"
	KindUnknownModule    Kind = "UnknownModule"
	KindBusy             Kind = "Busy"
	KindTimeout          Kind = "Timeout"
	KindCancelled        Kind = "Cancelled"
	KindInternal         Kind = "Internal"
)

// MissingParameterError reports a required form field that was absent or
// empty. The message is shown to the caller as is.
type MissingParameterError struct {
	Field string
}

func (e *MissingParameterError) Error() string {
	return e.Field + " is required"
}

// Missing returns a MissingParameterError for field, e.g. Missing("Sheet ID").
func Missing(field string) error {
	return &MissingParameterError{Field: field}
}

// InvalidParameterError reports a field that is present but unusable.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid returns an InvalidParameterError.
func Invalid(field, format string, args ...any) error {
	return &InvalidParameterError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NoMatchError reports an operation that found nothing to act on. It is a
// descriptive no-op rather than a failure of the remote call.
type NoMatchError struct {
	Message string
}

func (e *NoMatchError) Error() string { return e.Message }

// NoMatch returns a NoMatchError with the given message.
func NoMatch(format string, args ...any) error {
	return &NoMatchError{Message: fmt.Sprintf(format, args...)}
}

// UnknownModuleError is returned for a module key that is not registered.
type UnknownModuleError struct {
	Key string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("unknown module: %s", e.Key)
}

// KindOf classifies err. Errors from the grid and gsheets packages are
// recognised directly so modules can return them unwrapped or wrapped.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var (
		missing    *MissingParameterError
		invalid    *InvalidParameterError
		noMatch    *NoMatchError
		unknown    *UnknownModuleError
		colMissing *grid.ColumnNotFoundError
		colDup     *grid.DuplicateColumnError
		badOp      *grid.InvalidOperatorError
		apiErr     *gsheets.APIError
		credErr    *gsheets.CredentialError
		noSheet    *gsheets.SheetNotFoundError
	)

	switch {
	case errors.As(err, &missing),
		errors.Is(err, grid.ErrNoConditions),
		errors.Is(err, grid.ErrEmptyNeedle):
		return KindMissingParameter
	case errors.As(err, &colMissing):
		return KindColumnNotFound
	case errors.As(err, &invalid),
		errors.As(err, &colDup),
		errors.As(err, &badOp),
		errors.As(err, &noSheet),
		errors.Is(err, grid.ErrOperatorArity):
		return KindInvalidParameter
	case errors.As(err, &noMatch),
		errors.Is(err, grid.ErrEmptySheet),
		errors.Is(err, grid.ErrEmptyHeader):
		return KindNoMatch
	case errors.As(err, &credErr):
		return KindCredential
	case errors.As(err, &apiErr):
		return KindRemoteAPI
	case errors.As(err, &unknown):
		return KindUnknownModule
	case errors.Is(err, ErrTooManyExecutions):
		return KindBusy
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindInternal
}
