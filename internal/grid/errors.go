package grid

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptySheet is returned when a read produced no rows at all.
	ErrEmptySheet = errors.New("sheet has no data")

	// ErrEmptyHeader is returned when the header row has no cells.
	ErrEmptyHeader = errors.New("sheet header row is empty")

	// ErrNoConditions is returned by Match when no condition was supplied.
	ErrNoConditions = errors.New("at least one condition is required")

	// ErrEmptyNeedle is returned by MatchContains for an empty search value.
	ErrEmptyNeedle = errors.New("filter value is required")

	// ErrOperatorArity is returned by Match in ModeOperator for more or
	// fewer than one condition.
	ErrOperatorArity = errors.New("operator mode takes exactly one condition")
)

// ColumnNotFoundError reports a column reference that is not in the header.
// Header holds the full header row so the caller can correct the reference.
type ColumnNotFoundError struct {
	Column string
	Header []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in header: [%s]", e.Column, quoteJoin(e.Header))
}

// DuplicateColumnError reports a column name that appears more than once,
// either in a header row or in a list of assignments.
type DuplicateColumnError struct {
	Column string
	Where  string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("column %q appears more than once in %s", e.Column, e.Where)
}

// InvalidOperatorError reports an operator string that ParseOperator does not know.
type InvalidOperatorError struct {
	Operator string
}

func (e *InvalidOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator %q (use one of ==, !=, >, <, >=, <=)", e.Operator)
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
