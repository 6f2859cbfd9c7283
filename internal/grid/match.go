package grid

import (
	"strconv"
	"strings"
)

// Operator is a comparison applied by a Condition.
type Operator string

const (
	OpEquals    Operator = "=="
	OpNotEquals Operator = "!="
	OpGreater   Operator = ">"
	OpLess      Operator = "<"
	OpGreaterEq Operator = ">="
	OpLessEq    Operator = "<="
)

var operatorAliases = map[string]Operator{
	"":    OpEquals,
	"=":   OpEquals,
	"==":  OpEquals,
	"eq":  OpEquals,
	"!=":  OpNotEquals,
	"<>":  OpNotEquals,
	"ne":  OpNotEquals,
	">":   OpGreater,
	"gt":  OpGreater,
	"<":   OpLess,
	"lt":  OpLess,
	">=":  OpGreaterEq,
	"gte": OpGreaterEq,
	"<=":  OpLessEq,
	"lte": OpLessEq,
}

// ParseOperator accepts the symbolic operators and their word aliases
// (eq, ne, gt, lt, gte, lte). An empty string means equality.
func ParseOperator(s string) (Operator, error) {
	if op, ok := operatorAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op, nil
	}
	return "", &InvalidOperatorError{Operator: s}
}

// Mode selects how Match evaluates its conditions.
type Mode int

const (
	// ModeAll requires every condition to hold by exact string equality.
	// Operators on the conditions are ignored.
	ModeAll Mode = iota

	// ModeOperator evaluates a single condition with its operator, comparing
	// numerically when both sides parse as floats and as strings otherwise.
	ModeOperator
)

// Condition is a (column, operator, value) triple.
type Condition struct {
	Column   string
	Operator Operator
	Value    string
}

// Equals is shorthand for an equality condition as used in ModeAll.
func Equals(column, value string) Condition {
	return Condition{Column: column, Operator: OpEquals, Value: value}
}

type resolved struct {
	idx int
	Condition
}

// Match returns the sheet row numbers, ascending, of the data rows that
// satisfy conds. The header row is never matched. Cells missing from short
// rows compare as "".
//
// An empty condition list or a column that is not in the header is an
// error rather than an empty result. ModeOperator accepts exactly one
// condition.
func Match(g Grid, conds []Condition, mode Mode) ([]int, error) {
	if len(conds) == 0 {
		return nil, ErrNoConditions
	}
	if mode == ModeOperator && len(conds) != 1 {
		return nil, ErrOperatorArity
	}

	header, err := g.Header()
	if err != nil {
		return nil, err
	}

	rs := make([]resolved, len(conds))
	for i, c := range conds {
		idx, err := header.Resolve(c.Column)
		if err != nil {
			return nil, err
		}
		if mode == ModeOperator {
			if c.Operator, err = ParseOperator(string(c.Operator)); err != nil {
				return nil, err
			}
		}
		rs[i] = resolved{idx: idx, Condition: c}
	}

	matches := []int{}
	for i := 1; i < len(g); i++ {
		if rowMatches(g[i], rs, mode) {
			matches = append(matches, i+HeaderRow)
		}
	}
	return matches, nil
}

func rowMatches(row []string, rs []resolved, mode Mode) bool {
	for _, r := range rs {
		v := cell(row, r.idx)
		switch mode {
		case ModeOperator:
			if !Compare(v, r.Operator, r.Value) {
				return false
			}
		default:
			if v != r.Value {
				return false
			}
		}
	}
	return true
}

// Compare evaluates cell <op> value. Both sides are compared as float64
// when both parse, otherwise as strings.
func Compare(cellValue string, op Operator, value string) bool {
	a, aerr := strconv.ParseFloat(strings.TrimSpace(cellValue), 64)
	b, berr := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if aerr == nil && berr == nil {
		return compareOrdered(a, b, op)
	}
	return compareOrdered(cellValue, value, op)
}

func compareOrdered[T float64 | string](a, b T, op Operator) bool {
	switch op {
	case OpEquals:
		return a == b
	case OpNotEquals:
		return a != b
	case OpGreater:
		return a > b
	case OpLess:
		return a < b
	case OpGreaterEq:
		return a >= b
	case OpLessEq:
		return a <= b
	}
	return false
}

// MatchContains returns the sheet row numbers of data rows where any cell
// contains needle, ignoring case.
func MatchContains(g Grid, needle string) ([]int, error) {
	if needle == "" {
		return nil, ErrEmptyNeedle
	}
	if len(g) == 0 {
		return nil, ErrEmptySheet
	}
	needle = strings.ToLower(needle)

	matches := []int{}
	for i := 1; i < len(g); i++ {
		for _, c := range g[i] {
			if strings.Contains(strings.ToLower(c), needle) {
				matches = append(matches, i+HeaderRow)
				break
			}
		}
	}
	return matches, nil
}

// Intersect returns the row numbers present in both ascending lists.
func Intersect(a, b []int) []int {
	out := []int{}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
