package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanDelete_ScenarioFromMatch(t *testing.T) {
	matches, err := Match(sampleGrid(), []Condition{Equals("id", "1")}, ModeAll)
	require.NoError(t, err)

	plan := PlanDelete(matches)
	require.Len(t, plan, 2)
	assert.Equal(t, RowDeletion{RowNumber: 4, StartIndex: 3, EndIndex: 4}, plan[0])
	assert.Equal(t, RowDeletion{RowNumber: 2, StartIndex: 1, EndIndex: 2}, plan[1])
}

func TestPlanDelete_StrictlyDescending(t *testing.T) {
	inputs := [][]int{
		{},
		{2},
		{2, 3, 4, 5},
		{9, 2, 7, 2, 4},
		{100, 3, 55, 3, 99, 12},
	}

	for _, in := range inputs {
		plan := PlanDelete(in)
		for i := 1; i < len(plan); i++ {
			assert.Greater(t, plan[i-1].RowNumber, plan[i].RowNumber, "input %v", in)
		}
		for _, d := range plan {
			assert.Equal(t, d.EndIndex-1, d.StartIndex)
			assert.Equal(t, int64(d.RowNumber), d.EndIndex)
		}
	}
}

func TestPlanUpdate(t *testing.T) {
	header := Header{"id", "name", "status"}

	t.Run("count is matches times columns", func(t *testing.T) {
		for _, n := range []int{0, 1, 3} {
			matches := make([]int, n)
			for i := range matches {
				matches[i] = i + 2
			}
			for _, cols := range [][]Assignment{
				{{Column: "status", Value: "done"}},
				{{Column: "status", Value: "done"}, {Column: "name", Value: "x"}},
			} {
				writes, err := PlanUpdate(header, matches, cols)
				require.NoError(t, err)
				assert.Len(t, writes, n*len(cols))
			}
		}
	})

	t.Run("addresses each cell", func(t *testing.T) {
		writes, err := PlanUpdate(header, []int{2, 4}, []Assignment{
			{Column: "status", Value: "done"},
			{Column: "id", Value: "7"},
		})
		require.NoError(t, err)
		assert.Equal(t, []CellWrite{
			{Cell: "C2", Row: 2, Column: 2, Value: "done"},
			{Cell: "A2", Row: 2, Column: 0, Value: "7"},
			{Cell: "C4", Row: 4, Column: 2, Value: "done"},
			{Cell: "A4", Row: 4, Column: 0, Value: "7"},
		}, writes)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := PlanUpdate(header, []int{2}, []Assignment{{Column: "Status", Value: "x"}})
		var notFound *ColumnNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Status", notFound.Column)
	})

	t.Run("column assigned twice", func(t *testing.T) {
		_, err := PlanUpdate(header, []int{2}, []Assignment{
			{Column: "name", Value: "x"},
			{Column: "name", Value: "y"},
		})
		var dup *DuplicateColumnError
		assert.ErrorAs(t, err, &dup)
	})
}

func TestNextEmptyRow(t *testing.T) {
	assert.Equal(t, 1, NextEmptyRow(nil))
	assert.Equal(t, 2, NextEmptyRow(Grid{{"header"}}))
	assert.Equal(t, 5, NextEmptyRow(Grid{{"h"}, {"a"}, {}, {"b"}}))
}

func TestColumnLetter(t *testing.T) {
	tests := map[int]string{
		-1:  "",
		0:   "A",
		1:   "B",
		25:  "Z",
		26:  "AA",
		27:  "AB",
		51:  "AZ",
		52:  "BA",
		701: "ZZ",
		702: "AAA",
	}
	for idx, want := range tests {
		assert.Equal(t, want, ColumnLetter(idx), "index %d", idx)
	}
}

func TestA1(t *testing.T) {
	tests := []struct {
		sheet, ref, want string
	}{
		{"Sheet1", "A1:ZZ1000", "'Sheet1'!A1:ZZ1000"},
		{"Sheet1", "", "'Sheet1'"},
		{"My Sheet", "A:A", "'My Sheet'!A:A"},
		{"Bob's", "B2", "'Bob''s'!B2"},
		{"data_2024", "1:1", "'data_2024'!1:1"},
		// Titles that parse as cells must stay quoted.
		{"Q1", "", "'Q1'"},
		{"FY2024", "A1", "'FY2024'!A1"},
		{"R1C1", "B:B", "'R1C1'!B:B"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, A1(tt.sheet, tt.ref))
	}
}
