package grid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords_RowNumbers(t *testing.T) {
	g := sampleGrid()
	header, err := g.Header()
	require.NoError(t, err)

	records := g.Records(header, g.Leading(-1))
	require.Len(t, records, 3)
	assert.Equal(t, 2, records[0].RowNumber)
	assert.Equal(t, 4, records[2].RowNumber)

	v, ok := records[2].Get("name")
	assert.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestRecords_ShortAndLongRows(t *testing.T) {
	g := Grid{
		{"a", "b"},
		{"1"},
		{"1", "2", "extra"},
	}
	header, err := g.Header()
	require.NoError(t, err)

	records := g.Records(header, []int{1, 2, 3, 9})
	require.Len(t, records, 2)
	assert.Equal(t, []Field{{"a", "1"}, {"b", ""}}, records[0].Fields)
	assert.Equal(t, []Field{{"a", "1"}, {"b", "2"}}, records[1].Fields)
}

func TestRecord_MarshalJSONKeepsHeaderOrder(t *testing.T) {
	r := Record{
		Fields:    []Field{{"zeta", "1"}, {"alpha", "<b>"}},
		RowNumber: 7,
	}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"1","alpha":"<b>","_row_number":7}`, string(b))

	b, err = json.Marshal(Record{RowNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, `{"_row_number":2}`, string(b))
}

func TestLeading(t *testing.T) {
	g := sampleGrid()
	assert.Equal(t, []int{2, 3}, g.Leading(2))
	assert.Equal(t, []int{2, 3, 4}, g.Leading(50))
	assert.Equal(t, []int{}, g.Leading(0))
	assert.Equal(t, []int{}, Grid{{"h"}}.Leading(-1))
}

func TestFromValues(t *testing.T) {
	g := FromValues([][]interface{}{
		{"id", "amount", "ok"},
		{1, 2.5, true},
		{nil},
	})
	assert.Equal(t, Grid{{"id", "amount", "ok"}, {"1", "2.5", "true"}, {""}}, g)
}

func TestNewHeader(t *testing.T) {
	_, err := NewHeader(nil)
	assert.ErrorIs(t, err, ErrEmptyHeader)

	h, err := NewHeader([]string{"a", "", "", "b"})
	require.NoError(t, err)
	assert.True(t, h.Has("b"))
	assert.False(t, h.Has("B"))

	_, err = NewHeader([]string{"a", "b", "a"})
	assert.Error(t, err)
}
