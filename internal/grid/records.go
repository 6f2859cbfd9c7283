package grid

import (
	"bytes"
	"encoding/json"
)

// RowNumberField is the field added to every shaped record.
const RowNumberField = "_row_number"

// Field is one labelled cell of a record.
type Field struct {
	Name  string
	Value string
}

// Record is a data row labelled by the header. It marshals to a JSON object
// whose keys keep header order, followed by _row_number.
type Record struct {
	Fields    []Field
	RowNumber int
}

// Get returns the value of the named field.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, f := range r.Fields {
		if err := writeMember(&buf, f.Name, f.Value); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	if err := writeMember(&buf, RowNumberField, r.RowNumber); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// Records shapes the given sheet rows into records labelled by header.
// Missing cells become "" and cells beyond the header are dropped. Row
// numbers outside the grid are skipped.
func (g Grid) Records(header Header, rowNumbers []int) []Record {
	out := make([]Record, 0, len(rowNumbers))
	for _, n := range rowNumbers {
		if n < FirstDataRow {
			continue
		}
		row := g.Row(n)
		if row == nil {
			continue
		}
		fields := make([]Field, 0, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			fields = append(fields, Field{Name: name, Value: cell(row, i)})
		}
		out = append(out, Record{Fields: fields, RowNumber: n})
	}
	return out
}

// Leading returns the row numbers of the first n data rows; n < 0 means all.
func (g Grid) Leading(n int) []int {
	total := g.DataRows()
	if n < 0 || n > total {
		n = total
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = FirstDataRow + i
	}
	return rows
}
