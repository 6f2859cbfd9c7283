package modules

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/JonMunkholm/sheethooks/internal/core"
)

func contentRequest(form core.FormData, ids ...string) core.ContentRequest {
	req := core.ContentRequest{FormData: form}
	for _, id := range ids {
		req.ContentObjectNames = append(req.ContentObjectNames, core.ContentName{ID: id})
	}
	return req
}

func optionIDs(opts []core.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value.ID
	}
	return out
}

func TestContent_Providers(t *testing.T) {
	fake, env := newEnv(t)
	statusSheet(fake)
	fake.Seed(book, "Other", 8, []string{"k"})

	def, _ := core.Get("update_row_key_value")
	form := core.FormData{SheetID: book, SheetName: "Status", KeyColumn: "name"}

	got := def.Content(context.Background(), env, contentRequest(form,
		contentSheetNames, contentKeyColumns, contentKeyValues, contentUpdateColumns, contentRowOptions, "nonsense",
	))

	want := map[string][]string{
		contentSheetNames:    {"Status", "Other"},
		contentKeyColumns:    {"id", "name", "status"},
		contentKeyValues:     {"a", "b"},
		contentUpdateColumns: {"id", "name", "status"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d content objects, want %d: %+v", len(got), len(want), got)
	}
	for _, obj := range got {
		if ids := optionIDs(obj.Data); !reflect.DeepEqual(ids, want[obj.Name]) {
			t.Errorf("%s = %v, want %v", obj.Name, ids, want[obj.Name])
		}
	}
	var wholeSheet bool
	for _, c := range fake.Calls() {
		wholeSheet = wholeSheet || (c.Method == "Values" && c.Range == "'Status'")
	}
	if !wholeSheet {
		t.Error("key values did not read the whole sheet")
	}
}

func TestContent_KeyedModulesServeColumnPickers(t *testing.T) {
	fake, env := newEnv(t)
	statusSheet(fake)
	form := core.FormData{SheetID: book, SheetName: "Status", KeyColumn: "status"}

	tests := []struct {
		module string
		ids    []string
		want   map[string][]string
	}{
		{
			"delete_row_by_key_value",
			[]string{contentColumnNames},
			map[string][]string{contentColumnNames: {"id", "name", "status"}},
		},
		{
			"update_row_key_value",
			[]string{contentColumnNames, contentColumnValues},
			map[string][]string{
				contentColumnNames:  {"id", "name", "status"},
				contentColumnValues: {"x", "y"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			def, ok := core.Get(tt.module)
			if !ok {
				t.Fatalf("module %s not registered", tt.module)
			}
			for _, id := range tt.ids {
				if !slices.Contains(def.Info.ContentObjects, id) {
					t.Errorf("ContentObjects %v missing %s", def.Info.ContentObjects, id)
				}
			}

			got := def.Content(context.Background(), env, contentRequest(form, tt.ids...))
			if len(got) != len(tt.ids) {
				t.Fatalf("got %d content objects, want %d: %+v", len(got), len(tt.ids), got)
			}
			for i, obj := range got {
				if obj.Name != tt.ids[i] {
					t.Errorf("object %d = %s, want %s", i, obj.Name, tt.ids[i])
				}
				if ids := optionIDs(obj.Data); !reflect.DeepEqual(ids, tt.want[obj.Name]) {
					t.Errorf("%s = %v, want %v", obj.Name, ids, tt.want[obj.Name])
				}
			}
		})
	}
}

func TestContent_FailuresAreEmpty(t *testing.T) {
	fake, env := newEnv(t)
	statusSheet(fake)
	fake.Err["Values"] = errors.New("boom")

	def, _ := core.Get("add_row_to_sheet")
	got := def.Content(context.Background(), env, contentRequest(
		core.FormData{SheetID: book, SheetName: "Status"}, contentSheetNames, contentColumnNames,
	))
	if len(got) != 2 {
		t.Fatalf("got %d content objects", len(got))
	}
	if len(got[0].Data) != 1 {
		t.Errorf("sheet_names = %v", got[0].Data)
	}
	if got[1].Data == nil || len(got[1].Data) != 0 {
		t.Errorf("column_names after failure = %#v, want empty list", got[1].Data)
	}
}

func TestContent_MissingForm(t *testing.T) {
	_, env := newEnv(t)
	def, _ := core.Get("delete_row_by_key_value")

	idx := 2
	req := core.ContentRequest{ContentObjectNames: []core.ContentName{{ID: contentKeyValues, ArrayIndex: &idx}}}
	got := def.Content(context.Background(), env, req)
	if len(got) != 1 || len(got[0].Data) != 0 || got[0].ArrayIndex == nil || *got[0].ArrayIndex != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestRowCountChoices(t *testing.T) {
	tests := []struct {
		total int
		want  []string
	}{
		{3, []string{"all"}},
		{10, []string{"all", "5", "10"}},
		{12, []string{"all", "5", "10"}},
		{600, []string{"all", "5", "10", "25", "50", "100", "250", "500", "1000"}},
	}
	for _, tt := range tests {
		if got := optionIDs(rowCountChoices(tt.total)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("rowCountChoices(%d) = %v, want %v", tt.total, got, tt.want)
		}
	}
	if got := rowCountChoices(10)[2].Label; got != "All 10 rows" {
		t.Errorf("label = %q", got)
	}
}

func TestCellRangeChoices(t *testing.T) {
	small := cellRangeChoices([][]string{{"a", "b"}, {"1", "2"}})
	if got := optionIDs(small); !reflect.DeepEqual(got, []string{"all", "A1", "B1", "A2", "B2"}) {
		t.Errorf("small = %v", got)
	}
	if small[3].Label != "A2 (First data row, Column A)" {
		t.Errorf("label = %q", small[3].Label)
	}

	big := make([][]string, 30)
	for i := range big {
		big[i] = make([]string, 12)
	}
	opts := cellRangeChoices(big)
	if len(opts) != 1+rangeMaxCells+3 {
		t.Fatalf("got %d options", len(opts))
	}
	if got := optionIDs(opts[len(opts)-3:]); !reflect.DeepEqual(got, []string{"A30", "L1", "L30"}) {
		t.Errorf("shortcuts = %v", got)
	}
}
