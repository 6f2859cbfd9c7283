package core

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

// Ref is a form value that arrives either as a plain string or as a
// dropdown option object. For objects the first non-empty of id, label and
// value wins. Numbers and booleans are stringified; null is empty.
type Ref string

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Ref(s)
	case '{':
		var opt struct {
			ID    any `json:"id"`
			Label any `json:"label"`
			Value any `json:"value"`
		}
		if err := json.Unmarshal(b, &opt); err != nil {
			return err
		}
		*r = ""
		for _, v := range []any{opt.ID, opt.Label, opt.Value} {
			if s := refString(v); s != "" {
				*r = Ref(s)
				break
			}
		}
	default:
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*r = Ref(refString(v))
	}
	return nil
}

// refString stringifies scalars. A nested option object resolves the same
// way as the outer one.
func refString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case map[string]any:
		for _, k := range []string{"id", "label", "value"} {
			if s := refString(t[k]); s != "" {
				return s
			}
		}
		return ""
	case []any:
		return ""
	default:
		return cast.ToString(t)
	}
}

// String returns the resolved value unchanged.
func (r Ref) String() string { return string(r) }

// Empty reports whether the reference resolved to nothing but whitespace.
func (r Ref) Empty() bool { return strings.TrimSpace(string(r)) == "" }
