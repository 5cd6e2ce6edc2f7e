package flow

import "strings"

// Value is one answer: a single string for most field types, a string list
// for multi-select checkboxes. Exactly one of the two is populated.
type Value struct {
	Text  string   `json:"text,omitempty"`
	Multi []string `json:"multi,omitempty"`
}

// ValueFrom coerces a decoded JSON answer (string or array of strings)
// into a Value. Anything else comes back empty.
func ValueFrom(raw any) Value {
	switch v := raw.(type) {
	case string:
		return Value{Text: v}
	case []string:
		return Value{Multi: v}
	case []any:
		multi := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				multi = append(multi, s)
			}
		}
		return Value{Multi: multi}
	}
	return Value{}
}

func (v Value) IsMulti() bool {
	return v.Multi != nil
}

func (v Value) IsEmpty() bool {
	if v.IsMulti() {
		return len(v.Multi) == 0
	}
	return v.Text == ""
}

// Joined flattens the value for storage: multi-select answers are joined
// with ", ", matching the persisted field-response format.
func (v Value) Joined() string {
	if v.IsMulti() {
		return strings.Join(v.Multi, ", ")
	}
	return v.Text
}

// Raw returns the JSON-friendly representation for the submission blob.
func (v Value) Raw() any {
	if v.IsMulti() {
		return v.Multi
	}
	return v.Text
}
