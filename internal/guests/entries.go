package guests

import (
	"bytes"
	"encoding/json"
)

// Partial is one client supplied guest entry. Every field may be missing.
type Partial struct {
	Label string `json:"label"`
	Name  string `json:"name"`
	Age   Number `json:"age"`
}

// UnmarshalJSON decodes an entry field by field so that a wrongly typed field
// only loses that field. Non-object entries decode as an empty Partial.
func (p *Partial) UnmarshalJSON(data []byte) error {
	*p = Partial{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	p.Label = decodeText(fields["label"])
	p.Name = decodeText(fields["name"])
	if raw, ok := fields["age"]; ok {
		p.Age = decodeNumber(raw)
	}
	return nil
}

// Entries is a leniently decoded list of guest entries. Anything other than a
// JSON array decodes as an absent list.
type Entries []Partial

// UnmarshalJSON never fails.
func (e *Entries) UnmarshalJSON(data []byte) error {
	*e = nil

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	list := make(Entries, len(raw))
	for i, item := range raw {
		_ = list[i].UnmarshalJSON(item)
	}
	*e = list
	return nil
}
