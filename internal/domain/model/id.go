package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque backend identifier. The composite service hands out both integer
// and string ids, so both JSON forms decode into the same textual value.
type ID string

func (id ID) String() string { return string(id) }

// IsNumeric reports whether the id is a base-10 integer.
func (id ID) IsNumeric() bool {
	_, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: unsupported json value %s", b)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as JSON numbers so the backend receives the
// same shape it handed out. "007" and "+5" are sent as 7 and 5.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return strconv.AppendInt(nil, n, 10), nil
	}
	return json.Marshal(string(id))
}
