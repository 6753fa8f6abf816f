package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reading is a sensor value that clients send either as a JSON string ("4.2") or a number (4.2).
type Reading string

func (r *Reading) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Reading(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("reading must be a string or a number, got %s", data)
	}
	*r = Reading(n.String())
	return nil
}

// OrUnknown returns the reading, or "?" when the value was never reported.
func (r Reading) OrUnknown() string {
	if r == "" {
		return "?"
	}
	return string(r)
}
