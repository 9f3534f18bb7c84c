package store

import (
	"bytes"
	"encoding/json"
	"regexp"
)

// trailingComma matches a comma followed only by whitespace before a closing
// bracket or brace.
var trailingComma = regexp.MustCompile(`,(\s*[\]}])`)

// RepairJSON removes trailing commas before closing brackets and braces, the
// damage left by hand-edited logs. It returns the repaired bytes, whether
// anything changed, and an error when the result is still not a valid JSON
// array.
func RepairJSON(data []byte) ([]byte, bool, error) {
	if json.Valid(data) {
		if err := validateArray(data); err != nil {
			return nil, false, err
		}
		return data, false, nil
	}

	fixed := trailingComma.ReplaceAll(data, []byte("$1"))
	if err := validateArray(fixed); err != nil {
		return nil, false, err
	}

	return fixed, !bytes.Equal(fixed, data), nil
}

func validateArray(data []byte) error {
	var probe []json.RawMessage
	return json.Unmarshal(data, &probe)
}
