package jsonc

import (
	"github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
)

// Unmarshal parses JSON with comments and trailing commas into v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(jsonc.ToJSON(data), v)
}
