package core

import (
	jsoniter "github.com/json-iterator/go"
)

// JSON is the codec used for every record read from or written by jshunt.
// Map keys are sorted so a finding always serializes to the same bytes.
var JSON = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Serialize returns the canonical JSON form of a finding, which doubles as
// its dedup key.
func (f SecretFinding) Serialize() (string, error) {
	return JSON.MarshalToString(f)
}
