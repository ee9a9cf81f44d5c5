package scan

import (
	"bytes"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/shaniidev/jshunt/internal/core"
)

var errUnknownRecord = errors.New("neither a url nor a secret record")

// DecodeError describes an adapter output line that could not be decoded.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	line := e.Line
	if len(line) > 120 {
		line = line[:120] + "..."
	}
	return fmt.Sprintf("decode %q: %v", line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Record is one decoded extractor line; exactly one field is set.
type Record struct {
	URL    *core.URLRecord
	Secret *core.SecretFinding
}

// ParseRecord decodes one line of extractor output. A line with a "url" key
// is a URL record, a line with a "kind" key is a secret.
func ParseRecord(line []byte) (Record, error) {
	line = bytes.TrimSpace(line)

	var probe map[string]jsoniter.RawMessage
	if err := core.JSON.Unmarshal(line, &probe); err != nil {
		return Record{}, &DecodeError{Line: string(line), Err: err}
	}

	if _, ok := probe["url"]; ok {
		var rec core.URLRecord
		if err := core.JSON.Unmarshal(line, &rec); err != nil {
			return Record{}, &DecodeError{Line: string(line), Err: err}
		}
		if rec.URL == "" {
			return Record{}, &DecodeError{Line: string(line), Err: errors.New("empty url")}
		}
		return Record{URL: &rec}, nil
	}

	if _, ok := probe["kind"]; ok {
		var secret core.SecretFinding
		if err := core.JSON.Unmarshal(line, &secret); err != nil {
			return Record{}, &DecodeError{Line: string(line), Err: err}
		}
		if secret.Data == nil {
			secret.Data = map[string]any{}
		}
		return Record{Secret: &secret}, nil
	}

	return Record{}, &DecodeError{Line: string(line), Err: errUnknownRecord}
}
