package iptvorg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/snapetech/iptvorg-m3u/internal/source"
)

// listSep joins JSON arrays so they read like the CSV list columns
// ("general;news").
const listSep = ";"

// ParseStructured decodes a JSON array of objects. Values are flattened to
// strings: null is "", arrays of scalars are joined with ";", nested objects
// are kept as compact JSON.
func ParseStructured(body []byte) ([]Row, error) {
	dec := json.NewDecoder(bytes.NewReader(decodeText(body)))
	dec.UseNumber()
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, &ParseError{Format: source.FormatStructured, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Format: source.FormatStructured, Err: errors.New("trailing data after root array")}
	}
	if records == nil {
		return nil, &ParseError{Format: source.FormatStructured, Err: fmt.Errorf("root is null, want array of objects")}
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(rec))
		for k, v := range rec {
			row[strings.ToLower(strings.TrimSpace(k))] = flatten(v)
		}
		rows = append(rows, Canonicalize(row))
	}
	return rows, nil
}

func flatten(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			if s := flatten(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, listSep)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
