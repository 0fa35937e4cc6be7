package iptvorg

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/snapetech/iptvorg-m3u/internal/source"
)

// ParseTabular decodes a CSV body with a header row. Columns past the header
// are ignored and short rows read missing columns as "".
func ParseTabular(body []byte) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(decodeText(body)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Format: source.FormatTabular, Err: errors.New("empty body: no header row")}
	}
	if err != nil {
		return nil, &ParseError{Format: source.FormatTabular, Err: fmt.Errorf("header: %w", err)}
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Format: source.FormatTabular, Err: err}
		}
		row := make(Row, len(keys))
		for i, k := range keys {
			if i < len(rec) {
				row[k] = rec[i]
			} else {
				row[k] = ""
			}
		}
		rows = append(rows, Canonicalize(row))
	}
	return rows, nil
}
