// Package iptvorg decodes the iptv-org community database
// (https://github.com/iptv-org/database) into a single canonical row schema.
//
// # Formats
//
// The database is published two ways and mirrors drift between them:
//
//   - CSV files in the database repo (data/channels.csv, data/streams.csv;
//     older layouts keep them at the repo root, and streams.csv has also been
//     published as links.csv).
//   - JSON arrays from the API (https://iptv-org.github.io/api/channels.json,
//     streams.json).
//
// ParseTabular and ParseStructured both return []Row. Keys are lower-cased
// and field-name synonyms are folded into one canonical key (see
// Canonicalize), so consumers never probe alternative spellings.
package iptvorg

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/snapetech/iptvorg-m3u/internal/source"
)

// Row is one record keyed by canonical field name. Missing fields read as "".
type Row map[string]string

// Canonical field names.
const (
	FieldID         = "id"
	FieldName       = "name"
	FieldCountry    = "country"
	FieldLogo       = "logo"
	FieldCategories = "categories"
	FieldChannel    = "channel"
	FieldURL        = "url"
	FieldStatus     = "status"
)

// synonyms maps an alternative field name to its canonical name.
var synonyms = map[string]string{
	"tvg-id":     FieldID,
	"icon":       FieldLogo,
	"category":   FieldCategories,
	"channel_id": FieldChannel,
}

// Canonicalize folds synonym keys into their canonical key in place. A
// non-blank canonical value is never overwritten; the synonym key is removed
// either way.
func Canonicalize(r Row) Row {
	for alt, canon := range synonyms {
		v, ok := r[alt]
		if !ok {
			continue
		}
		if strings.TrimSpace(r[canon]) == "" {
			r[canon] = v
		}
		delete(r, alt)
	}
	return r
}

// ParseError means a body could not be read in the expected shape.
type ParseError struct {
	Format source.Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes body according to the format it was resolved as.
func Parse(format source.Format, body []byte) ([]Row, error) {
	switch format {
	case source.FormatTabular:
		return ParseTabular(body)
	case source.FormatStructured:
		return ParseStructured(body)
	default:
		return nil, &ParseError{Format: format, Err: fmt.Errorf("unknown format")}
	}
}

// decodeText returns body as valid UTF-8 without a leading BOM. Invalid byte
// sequences become U+FFFD.
func decodeText(body []byte) []byte {
	body = bytes.ToValidUTF8(body, []byte("\uFFFD"))
	return bytes.TrimPrefix(body, []byte("\uFEFF"))
}

// Channel is one record from channels.csv / channels.json. Values are trimmed.
type Channel struct {
	ID         string `json:"id"`         // e.g. "AstroAwani.my"
	Name       string `json:"name"`       // e.g. "Astro Awani"
	Country    string `json:"country"`    // ISO 3166-1 alpha-2, e.g. "MY"
	Logo       string `json:"logo"`       // logo URL
	Categories string `json:"categories"` // ';'-separated, e.g. "general;news"
}

// Stream is one record from streams.csv / streams.json. Values are trimmed.
type Stream struct {
	Channel string `json:"channel"` // Channel.ID this stream plays
	URL     string `json:"url"`
	Status  string `json:"status"` // free text, may be empty
}

// Channels converts rows to channels, preserving order.
func Channels(rows []Row) []Channel {
	out := make([]Channel, len(rows))
	for i, r := range rows {
		out[i] = Channel{
			ID:         r.get(FieldID),
			Name:       r.get(FieldName),
			Country:    r.get(FieldCountry),
			Logo:       r.get(FieldLogo),
			Categories: r.get(FieldCategories),
		}
	}
	return out
}

// Streams converts rows to streams, preserving order.
func Streams(rows []Row) []Stream {
	out := make([]Stream, len(rows))
	for i, r := range rows {
		out[i] = Stream{
			Channel: r.get(FieldChannel),
			URL:     r.get(FieldURL),
			Status:  r.get(FieldStatus),
		}
	}
	return out
}

func (r Row) get(key string) string {
	return strings.TrimSpace(r[key])
}
