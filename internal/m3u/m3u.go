// Package m3u renders a lineup as an extended M3U playlist.
package m3u

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/snapetech/iptvorg-m3u/internal/lineup"
)

// TimeLayout is the UTC timestamp format used in playlist and stats headers.
const TimeLayout = "2006-01-02 15:04:05"

// Header is the provenance written in the comment line after #EXTM3U.
type Header struct {
	Source    string // e.g. "iptv-org/database"
	Country   string
	Generated time.Time
}

// Write writes the playlist to w. Attribute values are not escaped; commas in
// the display name become spaces so the trailing title stays parseable.
func Write(w io.Writer, entries []lineup.Entry, h Header) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("#EXTM3U\n")
	bw.WriteString("# Source: " + h.Source + " | Country: " + h.Country + " | Generated: " + h.Generated.UTC().Format(TimeLayout) + " UTC\n")
	for _, e := range entries {
		c := e.Channel
		title := strings.ReplaceAll(strings.TrimSpace(c.Name), ",", " ")
		bw.WriteString("#EXTINF:-1 tvg-id=\"" + strings.TrimSpace(c.ID) +
			"\" tvg-name=\"" + title +
			"\" tvg-logo=\"" + strings.TrimSpace(c.Logo) +
			"\" group-title=\"" + strings.TrimSpace(c.Categories) +
			"\"," + title + "\n")
		bw.WriteString(e.URL + "\n")
	}
	return bw.Flush()
}

// Render returns the playlist as bytes.
func Render(entries []lineup.Entry, h Header) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, entries, h)
	return buf.Bytes()
}
