// Package lineup selects one country's channels and the streams that play
// them, dropping duplicate (channel, url) pairs.
package lineup

import (
	"strings"

	"github.com/snapetech/iptvorg-m3u/internal/iptvorg"
)

// DefaultAllowedStatuses are the stream statuses kept besides "" (unknown).
var DefaultAllowedStatuses = []string{"online", "geo_blocked"}

// Entry is one playlist line pair.
type Entry struct {
	Channel iptvorg.Channel
	URL     string
}

func (e Entry) key() entryKey { return entryKey{e.Channel.ID, e.URL} }

type entryKey struct{ channelID, url string }

// Skipped counts why streams were left out.
type Skipped struct {
	UnknownChannel int // empty channel ref or channel not selected
	EmptyURL       int
	Status         int // non-empty status outside the allow-list
	Duplicate      int
}

// Lineup is the output of Build.
type Lineup struct {
	// Channels holds the selected channels by ID.
	Channels map[string]iptvorg.Channel
	Entries  []Entry
	Skipped  Skipped
}

// StatusSet is a lower-cased allow-list.
type StatusSet map[string]struct{}

// NewStatusSet lower-cases and trims each status; blanks are ignored.
func NewStatusSet(statuses ...string) StatusSet {
	s := make(StatusSet, len(statuses))
	for _, st := range statuses {
		st = strings.ToLower(strings.TrimSpace(st))
		if st != "" {
			s[st] = struct{}{}
		}
	}
	return s
}

// Allows reports whether a stream with status may be kept. An empty status
// is always allowed.
func (s StatusSet) Allows(status string) bool {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return true
	}
	_, ok := s[status]
	return ok
}

// Build runs SelectChannels, Associate and Dedupe.
func Build(channels []iptvorg.Channel, streams []iptvorg.Stream, country string, allowed StatusSet) Lineup {
	selected := SelectChannels(channels, country)
	assoc, skipped := Associate(selected, streams, allowed)
	entries, dupes := dedupe(assoc)
	skipped.Duplicate = dupes
	return Lineup{Channels: selected, Entries: entries, Skipped: skipped}
}

// SelectChannels returns channels whose country matches (case-insensitive,
// trimmed) and whose ID is non-empty, keyed by ID. A later channel with the
// same ID replaces an earlier one.
func SelectChannels(channels []iptvorg.Channel, country string) map[string]iptvorg.Channel {
	country = strings.ToUpper(strings.TrimSpace(country))
	out := make(map[string]iptvorg.Channel)
	for _, ch := range channels {
		if strings.ToUpper(strings.TrimSpace(ch.Country)) != country {
			continue
		}
		id := strings.TrimSpace(ch.ID)
		if id == "" {
			continue
		}
		ch.ID = id
		out[id] = ch
	}
	return out
}

// Associate pairs each stream with its selected channel, in stream order.
// Streams with no selected channel, an empty URL, or a disallowed status are
// skipped.
func Associate(selected map[string]iptvorg.Channel, streams []iptvorg.Stream, allowed StatusSet) ([]Entry, Skipped) {
	var (
		out     []Entry
		skipped Skipped
	)
	for _, s := range streams {
		id := strings.TrimSpace(s.Channel)
		ch, ok := selected[id]
		if id == "" || !ok {
			skipped.UnknownChannel++
			continue
		}
		u := strings.TrimSpace(s.URL)
		if u == "" {
			skipped.EmptyURL++
			continue
		}
		if !allowed.Allows(s.Status) {
			skipped.Status++
			continue
		}
		out = append(out, Entry{Channel: ch, URL: u})
	}
	return out, skipped
}

// Dedupe keeps the first entry for each (channel ID, URL) pair, preserving
// order. Dedupe(Dedupe(x)) == Dedupe(x).
func Dedupe(entries []Entry) []Entry {
	out, _ := dedupe(entries)
	return out
}

func dedupe(entries []Entry) ([]Entry, int) {
	seen := make(map[entryKey]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	dupes := 0
	for _, e := range entries {
		k := e.key()
		if _, ok := seen[k]; ok {
			dupes++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out, dupes
}
