package m3u

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	jm3u "github.com/jamesnetherton/m3u"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapetech/iptvorg-m3u/internal/iptvorg"
	"github.com/snapetech/iptvorg-m3u/internal/lineup"
)

var generated = time.Date(2026, 10, 19, 8, 30, 5, 0, time.UTC)

func TestRender_Exact(t *testing.T) {
	entries := []lineup.Entry{
		{Channel: iptvorg.Channel{ID: "MYTV1", Name: "MY TV, One", Logo: "http://x/l.png", Categories: "news"}, URL: "http://a"},
		{Channel: iptvorg.Channel{ID: " B.my ", Name: ` Say "Hi" `}, URL: "http://b"},
	}
	got := string(Render(entries, Header{Source: "iptv-org/database", Country: "MY", Generated: generated}))
	want := "#EXTM3U\n" +
		"# Source: iptv-org/database | Country: MY | Generated: 2026-10-19 08:30:05 UTC\n" +
		`#EXTINF:-1 tvg-id="MYTV1" tvg-name="MY TV  One" tvg-logo="http://x/l.png" group-title="news",MY TV  One` + "\n" +
		"http://a\n" +
		`#EXTINF:-1 tvg-id="B.my" tvg-name="Say "Hi"" tvg-logo="" group-title="",Say "Hi"` + "\n" +
		"http://b\n"
	assert.Equal(t, want, got)
}

func TestRender_Empty(t *testing.T) {
	loc := time.FixedZone("MYT", 8*3600)
	got := string(Render(nil, Header{Source: "src", Country: "MY", Generated: time.Date(2026, 1, 1, 8, 0, 0, 0, loc)}))
	assert.Equal(t, "#EXTM3U\n# Source: src | Country: MY | Generated: 2026-01-01 00:00:00 UTC\n", got)
}

func TestRender_ParsesAsM3U(t *testing.T) {
	entries := []lineup.Entry{
		{Channel: iptvorg.Channel{ID: "AstroAwani.my", Name: "Astro Awani", Logo: "http://x/awani.png", Categories: "news"}, URL: "http://a/awani.m3u8"},
		{Channel: iptvorg.Channel{ID: "TV3.my", Name: "TV3", Logo: "http://x/tv3.png", Categories: "general"}, URL: "http://a/tv3.m3u8"},
	}
	path := filepath.Join(t.TempDir(), "playlist.m3u")
	require.NoError(t, os.WriteFile(path, Render(entries, Header{Source: "s", Country: "MY", Generated: generated}), 0o644))

	pl, err := jm3u.Parse(path)
	require.NoError(t, err)
	require.Len(t, pl.Tracks, 2)
	assert.Equal(t, "Astro Awani", pl.Tracks[0].Name)
	assert.Equal(t, "http://a/awani.m3u8", pl.Tracks[0].URI)
	assert.Equal(t, -1, pl.Tracks[0].Length)
	assert.Equal(t, "http://a/tv3.m3u8", pl.Tracks[1].URI)

	tags := map[string]string{}
	for _, tag := range pl.Tracks[1].Tags {
		tags[tag.Name] = tag.Value
	}
	assert.Equal(t, "TV3.my", tags["tvg-id"])
	assert.Equal(t, "general", tags["group-title"])
}
