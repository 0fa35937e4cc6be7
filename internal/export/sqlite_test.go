package export

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/snapetech/iptvorg-m3u/internal/iptvorg"
	"github.com/snapetech/iptvorg-m3u/internal/lineup"
	"github.com/snapetech/iptvorg-m3u/internal/stats"
)

func TestWriteSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineup.db")
	entries := []lineup.Entry{
		{Channel: iptvorg.Channel{ID: "a.my", Name: "A", Logo: "http://l/a.png", Categories: "news"}, URL: "http://a/1"},
		{Channel: iptvorg.Channel{ID: "a.my", Name: "A"}, URL: "http://a/2"},
	}
	s := stats.RunStats{Generated: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), Country: "MY", Channels: 1, Entries: 2}
	ctx := context.Background()

	// Two runs: the second must replace, not append.
	for i := 0; i < 2; i++ {
		if err := WriteSQLite(ctx, path, entries, s); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if n != 2 {
		t.Errorf("entries = %d, want 2", n)
	}
	var url string
	if err := db.QueryRow("SELECT url FROM entries WHERE position = 1").Scan(&url); err != nil {
		t.Fatal(err)
	}
	if url != "http://a/1" {
		t.Errorf("position 1 url = %q", url)
	}
	var generated string
	var runs int
	if err := db.QueryRow("SELECT COUNT(*), MAX(generated) FROM runs").Scan(&runs, &generated); err != nil {
		t.Fatal(err)
	}
	if runs != 1 || generated != "2026-10-19 00:00:00" {
		t.Errorf("runs = %d generated = %q", runs, generated)
	}
}
