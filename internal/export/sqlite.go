// Package export writes a built lineup to a SQLite file for downstream tools
// that prefer querying over parsing M3U. The file is rebuilt on every run and
// never read back by the builder.
package export

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/snapetech/iptvorg-m3u/internal/lineup"
	"github.com/snapetech/iptvorg-m3u/internal/stats"
)

var schema = []string{
	`DROP TABLE IF EXISTS entries`,
	`DROP TABLE IF EXISTS runs`,
	`CREATE TABLE entries (
		position   INTEGER PRIMARY KEY,
		channel_id TEXT NOT NULL,
		name       TEXT NOT NULL,
		logo       TEXT NOT NULL,
		categories TEXT NOT NULL,
		url        TEXT NOT NULL,
		UNIQUE (channel_id, url)
	)`,
	`CREATE TABLE runs (
		generated TEXT NOT NULL,
		country   TEXT NOT NULL,
		channels  INTEGER NOT NULL,
		entries   INTEGER NOT NULL
	)`,
}

// WriteSQLite replaces the entries and runs tables in the database at path
// (created if missing) inside one transaction.
func WriteSQLite(ctx context.Context, path string, entries []lineup.Entry, s stats.RunStats) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}

	ins, err := tx.PrepareContext(ctx, `INSERT INTO entries (position, channel_id, name, logo, categories, url) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer ins.Close()
	for i, e := range entries {
		c := e.Channel
		if _, err := ins.ExecContext(ctx, i+1, c.ID, c.Name, c.Logo, c.Categories, e.URL); err != nil {
			return fmt.Errorf("insert entry %d: %w", i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (generated, country, channels, entries) VALUES (?, ?, ?, ?)`,
		s.Generated.UTC().Format(stats.TimeLayout), s.Country, s.Channels, s.Entries); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return tx.Commit()
}
