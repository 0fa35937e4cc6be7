package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/snapetech/iptvorg-m3u/internal/config"
	"github.com/snapetech/iptvorg-m3u/internal/logging"
	"github.com/snapetech/iptvorg-m3u/internal/source"
)

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	applyFlags(cfg, " sg ", "sg.m3u", "", "", "sg.db", 40*time.Second)
	if cfg.Country != "SG" {
		t.Errorf("Country = %q, want SG", cfg.Country)
	}
	if cfg.PlaylistPath != "sg.m3u" {
		t.Errorf("PlaylistPath = %q", cfg.PlaylistPath)
	}
	if cfg.StatsPath != "build_stats.txt" {
		t.Errorf("StatsPath should keep default, got %q", cfg.StatsPath)
	}
	if cfg.SQLitePath != "sg.db" {
		t.Errorf("SQLitePath = %q", cfg.SQLitePath)
	}
	if cfg.Timeout != 40*time.Second {
		t.Errorf("Timeout = %s", cfg.Timeout)
	}
}

func TestApplyFlags_zeroKeepsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Timeout = 35 * time.Second
	applyFlags(cfg, "", "", "", "", "", 0)
	if cfg.Country != "MY" || cfg.Timeout != 35*time.Second {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
}

func TestRunCheck(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/channels.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("id,name,country\nx,X,MY\n"))
	})
	mux.HandleFunc("/streams.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"channel":"x","url":"http://x"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.Default()
	cfg.RequestsPerSecond = -1
	cfg.ChannelSources = []source.Candidate{{URL: srv.URL + "/channels.csv"}}
	cfg.StreamSources = []source.Candidate{
		{URL: srv.URL + "/streams.csv"},
		{URL: srv.URL + "/streams.json", Format: source.FormatStructured},
	}
	if err := runCheck(context.Background(), cfg, logging.Discard()); err != nil {
		t.Fatalf("runCheck: %v", err)
	}

	cfg.StreamSources = cfg.StreamSources[:1]
	if err := runCheck(context.Background(), cfg, logging.Discard()); err == nil {
		t.Fatal("expected error when no stream source is usable")
	}
}
