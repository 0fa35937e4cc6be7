// Package pipeline runs one playlist build: resolve sources, parse, filter,
// then write outputs.
//
// Outputs are rendered in memory first and only written once every earlier
// stage has succeeded, so a failed run never touches files left by a
// previous successful run.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/snapetech/iptvorg-m3u/internal/config"
	"github.com/snapetech/iptvorg-m3u/internal/export"
	"github.com/snapetech/iptvorg-m3u/internal/httpclient"
	"github.com/snapetech/iptvorg-m3u/internal/iptvorg"
	"github.com/snapetech/iptvorg-m3u/internal/lineup"
	"github.com/snapetech/iptvorg-m3u/internal/m3u"
	"github.com/snapetech/iptvorg-m3u/internal/source"
	"github.com/snapetech/iptvorg-m3u/internal/stats"
)

// Resource names used in logs, errors and metrics.
const (
	ResourceChannels = "channels"
	ResourceStreams  = "streams"
)

// Report describes a successful run.
type Report struct {
	Stats        stats.RunStats
	ChannelsURL  string
	StreamsURL   string
	PlaylistPath string
	StatsPath    string
	Skipped      lineup.Skipped
}

// Options carries dependencies that tests substitute.
type Options struct {
	// Fetcher defaults to an httpclient.Fetcher built from the config.
	Fetcher source.Fetcher
	Log     *logrus.Entry
}

// Run executes one build with cfg.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	country := strings.ToUpper(strings.TrimSpace(cfg.Country))
	log = log.WithField("country", country)

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = httpclient.NewFetcher(httpclient.FetcherConfig{
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Log:               log,
		})
	}
	resolver := &source.Resolver{Fetcher: fetcher, Log: log}

	chRes, chRows, err := resolveAndParse(ctx, resolver, ResourceChannels, cfg.ChannelSources)
	if err != nil {
		return nil, err
	}
	stRes, stRows, err := resolveAndParse(ctx, resolver, ResourceStreams, cfg.StreamSources)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"channels": len(chRows), "streams": len(stRows)}).Info("Parsed database")

	l := lineup.Build(iptvorg.Channels(chRows), iptvorg.Streams(stRows), country, lineup.NewStatusSet(cfg.AllowedStatuses...))
	log.WithFields(logrus.Fields{
		"unknown_channel": l.Skipped.UnknownChannel,
		"empty_url":       l.Skipped.EmptyURL,
		"status":          l.Skipped.Status,
		"duplicate":       l.Skipped.Duplicate,
	}).Debug("Streams skipped")

	generated := cfg.Clock().UTC().Truncate(time.Second)
	rs := stats.RunStats{
		Generated: generated,
		Country:   country,
		Channels:  len(l.Channels),
		Entries:   len(l.Entries),
		Attempts: map[string]int{
			ResourceChannels: chRes.Attempts(),
			ResourceStreams:  stRes.Attempts(),
		},
	}
	playlist := m3u.Render(l.Entries, m3u.Header{Source: cfg.SourceLabel, Country: country, Generated: generated})
	summary := stats.Render(rs)

	if err := writeFiles(
		output{name: "playlist", path: cfg.PlaylistPath, data: playlist},
		output{name: "stats", path: cfg.StatsPath, data: summary},
	); err != nil {
		return nil, err
	}
	if cfg.MetricsPath != "" {
		if err := stats.WriteTextfile(cfg.MetricsPath, rs); err != nil {
			return nil, fmt.Errorf("write metrics textfile: %w", err)
		}
	}
	if cfg.SQLitePath != "" {
		if err := export.WriteSQLite(ctx, cfg.SQLitePath, l.Entries, rs); err != nil {
			return nil, fmt.Errorf("write sqlite export: %w", err)
		}
	}

	return &Report{
		Stats:        rs,
		ChannelsURL:  chRes.URL,
		StreamsURL:   stRes.URL,
		PlaylistPath: cfg.PlaylistPath,
		StatsPath:    cfg.StatsPath,
		Skipped:      l.Skipped,
	}, nil
}

func resolveAndParse(ctx context.Context, r *source.Resolver, resource string, candidates []source.Candidate) (*source.Result, []iptvorg.Row, error) {
	res, err := r.Resolve(ctx, resource, candidates)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", resource, err)
	}
	rows, err := iptvorg.Parse(res.Format, res.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s from %s: %w", resource, res.URL, err)
	}
	return res, rows, nil
}
