// Command iptvorg-m3u builds a single-country M3U playlist from the iptv-org
// database and writes a short build summary next to it.
//
//	iptvorg-m3u [-config file.yaml] [-country MY] [-out playlist.m3u] [-stats build_stats.txt]
//	iptvorg-m3u -check   probe every source mirror and exit
//
// Settings come from defaults, then the YAML file, then IPTVORG_M3U_*
// environment variables (a .env file in the working directory is read
// first), then flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/snapetech/iptvorg-m3u/internal/config"
	"github.com/snapetech/iptvorg-m3u/internal/health"
	"github.com/snapetech/iptvorg-m3u/internal/httpclient"
	"github.com/snapetech/iptvorg-m3u/internal/logging"
	"github.com/snapetech/iptvorg-m3u/internal/pipeline"
)

func main() {
	_ = config.LoadEnvFile(".env")

	configPath := flag.String("config", os.Getenv("IPTVORG_M3U_CONFIG"), "YAML config file (default: IPTVORG_M3U_CONFIG)")
	country := flag.String("country", "", "Two-letter country code (default: IPTVORG_M3U_COUNTRY or MY)")
	out := flag.String("out", "", "Playlist output path (default: IPTVORG_M3U_PLAYLIST or playlist_malaysia.m3u)")
	statsOut := flag.String("stats", "", "Stats output path (default: IPTVORG_M3U_STATS or build_stats.txt)")
	metricsOut := flag.String("metrics-textfile", "", "Optional Prometheus textfile path")
	sqliteOut := flag.String("sqlite", "", "Optional SQLite export path")
	timeout := flag.Duration("timeout", 0, "Per-request download timeout (default: IPTVORG_M3U_TIMEOUT or 30s)")
	check := flag.Bool("check", false, "Probe every channel and stream source, report, and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "iptvorg-m3u: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg, *country, *out, *statsOut, *metricsOut, *sqliteOut, *timeout)

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *check {
		if err := runCheck(ctx, cfg, log); err != nil {
			log.Errorf("Check failed: %v", err)
			os.Exit(1)
		}
		return
	}

	log.WithField("country", cfg.Country).Info("Downloading iptv-org database")
	rep, err := pipeline.Run(ctx, cfg, pipeline.Options{Log: log})
	if err != nil {
		log.Errorf("Build failed: %v", err)
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"channels_source": rep.ChannelsURL,
		"streams_source":  rep.StreamsURL,
		"stats":           rep.StatsPath,
	}).Infof("OK -> %s (%d streams, %d channels)", rep.PlaylistPath, rep.Stats.Entries, rep.Stats.Channels)
}

// runCheck probes all configured sources and logs one line per candidate.
func runCheck(ctx context.Context, cfg *config.Config, log *logrus.Entry) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	f := httpclient.NewFetcher(httpclient.FetcherConfig{
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Log:               log,
	})
	all := health.CheckSources(ctx, f, pipeline.ResourceChannels, cfg.ChannelSources)
	all = append(all, health.CheckSources(ctx, f, pipeline.ResourceStreams, cfg.StreamSources)...)
	for _, s := range all {
		entry := log.WithFields(logrus.Fields{
			"resource": s.Resource,
			"format":   s.Candidate.Format.String(),
			"url":      s.Candidate.URL,
		})
		if s.OK() {
			entry.Infof("OK (%d rows)", s.Rows)
		} else {
			entry.Warnf("FAIL: %v", s.Err)
		}
	}
	return health.Healthy(all)
}

// applyFlags overlays non-zero flag values on cfg.
func applyFlags(cfg *config.Config, country, out, statsOut, metricsOut, sqliteOut string, timeout time.Duration) {
	if country != "" {
		cfg.Country = country
	}
	if out != "" {
		cfg.PlaylistPath = out
	}
	if statsOut != "" {
		cfg.StatsPath = statsOut
	}
	if metricsOut != "" {
		cfg.MetricsPath = metricsOut
	}
	if sqliteOut != "" {
		cfg.SQLitePath = sqliteOut
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	cfg.Normalize()
}
