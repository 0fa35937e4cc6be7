package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/snapetech/iptvorg-m3u/internal/safeurl"
	"github.com/snapetech/iptvorg-m3u/internal/source"
)

const (
	rawBase = "https://raw.githubusercontent.com/iptv-org/database/master"
	apiBase = "https://iptv-org.github.io/api"
)

// DefaultChannelSources are tried in order for channel metadata.
var DefaultChannelSources = []source.Candidate{
	{URL: rawBase + "/data/channels.csv", Format: source.FormatTabular},
	{URL: rawBase + "/channels.csv", Format: source.FormatTabular},
	{URL: apiBase + "/channels.json", Format: source.FormatStructured},
}

// DefaultStreamSources are tried in order for stream metadata. links.csv is
// the name streams.csv was briefly published under.
var DefaultStreamSources = []source.Candidate{
	{URL: rawBase + "/data/streams.csv", Format: source.FormatTabular},
	{URL: rawBase + "/streams.csv", Format: source.FormatTabular},
	{URL: rawBase + "/links.csv", Format: source.FormatTabular},
	{URL: apiBase + "/streams.json", Format: source.FormatStructured},
}

// Config holds everything one build needs. Build one with Load, or take
// Default and edit it in tests.
type Config struct {
	Country     string // ISO 3166-1 alpha-2, upper-cased by Load
	SourceLabel string // written into the playlist header comment

	// Outputs. MetricsPath and SQLitePath are optional ("" = skip).
	PlaylistPath string
	StatsPath    string
	MetricsPath  string
	SQLitePath   string

	// Timeout bounds each download attempt; each fallback candidate gets a fresh one.
	Timeout           time.Duration
	RequestsPerSecond float64 // <0 = unlimited

	AllowedStatuses []string
	ChannelSources  []source.Candidate
	StreamSources   []source.Candidate

	LogLevel  string
	LogFormat string // "text" | "json"

	// Now stamps the run. Nil = time.Now.
	Now func() time.Time
}

// Default returns the built-in configuration: Malaysia, iptv-org mirrors,
// online and geo_blocked streams.
func Default() *Config {
	return &Config{
		Country:           "MY",
		SourceLabel:       "iptv-org/database",
		PlaylistPath:      "playlist_malaysia.m3u",
		StatsPath:         "build_stats.txt",
		Timeout:           30 * time.Second,
		RequestsPerSecond: 5,
		AllowedStatuses:   []string{"online", "geo_blocked"},
		ChannelSources:    append([]source.Candidate(nil), DefaultChannelSources...),
		StreamSources:     append([]source.Candidate(nil), DefaultStreamSources...),
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// fileConfig is the YAML shape of a config file. Omitted keys keep the
// current value.
type fileConfig struct {
	Country           string   `yaml:"country"`
	SourceLabel       string   `yaml:"source_label"`
	Playlist          string   `yaml:"playlist"`
	Stats             string   `yaml:"stats"`
	MetricsTextfile   string   `yaml:"metrics_textfile"`
	SQLite            string   `yaml:"sqlite"`
	Timeout           string   `yaml:"timeout"`
	RequestsPerSecond *float64 `yaml:"requests_per_second"`
	AllowedStatuses   []string `yaml:"allowed_statuses"`
	ChannelSources    []string `yaml:"channel_sources"`
	StreamSources     []string `yaml:"stream_sources"`
	LogLevel          string   `yaml:"log_level"`
	LogFormat         string   `yaml:"log_format"`
}

// Load returns Default overlaid with the YAML file at path (skipped when
// path is "") and then with IPTVORG_M3U_* environment variables. Call
// LoadEnvFile(".env") first to pick up a .env file.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		if err := c.applyFile(path); err != nil {
			return nil, err
		}
	}
	c.applyEnv()
	c.Normalize()
	return c, nil
}

// Normalize upper-cases and trims Country. Call after editing fields by hand.
func (c *Config) Normalize() {
	c.Country = strings.ToUpper(strings.TrimSpace(c.Country))
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	setString(&c.Country, f.Country)
	setString(&c.SourceLabel, f.SourceLabel)
	setString(&c.PlaylistPath, f.Playlist)
	setString(&c.StatsPath, f.Stats)
	setString(&c.MetricsPath, f.MetricsTextfile)
	setString(&c.SQLitePath, f.SQLite)
	setString(&c.LogLevel, f.LogLevel)
	setString(&c.LogFormat, f.LogFormat)
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("config file %s: timeout: %w", path, err)
		}
		c.Timeout = d
	}
	if f.RequestsPerSecond != nil {
		c.RequestsPerSecond = *f.RequestsPerSecond
	}
	if len(f.AllowedStatuses) > 0 {
		c.AllowedStatuses = f.AllowedStatuses
	}
	if len(f.ChannelSources) > 0 {
		c.ChannelSources = parseCandidates(f.ChannelSources)
	}
	if len(f.StreamSources) > 0 {
		c.StreamSources = parseCandidates(f.StreamSources)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Country = getEnv("IPTVORG_M3U_COUNTRY", c.Country)
	c.SourceLabel = getEnv("IPTVORG_M3U_SOURCE_LABEL", c.SourceLabel)
	c.PlaylistPath = getEnv("IPTVORG_M3U_PLAYLIST", c.PlaylistPath)
	c.StatsPath = getEnv("IPTVORG_M3U_STATS", c.StatsPath)
	c.MetricsPath = getEnv("IPTVORG_M3U_METRICS_TEXTFILE", c.MetricsPath)
	c.SQLitePath = getEnv("IPTVORG_M3U_SQLITE", c.SQLitePath)
	c.Timeout = getEnvDuration("IPTVORG_M3U_TIMEOUT", c.Timeout)
	c.RequestsPerSecond = getEnvFloat("IPTVORG_M3U_REQUESTS_PER_SECOND", c.RequestsPerSecond)
	c.LogLevel = getEnv("IPTVORG_M3U_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("IPTVORG_M3U_LOG_FORMAT", c.LogFormat)
	if l := getEnvList("IPTVORG_M3U_ALLOWED_STATUSES"); len(l) > 0 {
		c.AllowedStatuses = l
	}
	if l := getEnvList("IPTVORG_M3U_CHANNEL_SOURCES"); len(l) > 0 {
		c.ChannelSources = parseCandidates(l)
	}
	if l := getEnvList("IPTVORG_M3U_STREAM_SOURCES"); len(l) > 0 {
		c.StreamSources = parseCandidates(l)
	}
}

// Validate reports the first setting that would make a build impossible.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Country) == "":
		return errors.New("config: country is empty")
	case len(c.ChannelSources) == 0:
		return errors.New("config: no channel sources")
	case len(c.StreamSources) == 0:
		return errors.New("config: no stream sources")
	case c.Timeout <= 0:
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	case c.PlaylistPath == "" || c.StatsPath == "":
		return errors.New("config: playlist and stats paths are required")
	}
	for _, cands := range [][]source.Candidate{c.ChannelSources, c.StreamSources} {
		for _, cand := range cands {
			if err := safeurl.Check(cand.URL); err != nil {
				return fmt.Errorf("config: source %w", err)
			}
		}
	}
	return nil
}

// Clock returns c.Now or time.Now.
func (c *Config) Clock() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func parseCandidates(specs []string) []source.Candidate {
	out := make([]source.Candidate, 0, len(specs))
	for _, s := range specs {
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, source.ParseCandidate(s))
	}
	return out
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getEnvList splits a comma-separated variable, dropping blanks.
func getEnvList(key string) []string {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
