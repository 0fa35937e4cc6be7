// Package stats writes the per-run summary: a three-line text file and,
// optionally, a Prometheus textfile for node_exporter's textfile collector.
package stats

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TimeLayout matches the playlist header timestamp.
const TimeLayout = "2006-01-02 15:04:05"

// RunStats are the counters of one successful build.
type RunStats struct {
	Generated time.Time // UTC, second resolution
	Country   string
	Channels  int // channels matching Country
	Entries   int // streams kept after filtering and dedupe

	// Attempts is the number of source candidates contacted per resource.
	Attempts map[string]int
}

// Write writes the three-line summary.
func Write(w io.Writer, s RunStats) error {
	_, err := fmt.Fprintf(w, "Generated: %s UTC\n%s channels: %d\nStreams kept: %d\n",
		s.Generated.UTC().Format(TimeLayout), strings.ToUpper(s.Country), s.Channels, s.Entries)
	return err
}

// Render returns the summary as bytes.
func Render(s RunStats) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, s)
	return buf.Bytes()
}

const namespace = "iptvorg_m3u"

// Registry returns a private registry holding s as gauges.
func Registry(s RunStats) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"country": strings.ToUpper(s.Country)}

	channels := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "channels",
		Help:        "Channels matching the configured country in the last successful build.",
		ConstLabels: labels,
	})
	entries := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "entries",
		Help:        "Playlist entries written by the last successful build.",
		ConstLabels: labels,
	})
	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "last_success_timestamp_seconds",
		Help:        "Unix time of the last successful build.",
		ConstLabels: labels,
	})
	attempts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_attempts",
		Help:      "Source candidates contacted per resource in the last successful build.",
	}, []string{"resource"})
	reg.MustRegister(channels, entries, lastSuccess, attempts)

	channels.Set(float64(s.Channels))
	entries.Set(float64(s.Entries))
	lastSuccess.Set(float64(s.Generated.Unix()))
	for res, n := range s.Attempts {
		attempts.WithLabelValues(res).Set(float64(n))
	}
	return reg
}

// WriteTextfile writes s in Prometheus text format to path. The file is
// replaced atomically.
func WriteTextfile(path string, s RunStats) error {
	return prometheus.WriteToTextfile(path, Registry(s))
}
