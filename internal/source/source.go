// Package source resolves a logical iptv-org resource (channels, streams) to
// the first mirror that answers.
//
// Candidates are tried strictly in the order given. The first successful
// download wins and later candidates are never contacted. Each candidate is
// tagged with the format its body is expected to be in, so the caller can
// pick a parser from the result instead of inferring it from which error
// happened.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Format tags the expected encoding of a candidate's body.
type Format int

const (
	// FormatTabular is delimited text with a header row (iptv-org CSV).
	FormatTabular Format = iota
	// FormatStructured is a JSON array of objects (iptv-org API).
	FormatStructured
)

func (f Format) String() string {
	switch f {
	case FormatTabular:
		return "csv"
	case FormatStructured:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Candidate is one location for a resource.
type Candidate struct {
	URL    string
	Format Format
}

// ParseCandidate accepts "url" (tabular) or "json:url" / "csv:url".
func ParseCandidate(s string) Candidate {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "json:"); ok {
		return Candidate{URL: strings.TrimSpace(rest), Format: FormatStructured}
	}
	if rest, ok := strings.CutPrefix(s, "csv:"); ok {
		return Candidate{URL: strings.TrimSpace(rest), Format: FormatTabular}
	}
	if strings.HasSuffix(strings.ToLower(s), ".json") {
		return Candidate{URL: s, Format: FormatStructured}
	}
	return Candidate{URL: s, Format: FormatTabular}
}

// Attempt records one failed candidate.
type Attempt struct {
	URL string
	Err error
}

// Result is the body of the first candidate that downloaded successfully.
type Result struct {
	Resource string
	Format   Format
	URL      string
	Body     []byte
	// Failed lists the candidates tried before URL, in order.
	Failed []Attempt
}

// Attempts is the number of candidates contacted, including the winner.
func (r *Result) Attempts() int { return len(r.Failed) + 1 }

// AllSourcesFailedError is returned when no candidate for a resource could be
// downloaded. Last is the error from the final candidate.
type AllSourcesFailedError struct {
	Resource  string
	Attempted []string
	Last      error
}

func (e *AllSourcesFailedError) Error() string {
	if len(e.Attempted) == 0 {
		return fmt.Sprintf("%s: no source candidates configured", e.Resource)
	}
	return fmt.Sprintf("%s: all %d sources failed (%s): %v",
		e.Resource, len(e.Attempted), strings.Join(e.Attempted, ", "), e.Last)
}

func (e *AllSourcesFailedError) Unwrap() error { return e.Last }

// Fetcher downloads one URL. *httpclient.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Resolver tries candidates through a Fetcher.
type Resolver struct {
	Fetcher Fetcher
	Log     *logrus.Entry
}

// Resolve downloads the first reachable candidate for resource.
func (r *Resolver) Resolve(ctx context.Context, resource string, candidates []Candidate) (*Result, error) {
	log := r.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("resource", resource)

	var failed []Attempt
	var lastErr error
	for i, c := range candidates {
		log.WithFields(logrus.Fields{"url": c.URL, "format": c.Format}).Infof("Downloading %s (%d/%d)", resource, i+1, len(candidates))
		body, err := r.Fetcher.Fetch(ctx, c.URL)
		if err != nil {
			log.WithField("url", c.URL).Warnf("Source failed: %v", err)
			failed = append(failed, Attempt{URL: c.URL, Err: err})
			lastErr = err
			continue
		}
		if len(failed) > 0 {
			log.WithField("url", c.URL).Infof("Fallback succeeded after %d failed source(s)", len(failed))
		}
		return &Result{Resource: resource, Format: c.Format, URL: c.URL, Body: body, Failed: failed}, nil
	}

	attempted := make([]string, len(failed))
	for i, a := range failed {
		attempted[i] = a.URL
	}
	return nil, &AllSourcesFailedError{Resource: resource, Attempted: attempted, Last: lastErr}
}
