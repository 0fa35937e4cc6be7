// Package health probes every configured source candidate, not just the
// first one that answers, so a dead mirror is noticed before it is needed.
package health

import (
	"context"
	"fmt"
	"strings"

	"github.com/snapetech/iptvorg-m3u/internal/iptvorg"
	"github.com/snapetech/iptvorg-m3u/internal/source"
)

// Status is the outcome of probing one candidate.
type Status struct {
	Resource  string
	Candidate source.Candidate
	Rows      int
	Err       error
}

// OK reports whether the candidate downloaded and parsed.
func (s Status) OK() bool { return s.Err == nil }

// CheckSources downloads and parses each candidate in order. Unlike
// source.Resolver it does not stop at the first success.
func CheckSources(ctx context.Context, f source.Fetcher, resource string, candidates []source.Candidate) []Status {
	out := make([]Status, 0, len(candidates))
	for _, c := range candidates {
		st := Status{Resource: resource, Candidate: c}
		body, err := f.Fetch(ctx, c.URL)
		if err == nil {
			var rows []iptvorg.Row
			rows, err = iptvorg.Parse(c.Format, body)
			st.Rows = len(rows)
		}
		st.Err = err
		out = append(out, st)
		if ctx.Err() != nil {
			break
		}
	}
	return out
}

// Healthy returns nil if every resource in statuses has at least one usable
// candidate, or an error naming the resources that have none.
func Healthy(statuses []Status) error {
	usable := map[string]bool{}
	var order []string
	for _, s := range statuses {
		if _, seen := usable[s.Resource]; !seen {
			order = append(order, s.Resource)
			usable[s.Resource] = false
		}
		if s.OK() {
			usable[s.Resource] = true
		}
	}
	var dead []string
	for _, r := range order {
		if !usable[r] {
			dead = append(dead, r)
		}
	}
	if len(dead) > 0 {
		return fmt.Errorf("no usable source for %s", strings.Join(dead, ", "))
	}
	return nil
}
