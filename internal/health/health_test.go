package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapetech/iptvorg-m3u/internal/source"
)

type stubFetcher map[string]string

func (s stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if b, ok := s[url]; ok {
		return []byte(b), nil
	}
	return nil, errors.New("404")
}

func TestCheckSources_ProbesEveryCandidate(t *testing.T) {
	f := stubFetcher{
		"http://a/streams.csv":  "channel,url\nx,http://x\ny,http://y\n",
		"http://c/streams.json": `{"bad": true}`,
	}
	cands := []source.Candidate{
		{URL: "http://a/streams.csv"},
		{URL: "http://b/streams.csv"},
		{URL: "http://c/streams.json", Format: source.FormatStructured},
	}
	got := CheckSources(context.Background(), f, "streams", cands)
	require.Len(t, got, 3)

	assert.True(t, got[0].OK())
	assert.Equal(t, 2, got[0].Rows)
	assert.False(t, got[1].OK())
	assert.False(t, got[2].OK(), "unparseable body is not usable")
	for _, s := range got {
		assert.Equal(t, "streams", s.Resource)
	}
}

func TestCheckSources_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cands := []source.Candidate{{URL: "http://a"}, {URL: "http://b"}}
	got := CheckSources(ctx, stubFetcher{}, "channels", cands)
	assert.Len(t, got, 1)
}

func TestHealthy(t *testing.T) {
	ok := Status{Resource: "channels"}
	bad := Status{Resource: "streams", Err: errors.New("down")}
	assert.NoError(t, Healthy([]Status{ok}))
	assert.NoError(t, Healthy([]Status{bad, {Resource: "streams"}}))

	err := Healthy([]Status{ok, bad, bad})
	require.Error(t, err)
	assert.Equal(t, "no usable source for streams", err.Error())
	assert.NoError(t, Healthy(nil))
}
