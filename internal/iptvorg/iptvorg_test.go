package iptvorg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapetech/iptvorg-m3u/internal/source"
)

func TestParseTabular(t *testing.T) {
	body := "id,name,country,logo,categories\n" +
		`MYTV1.my,"MY TV, One",MY,http://x/l.png,news` + "\n" +
		"Short.my,Short\n" +
		"Long.my,Long,MY,,,extra,columns\n"

	rows, err := ParseTabular([]byte(body))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Row{"id": "MYTV1.my", "name": "MY TV, One", "country": "MY", "logo": "http://x/l.png", "categories": "news"}, rows[0])
	assert.Equal(t, Row{"id": "Short.my", "name": "Short", "country": "", "logo": "", "categories": ""}, rows[1])
	assert.Equal(t, "Long.my", rows[2]["id"])
	assert.Len(t, rows[2], 5)
}

func TestParseTabular_InvalidUTF8AndBOM(t *testing.T) {
	body := append([]byte("\uFEFFid,name\n"), []byte("a.my,Caf\xe9\n")...)
	rows, err := ParseTabular(body)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a.my", rows[0]["id"], "BOM must not leak into the first header key")
	assert.Equal(t, "Caf\uFFFD", rows[0]["name"])
}

func TestParseTabular_Synonyms(t *testing.T) {
	body := "Channel_ID,URL,Status\nmytv1.my,http://a,Online\n"
	rows, err := ParseTabular([]byte(body))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "mytv1.my", rows[0][FieldChannel])
	_, hasAlt := rows[0]["channel_id"]
	assert.False(t, hasAlt)
}

func TestParseTabular_Empty(t *testing.T) {
	_, err := ParseTabular(nil)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, source.FormatTabular, pe.Format)
}

func TestParseTabular_HeaderOnly(t *testing.T) {
	rows, err := ParseTabular([]byte("channel,url,status\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseStructured(t *testing.T) {
	body := `[
		{"channel_id": "MYTV1.my", "url": "http://a", "status": "online", "bitrate": 1500},
		{"channel": null, "url": "http://b"},
		{"id": "X.my", "categories": ["general", "news"], "is_nsfw": false, "extra": {"k": "v"}}
	]`
	rows, err := ParseStructured([]byte(body))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "MYTV1.my", rows[0][FieldChannel])
	assert.Equal(t, "1500", rows[0]["bitrate"])
	assert.Equal(t, "", rows[1][FieldChannel])
	assert.Equal(t, "", rows[1][FieldStatus], "absent key reads as empty")
	assert.Equal(t, "general;news", rows[2][FieldCategories])
	assert.Equal(t, "false", rows[2]["is_nsfw"])
	assert.JSONEq(t, `{"k":"v"}`, rows[2]["extra"])
}

func TestParseStructured_BadRoot(t *testing.T) {
	for _, body := range []string{``, `null`, `{"id":"x"}`, `[1,2]`, `[{"id":`,
		`[{"channel":"a","url":"http://a"}] garbage{`, `[]<html>`, `[] []`} {
		_, err := ParseStructured([]byte(body))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseStructured(%q) err = %v, want *ParseError", body, err)
			continue
		}
		if pe.Format != source.FormatStructured {
			t.Errorf("ParseStructured(%q) format = %v", body, pe.Format)
		}
	}
}

func TestParse_Dispatch(t *testing.T) {
	rows, err := Parse(source.FormatTabular, []byte("channel,url\na,http://a\n"))
	require.NoError(t, err)
	assert.Equal(t, "a", rows[0][FieldChannel])

	rows, err = Parse(source.FormatStructured, []byte(`[{"channel_id":"a","url":"http://a"}]`))
	require.NoError(t, err)
	assert.Equal(t, "a", rows[0][FieldChannel])

	_, err = Parse(source.Format(42), nil)
	assert.Error(t, err)
}

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in, want Row
	}{
		{Row{"tvg-id": "a.my"}, Row{"id": "a.my"}},
		{Row{"id": "a.my", "tvg-id": "b.my"}, Row{"id": "a.my"}},
		{Row{"id": " ", "tvg-id": "b.my"}, Row{"id": "b.my"}},
		{Row{"icon": "http://i", "category": "news"}, Row{"logo": "http://i", "categories": "news"}},
		{Row{"channel": "", "channel_id": "c.my"}, Row{"channel": "c.my"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Canonicalize(c.in))
	}
}

func TestChannelsAndStreams(t *testing.T) {
	chans := Channels([]Row{{"id": " MYTV1.my ", "name": "MY TV", "country": "my", "logo": "l", "categories": "news"}, {}})
	require.Len(t, chans, 2)
	assert.Equal(t, Channel{ID: "MYTV1.my", Name: "MY TV", Country: "my", Logo: "l", Categories: "news"}, chans[0])
	assert.Equal(t, Channel{}, chans[1])

	streams := Streams([]Row{{"channel": "MYTV1.my", "url": " http://a ", "status": "Online"}})
	assert.Equal(t, []Stream{{Channel: "MYTV1.my", URL: "http://a", Status: "Online"}}, streams)
}
