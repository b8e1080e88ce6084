package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/internal/search/models"
	"dossier/internal/source"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Security Digest</title>
    <link>https://digest.example.com</link>
    <item>
      <title>Alice Cooper interviewed about open source</title>
      <link>https://digest.example.com/alice-cooper-interview</link>
      <description>Long form interview.</description>
      <pubDate>Mon, 10 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Unrelated kernel news</title>
      <link>https://digest.example.com/kernel</link>
      <pubDate>Tue, 11 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>alice cooper ships a new tool</title>
      <link>https://digest.example.com/alice-tool</link>
      <pubDate>Wed, 12 Aug 2026 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func nameAttr(v string) models.Attribute {
	return models.Attribute{Kind: models.AttributeName, Value: v}
}

func TestLookup_MatchesAllKeywordsInTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody)
	}))
	defer srv.Close()

	a := New(srv.URL)
	findings, err := a.Lookup(context.Background(), nameAttr("Alice Cooper"))
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, "Alice Cooper interviewed about open source", findings[0].Title)
	assert.Equal(t, "https://digest.example.com/alice-cooper-interview", findings[0].URL)
	assert.Equal(t, "feed:Example Security Digest", findings[0].Source)
	assert.Equal(t, models.ConfidenceLow, findings[0].Confidence)
	assert.Equal(t, "Alice Cooper", findings[0].Name)
	assert.NotEmpty(t, findings[0].LastSeen)
}

func TestLookup_NoMatchesYieldsNoFindings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody)
	}))
	defer srv.Close()

	a := New(srv.URL)
	findings, err := a.Lookup(context.Background(), nameAttr("Bob Nobody"))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestLookup_FeedDownIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := New(srv.URL)
	_, err := a.Lookup(context.Background(), nameAttr("Alice Cooper"))
	require.Error(t, err)
	assert.Equal(t, source.CategoryUnavailable, source.Categorize(err))
}

func TestLookup_MaxItemsCapsFindings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody)
	}))
	defer srv.Close()

	a := New(srv.URL, WithMaxItems(1))
	findings, err := a.Lookup(context.Background(), nameAttr("Alice Cooper"))
	require.NoError(t, err)
	assert.Len(t, findings, 1)
}

func TestLookup_ShortTokensIgnored(t *testing.T) {
	a := New("https://digest.example.com/rss")
	findings, err := a.Lookup(context.Background(), nameAttr("a b"))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestForFeeds_OneAdapterPerFeed(t *testing.T) {
	adapters := ForFeeds([]string{
		"https://digest.example.com/rss",
		"https://news.example.org/feed.xml",
	})
	require.Len(t, adapters, 2)
	assert.Equal(t, "feed:digest.example.com/rss", adapters[0].Name())
	assert.Equal(t, "feed:news.example.org/feed.xml", adapters[1].Name())
	assert.NotEqual(t, adapters[0].Name(), adapters[1].Name())
}

func TestTruncate_KeepsRuneBoundary(t *testing.T) {
	out := truncate(strings.Repeat("é", 10), 4)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 4, utf8.RuneCountInString(out))

	assert.Equal(t, "abc", truncate("abc", 4))
}
