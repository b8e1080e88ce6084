// Package feed implements the mention adapter: it pulls an RSS/Atom feed and
// reports items whose titles mention the queried name or username. Feeds are
// not queryable like a search API, so filtering happens locally on the
// fetched items. Each adapter instance covers exactly one feed, so every
// fetch is one outbound unit of work gated by its own admission permit.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"dossier/internal/search/models"
	"dossier/internal/source"
)

// Adapter scans one RSS/Atom feed for attribute mentions.
type Adapter struct {
	client  *http.Client
	parser  *gofeed.Parser
	feedURL string
	logger  *slog.Logger
	// maxItems caps findings per lookup so one chatty feed cannot flood the
	// correlator.
	maxItems int
}

// Option configures an Adapter.
type Option func(*Adapter)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

func WithClient(client *http.Client) Option {
	return func(a *Adapter) {
		if client != nil {
			a.client = client
		}
	}
}

func WithMaxItems(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxItems = n
		}
	}
}

// New creates an adapter for one feed URL.
func New(feedURL string, opts ...Option) *Adapter {
	a := &Adapter{
		client:   &http.Client{Timeout: 15 * time.Second},
		parser:   gofeed.NewParser(),
		feedURL:  feedURL,
		maxItems: 25,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ForFeeds builds one adapter per feed URL with shared options.
func ForFeeds(feeds []string, opts ...Option) []*Adapter {
	adapters := make([]*Adapter, 0, len(feeds))
	for _, f := range feeds {
		adapters = append(adapters, New(f, opts...))
	}
	return adapters
}

func (a *Adapter) Name() string {
	return "feed:" + displayName(a.feedURL)
}

func (a *Adapter) Kinds() []models.AttributeKind {
	return []models.AttributeKind{models.AttributeName, models.AttributeUsername}
}

// Lookup fetches the feed and keeps items whose titles contain all keywords
// of the attribute value.
func (a *Adapter) Lookup(ctx context.Context, attr models.Attribute) ([]models.Finding, error) {
	keywords := keywordsFor(attr.Value)
	if len(keywords) == 0 {
		return nil, nil
	}

	parsed, err := a.fetch(ctx)
	if err != nil {
		category := source.CategoryUnavailable
		if ctx.Err() != nil {
			category = source.CategoryTimeout
		}
		return nil, source.NewSourceError(category, a.Name(), "feed fetch failed", err)
	}

	sourceTitle := strings.TrimSpace(parsed.Title)
	if sourceTitle == "" {
		sourceTitle = a.feedURL
	}

	var findings []models.Finding
	for _, item := range parsed.Items {
		if len(findings) >= a.maxItems {
			break
		}
		if !matchesAllKeywords(strings.ToLower(item.Title), keywords) {
			continue
		}
		findings = append(findings, a.toFinding(item, sourceTitle, attr))
	}
	return findings, nil
}

func (a *Adapter) fetch(ctx context.Context) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned status %d", a.feedURL, resp.StatusCode)
	}
	return a.parser.Parse(resp.Body)
}

func (a *Adapter) toFinding(item *gofeed.Item, sourceTitle string, attr models.Attribute) models.Finding {
	f := models.Finding{
		Title:       strings.TrimSpace(item.Title),
		Description: truncate(strings.TrimSpace(item.Description), 300),
		URL:         strings.TrimSpace(item.Link),
		Source:      "feed:" + sourceTitle,
		Confidence:  models.ConfidenceLow,
	}
	if item.PublishedParsed != nil {
		f.LastSeen = item.PublishedParsed.Format(time.RFC3339)
	} else if item.UpdatedParsed != nil {
		f.LastSeen = item.UpdatedParsed.Format(time.RFC3339)
	}
	switch attr.Kind {
	case models.AttributeUsername:
		f.Username = attr.Value
	case models.AttributeName:
		f.Name = attr.Value
	}
	return f
}

// displayName reduces a feed URL to host+path for adapter naming, keeping
// names unique per feed without dragging the scheme along.
func displayName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return u.Host + strings.TrimSuffix(u.Path, "/")
}

// keywordsFor splits an attribute value into lowercase match tokens, dropping
// tokens under 3 characters to avoid matching on noise like initials.
func keywordsFor(value string) []string {
	var keywords []string
	for _, k := range strings.Fields(strings.ToLower(value)) {
		if len(k) >= 3 {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

func matchesAllKeywords(text string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(text, k) {
			return false
		}
	}
	return true
}

// truncate cuts s to at most n characters on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
