// Package profile implements the username adapter: it probes a platform's
// profile URL and reports a finding when the username is claimed there.
// Each adapter instance covers exactly one platform, so every platform check
// is one outbound unit of work gated by its own admission permit.
package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"dossier/internal/search/models"
	"dossier/internal/source"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; dossier/1.0)"

// Platform describes one probe target.
type Platform struct {
	// Name labels findings and status entries, e.g. "github".
	Name string
	// URLTemplate is the profile URL with one %s for the username.
	URLTemplate string
	// ClaimedPattern, when set, must appear in the response body for the
	// profile to count as claimed. Guards against sites that return 200 with
	// a soft "not found" page.
	ClaimedPattern string
}

// Adapter probes a single platform for a claimed username.
type Adapter struct {
	platform Platform
	client   *resty.Client
	logger   *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

// WithClient replaces the HTTP client, e.g. to route through a proxy or to
// point tests at a local server.
func WithClient(client *resty.Client) Option {
	return func(a *Adapter) {
		if client != nil {
			a.client = client
		}
	}
}

// New creates an adapter for one platform.
func New(platform Platform, opts ...Option) *Adapter {
	a := &Adapter{
		platform: platform,
		client: resty.New().
			SetTimeout(10 * time.Second).
			SetHeader("User-Agent", defaultUserAgent),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ForPlatforms builds one adapter per platform with shared options.
func ForPlatforms(platforms []Platform, opts ...Option) []*Adapter {
	adapters := make([]*Adapter, 0, len(platforms))
	for _, p := range platforms {
		adapters = append(adapters, New(p, opts...))
	}
	return adapters
}

func (a *Adapter) Name() string {
	return "profile:" + a.platform.Name
}

func (a *Adapter) Kinds() []models.AttributeKind {
	return []models.AttributeKind{models.AttributeUsername}
}

// Lookup probes the platform's profile URL for the username. A missing
// profile is zero findings, not an error.
func (a *Adapter) Lookup(ctx context.Context, attr models.Attribute) ([]models.Finding, error) {
	probeURL := fmt.Sprintf(a.platform.URLTemplate, url.PathEscape(attr.Value))

	resp, err := a.client.R().SetContext(ctx).Get(probeURL)
	if err != nil {
		category := source.CategoryUnavailable
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			category = source.CategoryTimeout
		}
		return nil, source.NewSourceError(category, a.Name(), "profile probe failed", err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound, code == http.StatusGone:
		return nil, nil
	case code == http.StatusForbidden, code == http.StatusTooManyRequests:
		return nil, source.NewSourceError(source.CategoryBlocked, a.Name(),
			fmt.Sprintf("platform refused probe with status %d", code), nil)
	case code != http.StatusOK:
		return nil, source.NewSourceError(source.CategoryUnavailable, a.Name(),
			fmt.Sprintf("unexpected status %d", code), nil)
	}

	body := resp.Body()
	if a.platform.ClaimedPattern != "" && !bytes.Contains(body, []byte(a.platform.ClaimedPattern)) {
		return nil, nil
	}

	title := pageTitle(body)
	if title == "" {
		title = fmt.Sprintf("%s profile: %s", a.platform.Name, attr.Value)
	}

	return []models.Finding{{
		Title:       title,
		Description: fmt.Sprintf("Username %q is claimed on %s", attr.Value, a.platform.Name),
		URL:         probeURL,
		Source:      a.Name(),
		Confidence:  models.ConfidenceMedium,
		Username:    attr.Value,
	}}, nil
}

// pageTitle pulls the <title> text out of an HTML body; empty on any parse
// trouble since the title is cosmetic.
func pageTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// DefaultPlatforms is the stock probe list. Operators extend it through
// configuration; the set here covers platforms with stable profile URLs.
func DefaultPlatforms() []Platform {
	return []Platform{
		{Name: "github", URLTemplate: "https://github.com/%s"},
		{Name: "gitlab", URLTemplate: "https://gitlab.com/%s"},
		{Name: "reddit", URLTemplate: "https://www.reddit.com/user/%s/"},
		{Name: "hackernews", URLTemplate: "https://news.ycombinator.com/user?id=%s", ClaimedPattern: "created:"},
		{Name: "keybase", URLTemplate: "https://keybase.io/%s"},
		{Name: "mastodon.social", URLTemplate: "https://mastodon.social/@%s"},
	}
}
