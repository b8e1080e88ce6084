package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/internal/search/models"
	"dossier/internal/source"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc, pattern string) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Platform{
		Name:           "testsite",
		URLTemplate:    srv.URL + "/%s",
		ClaimedPattern: pattern,
	})
}

func usernameAttr(v string) models.Attribute {
	return models.Attribute{Kind: models.AttributeUsername, Value: v}
}

func TestLookup_ClaimedProfile(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alice01", r.URL.Path)
		fmt.Fprint(w, `<html><head><title>alice01 on testsite</title></head><body>joined 2020</body></html>`)
	}, "")

	findings, err := a.Lookup(context.Background(), usernameAttr("alice01"))
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "alice01 on testsite", f.Title)
	assert.Equal(t, "profile:testsite", f.Source)
	assert.Equal(t, "alice01", f.Username)
	assert.Equal(t, models.ConfidenceMedium, f.Confidence)
	assert.Contains(t, f.URL, "/alice01")
}

func TestLookup_MissingProfileIsNotAnError(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, "")

	findings, err := a.Lookup(context.Background(), usernameAttr("nobody"))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestLookup_SoftNotFoundFilteredByPattern(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>This page does not exist</body></html>`)
	}, "member since")

	findings, err := a.Lookup(context.Background(), usernameAttr("ghost"))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestLookup_BlockedStatus(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, "")

	_, err := a.Lookup(context.Background(), usernameAttr("alice01"))
	require.Error(t, err)
	assert.Equal(t, source.CategoryBlocked, source.Categorize(err))
	assert.False(t, source.IsRetryable(err))
}

func TestLookup_ServerErrorIsUnavailable(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, "")

	_, err := a.Lookup(context.Background(), usernameAttr("alice01"))
	require.Error(t, err)
	assert.Equal(t, source.CategoryUnavailable, source.Categorize(err))
	assert.True(t, source.IsRetryable(err))
}

func TestLookup_CanceledContextIsTimeout(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Lookup(ctx, usernameAttr("alice01"))
	require.Error(t, err)

	var se *source.SourceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, source.CategoryTimeout, se.Category)
}

func TestForPlatforms_OneAdapterPerPlatform(t *testing.T) {
	adapters := ForPlatforms(DefaultPlatforms())
	require.Len(t, adapters, len(DefaultPlatforms()))
	seen := map[string]bool{}
	for _, a := range adapters {
		assert.False(t, seen[a.Name()], "duplicate adapter name %s", a.Name())
		seen[a.Name()] = true
		assert.Equal(t, []models.AttributeKind{models.AttributeUsername}, a.Kinds())
	}
}
