package newsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/newsdeck/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, enricher Enricher) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(nil, Options{BaseURL: srv.URL, APIKey: "secret", Enricher: enricher}, nil)
}

func TestFetchHeadlinesBuildsRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top-headlines", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "us", q.Get("country"))
		assert.Equal(t, "sports", q.Get("category"))
		assert.Equal(t, "secret", q.Get("apiKey"))
		_, _ = w.Write([]byte(`{"status":"ok","totalResults":0,"articles":[]}`))
	}, nil)

	articles, err := c.Fetch(context.Background(), "sports", false)
	require.NoError(t, err)
	assert.Empty(t, articles)
	assert.NotNil(t, articles)
}

func TestFetchSearchBuildsRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "go & rust", q.Get("q"))
		assert.Equal(t, "publishedAt", q.Get("sortBy"))
		assert.Equal(t, "secret", q.Get("apiKey"))
		_, _ = w.Write([]byte(`{"articles":[]}`))
	}, nil)

	_, err := c.Fetch(context.Background(), "go & rust", true)
	require.NoError(t, err)
}

func TestFetchDecodesArticles(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"articles":[
			{"title":"With source","description":"d","url":"https://example.com/1",
			 "urlToImage":"https://example.com/1.jpg","source":{"id":null,"name":"Reuters"},
			 "publishedAt":"2024-01-05T10:00:00Z"},
			{"title":"No source","url":"https://example.com/2","publishedAt":"2024-01-06T00:00:00Z"}
		]}`))
	}, nil)

	articles, err := c.Fetch(context.Background(), "general", false)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "Reuters", articles[0].Source.Name)
	assert.Equal(t, "https://example.com/1.jpg", articles[0].ImageURL)
	assert.Equal(t, time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC), articles[0].PublishedAt.UTC())

	assert.Equal(t, domain.UnknownSource, articles[1].Source.Name)
	assert.Empty(t, articles[1].Description)
	assert.False(t, articles[1].HasImage())
}

func TestFetchKeepsArticlesWithBadDates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"articles":[
			{"title":"Good","url":"https://example.com/1","urlToImage":"https://example.com/1.jpg",
			 "publishedAt":"2024-01-05T10:00:00Z"},
			{"title":"Blank date","url":"https://example.com/2","urlToImage":"https://example.com/2.jpg",
			 "publishedAt":""}
		]}`))
	}, nil)

	articles, err := c.Fetch(context.Background(), "general", false)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.False(t, articles[0].PublishedAt.IsZero())
	assert.Equal(t, "Blank date", articles[1].Title)
	assert.True(t, articles[1].PublishedAt.IsZero())
}

func TestFetchNonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`))
	}, nil)

	_, err := c.Fetch(context.Background(), "general", false)
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindStatus, fe.Kind)
	assert.Equal(t, http.StatusUnauthorized, fe.Status)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.False(t, errors.Is(err, ErrDecode))
	assert.Contains(t, err.Error(), "apiKeyInvalid")
}

func TestFetchMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}, nil)

	_, err := c.Fetch(context.Background(), "general", false)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestFetchMissingArticlesField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","totalResults":3}`))
	}, nil)

	_, err := c.Fetch(context.Background(), "general", false)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindDecode, fe.Kind)
}

func TestFetchNetworkFailureIsStatusKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewClient(nil, Options{BaseURL: base, APIKey: "k"}, nil)
	_, err := c.Fetch(context.Background(), "general", false)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindStatus, fe.Kind)
	assert.Zero(t, fe.Status)
}

type countingEnricher struct{ calls atomic.Int32 }

func (e *countingEnricher) Enrich(_ context.Context, in []domain.Article) []domain.Article {
	e.calls.Add(1)
	out := make([]domain.Article, len(in))
	for i, a := range in {
		if !a.HasImage() {
			a.ImageURL = "https://example.com/filled.jpg"
		}
		out[i] = a
	}
	return out
}

func TestFetchRunsEnricherOnlyWhenNeeded(t *testing.T) {
	complete := `{"articles":[{"title":"t","description":"d","url":"u","urlToImage":"i","publishedAt":"2024-01-05T10:00:00Z"}]}`
	partial := `{"articles":[{"title":"t","url":"u","publishedAt":"2024-01-05T10:00:00Z"}]}`

	enricher := &countingEnricher{}
	full := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(complete))
	}, enricher)
	sparse := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(partial))
	}, enricher)

	_, err := full.Fetch(context.Background(), "general", false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, enricher.calls.Load())

	articles, err := sparse.Fetch(context.Background(), "general", false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, enricher.calls.Load())
	assert.Equal(t, "https://example.com/filled.jpg", articles[0].ImageURL)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(nil, Options{BaseURL: "https://news.example/v2", APIKey: "k"}, nil)
	assert.Equal(t, "https://news.example/v2/top-headlines?country=us&category=health&apiKey=k", c.headlinesURL("health"))
	assert.Equal(t, "https://news.example/v2/everything?q=mars+rover&sortBy=publishedAt&apiKey=k", c.searchURL("mars rover"))

	d := NewClient(nil, Options{}, nil)
	assert.Equal(t, DefaultBaseURL, d.baseURL)
}

func TestRedactKey(t *testing.T) {
	assert.NotContains(t, redactKey("https://x/y?apiKey=secret&q=1"), "secret")
	assert.Equal(t, "https://x/y?q=1", redactKey("https://x/y?q=1"))
}
