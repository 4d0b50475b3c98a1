package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/newsdeck/internal/domain"
)

const articlePage = `<!doctype html><html><head>
<title> Page title </title>
<meta property="og:description" content=" From the page ">
<meta property="og:image" content="/images/lead.jpg">
</head><body></body></html>`

func TestParseMeta(t *testing.T) {
	meta, err := parseMeta([]byte(articlePage))
	require.NoError(t, err)
	assert.Equal(t, "Page title", meta.Title)
	assert.Equal(t, "From the page", meta.Description)
	assert.Equal(t, "/images/lead.jpg", meta.ImageURL)
}

func TestEnrichFillsOnlyAbsentFields(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "newsdeck-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	in := []domain.Article{
		{Title: "Keep", URL: srv.URL + "/a/1", Description: "Own description"},
		{Title: "Complete", URL: srv.URL + "/a/2", Description: "d", ImageURL: "https://cdn/x.jpg"},
		{Title: "Bare", URL: srv.URL + "/a/3"},
	}

	s := NewScraper(nil, Options{UserAgent: "newsdeck-test"}, nil)
	out := s.Enrich(context.Background(), in)
	require.Len(t, out, 3)

	assert.Equal(t, "Own description", out[0].Description)
	assert.Equal(t, srv.URL+"/images/lead.jpg", out[0].ImageURL)
	assert.Equal(t, "Keep", out[0].Title)

	assert.Equal(t, in[1], out[1])

	assert.Equal(t, "From the page", out[2].Description)
	assert.Equal(t, srv.URL+"/images/lead.jpg", out[2].ImageURL)

	assert.EqualValues(t, 2, hits.Load())
	assert.Empty(t, in[2].ImageURL, "input must not be mutated")
}

func TestEnrichKeepsArticleOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	in := []domain.Article{{Title: "Gone", URL: srv.URL + "/gone"}}
	out := NewScraper(nil, Options{}, nil).Enrich(context.Background(), in)
	assert.Equal(t, in, out)
}

func TestEnrichCancelledReturnsInput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := []domain.Article{{Title: "x", URL: "http://127.0.0.1:1/never"}}
	out := NewScraper(nil, Options{Workers: 1}, nil).Enrich(ctx, in)
	assert.Equal(t, in, out)
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "https://example.com/img/a.jpg", resolveURL("/img/a.jpg", "https://example.com/news/1"))
	assert.Equal(t, "https://cdn.example.com/a.jpg", resolveURL("https://cdn.example.com/a.jpg", "https://example.com"))
}

func TestNewScraperClampsWorkers(t *testing.T) {
	assert.Equal(t, maxArticleWorkers, NewScraper(nil, Options{Workers: 50}, nil).workers)
	assert.Equal(t, 3, NewScraper(nil, Options{Workers: 3}, nil).workers)
	assert.Equal(t, defaultUserAgent, NewScraper(nil, Options{}, nil).headers["User-Agent"])
}
