package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/newsdeck/internal/domain"
	"github.com/samvad-hq/newsdeck/internal/logger"
	"github.com/samvad-hq/newsdeck/pkg/httpclient"
)

const (
	// DefaultBaseURL is the public NewsAPI v2 endpoint.
	DefaultBaseURL = "https://newsapi.org/v2/"
	// DefaultCountry scopes top headlines.
	DefaultCountry = "us"

	searchPath    = "everything"
	headlinesPath = "top-headlines"
)

// Enricher fills absent article fields after decoding.
type Enricher interface {
	Enrich(ctx context.Context, articles []domain.Article) []domain.Article
}

// Fetcher is the contract the view controller depends on.
type Fetcher interface {
	Fetch(ctx context.Context, query string, isSearch bool) ([]domain.Article, error)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Country string
	// Timeout bounds each request. Zero keeps the transport default.
	Timeout  time.Duration
	Enricher Enricher
}

// Client fetches article lists from a NewsAPI-compatible endpoint.
type Client struct {
	http     httpclient.Client
	baseURL  string
	apiKey   string
	country  string
	enricher Enricher
	log      logger.Logger
}

// NewClient builds a Client. A nil http client gets a resty client with
// opts.Timeout.
func NewClient(client httpclient.Client, opts Options, log logger.Logger) *Client {
	if client == nil {
		client = httpclient.NewRestyClient(opts.Timeout)
	}

	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	country := strings.ToLower(strings.TrimSpace(opts.Country))
	if country == "" {
		country = DefaultCountry
	}

	return &Client{
		http:     client,
		baseURL:  base,
		apiKey:   strings.TrimSpace(opts.APIKey),
		country:  country,
		enricher: opts.Enricher,
		log:      logger.Ensure(log),
	}
}

// Fetch runs a search when isSearch is set, otherwise it treats query as a
// headline category. Every failure is a *FetchError.
func (c *Client) Fetch(ctx context.Context, query string, isSearch bool) ([]domain.Article, error) {
	endpoint := c.headlinesURL(query)
	if isSearch {
		endpoint = c.searchURL(query)
	}

	c.log.DebugObj("fetching articles", "fetch_start", map[string]any{
		"query":     query,
		"is_search": isSearch,
		"url":       redactKey(endpoint),
	})

	resp, err := c.http.Get(ctx, endpoint, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, statusError(0, fmt.Errorf("http fetch: %w", err))
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, statusError(code, errors.New(apiMessage(body)))
	}

	articles, err := decodeArticles(body)
	if err != nil {
		return nil, decodeError(err)
	}

	if c.enricher != nil && needsEnrichment(articles) {
		articles = c.enricher.Enrich(ctx, articles)
	}

	c.log.DebugObj("fetched articles", "fetch_done", map[string]any{
		"query":     query,
		"is_search": isSearch,
		"count":     len(articles),
	})
	return articles, nil
}

// searchURL builds the "everything sorted by recency" request.
func (c *Client) searchURL(query string) string {
	return c.baseURL + searchPath +
		"?q=" + url.QueryEscape(query) +
		"&sortBy=publishedAt" +
		"&apiKey=" + url.QueryEscape(c.apiKey)
}

// headlinesURL builds the "top headlines by category" request.
func (c *Client) headlinesURL(category string) string {
	return c.baseURL + headlinesPath +
		"?country=" + url.QueryEscape(c.country) +
		"&category=" + url.QueryEscape(category) +
		"&apiKey=" + url.QueryEscape(c.apiKey)
}

type apiResponse struct {
	Status   string            `json:"status"`
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Articles *[]domain.Article `json:"articles"`
}

// decodeArticles parses the response envelope. A missing articles field is
// an error, an empty one is not.
func decodeArticles(body []byte) ([]domain.Article, error) {
	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if raw.Articles == nil {
		if raw.Message != "" {
			return nil, fmt.Errorf("response has no articles field: %s", raw.Message)
		}
		return nil, errors.New("response has no articles field")
	}

	out := make([]domain.Article, 0, len(*raw.Articles))
	for _, a := range *raw.Articles {
		out = append(out, a.WithDefaults())
	}
	return out, nil
}

func needsEnrichment(articles []domain.Article) bool {
	for _, a := range articles {
		if !a.HasImage() || a.Description == "" {
			return true
		}
	}
	return false
}

// apiMessage extracts the error message NewsAPI puts in failed responses,
// falling back to a body snippet.
func apiMessage(body []byte) string {
	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err == nil && raw.Message != "" {
		if raw.Code != "" {
			return raw.Code + ": " + raw.Message
		}
		return raw.Message
	}
	return responseSnippet(body)
}

// responseSnippet returns a truncated snippet of the response body for logging.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// redactKey hides the apiKey query value.
func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Get("apiKey") == "" {
		return raw
	}
	q.Set("apiKey", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}
