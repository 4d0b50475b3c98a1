package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/newsdeck/internal/domain"
	"github.com/samvad-hq/newsdeck/internal/logger"
	"github.com/samvad-hq/newsdeck/pkg/httpclient"
)

const (
	maxHTMLBodyBytes  = 1 << 20 // 1 MiB
	maxArticleWorkers = 10
	defaultUserAgent  = "newsdeck/1.0"
)

// Options tunes the scraper.
type Options struct {
	Workers      int
	RequestDelay time.Duration
	UserAgent    string
}

// Scraper fills absent article fields from the OpenGraph tags of the
// article page.
type Scraper struct {
	client  httpclient.Client
	log     logger.Logger
	workers int
	delay   time.Duration
	headers map[string]string
}

// NewScraper creates a Scraper. A nil client gets a resty client with a 15s
// timeout.
func NewScraper(client httpclient.Client, opts Options, log logger.Logger) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}

	workers := opts.Workers
	if workers <= 0 || workers > maxArticleWorkers {
		workers = maxArticleWorkers
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Scraper{
		client:  client,
		log:     logger.Ensure(log),
		workers: workers,
		delay:   opts.RequestDelay,
		headers: map[string]string{
			"User-Agent": ua,
			"Accept":     "text/html,application/xhtml+xml",
		},
	}
}

// Enrich returns a copy of articles where each article missing an image or a
// description has been completed from its page. Complete articles are not
// fetched. On cancellation the partial result is returned.
func (s *Scraper) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)

	var jobs []int
	for i, a := range articles {
		if needsMeta(a) && a.URL != "" {
			jobs = append(jobs, i)
		}
	}
	if len(jobs) == 0 {
		return out
	}

	var limiter <-chan time.Time
	if s.delay > 0 {
		ticker := time.NewTicker(s.delay)
		defer ticker.Stop()
		limiter = ticker.C
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup
	for workerID := range min(len(jobs), s.workers) {
		wg.Add(1)
		go s.articleWorker(ctx, articles, out, limiter, jobCh, &wg, workerID)
	}

feed:
	for _, idx := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case jobCh <- idx:
		}
	}
	close(jobCh)
	wg.Wait()

	return out
}

// articleWorker drains jobCh, respecting the shared rate limiter.
func (s *Scraper) articleWorker(
	ctx context.Context,
	articles []domain.Article,
	out []domain.Article,
	limiter <-chan time.Time,
	jobCh <-chan int,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}
		if limiter != nil {
			select {
			case <-ctx.Done():
				return
			case <-limiter:
			}
		}

		art := articles[idx]
		enriched, err := s.fetchAndParse(ctx, art, workerID)
		if err != nil {
			s.log.WarnObj("article metadata scrape failed", "metadata_error", map[string]any{
				"worker_id": workerID,
				"url":       art.URL,
				"error":     err.Error(),
			})
			continue
		}
		out[idx] = enriched
	}
}

// fetchAndParse fetches the article page and fills absent fields.
func (s *Scraper) fetchAndParse(ctx context.Context, art domain.Article, workerID int) (domain.Article, error) {
	s.log.DebugObj("scraping article metadata", "scrape_start", map[string]any{
		"worker_id": workerID,
		"url":       art.URL,
	})

	resp, err := s.client.Get(ctx, art.URL, s.headers)
	if err != nil {
		return art, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return art, fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return art, err
	}
	return meta.fill(art), nil
}

func needsMeta(a domain.Article) bool {
	return !a.HasImage() || a.Description == ""
}

// pageMeta holds metadata extracted from an HTML page.
type pageMeta struct {
	Title       string
	Description string
	ImageURL    string
}

// fill copies metadata into the article's absent fields only.
func (m pageMeta) fill(art domain.Article) domain.Article {
	if art.Title == "" {
		art.Title = m.Title
	}
	if art.Description == "" {
		art.Description = m.Description
	}
	if !art.HasImage() && m.ImageURL != "" {
		art.ImageURL = resolveURL(m.ImageURL, art.URL)
	}
	return art
}

// parseMeta extracts page metadata from the HTML body.
func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	content := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Title: firstNonEmpty(
			content(`meta[property="og:title"]`),
			doc.Find("title").First().Text(),
		),
		Description: firstNonEmpty(
			content(`meta[property="og:description"]`),
			content(`meta[name="description"]`),
		),
		ImageURL: firstNonEmpty(
			content(`meta[property="og:image"]`),
			content(`meta[name="twitter:image"]`),
		),
	}, nil
}

// firstNonEmpty returns the first non-blank value, trimmed.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// resolveURL resolves a possibly relative URL against base.
func resolveURL(raw, base string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(parsed).String()
}
