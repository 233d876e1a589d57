package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/math-agent/backend/internal/source"
	"github.com/math-agent/backend/pkg/logger"
)

const (
	maxQueryLength = 200
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Client fans a query out to the configured search providers and merges
// their results. A provider failure drops that provider's results; the
// search as a whole fails only when every provider fails.
type Client struct {
	googleAPIKey string
	googleCX     string
	httpClient   *http.Client
	maxResults   int
}

func NewClient(googleAPIKey, googleCX string, maxResults int) *Client {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Client{
		googleAPIKey: googleAPIKey,
		googleCX:     googleCX,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxResults: maxResults,
	}
}

// BuildQuery turns a question and optional topic context into the query sent
// to the providers. The subject keyword is appended when the question does
// not already carry it, and the whole query is capped at maxQueryLength.
func BuildQuery(question, topicContext string) string {
	query := strings.TrimSpace(question)
	if !strings.Contains(strings.ToLower(query), "mathematics") {
		query += " mathematics"
	}
	if topicContext = strings.TrimSpace(topicContext); topicContext != "" {
		query += " " + topicContext
	}
	if len(query) > maxQueryLength {
		query = query[:maxQueryLength]
	}
	return query
}

// Search queries all providers concurrently and returns the merged,
// deduplicated results.
func (c *Client) Search(ctx context.Context, question, topicContext string) ([]source.WebResult, error) {
	query := BuildQuery(question, topicContext)
	logger.Info("Performing web search", zap.String("query", query))

	type provider struct {
		name string
		fn   func(context.Context, string) ([]source.WebResult, error)
	}
	providers := []provider{
		{"duckduckgo", c.searchDuckDuckGo},
	}
	if c.googleAPIKey != "" && c.googleCX != "" {
		providers = append(providers, provider{"google_cse", c.searchGoogleCSE})
	}

	var mu sync.Mutex
	var merged []source.WebResult
	failures := 0

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range providers {
		p := p
		g.Go(func() error {
			results, err := p.fn(gctx, query)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("Search provider failed",
					zap.String("provider", p.name),
					zap.Error(err),
				)
				failures++
				return nil
			}
			merged = append(merged, results...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if failures == len(providers) {
		return nil, fmt.Errorf("all %d search providers failed", len(providers))
	}

	merged = dedupeByURL(merged)
	if len(merged) > c.maxResults {
		merged = merged[:c.maxResults]
	}

	logger.Info("Web search completed", zap.Int("results", len(merged)))
	return merged, nil
}

func (c *Client) searchDuckDuckGo(ctx context.Context, query string) ([]source.WebResult, error) {
	searchURL := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return parseDuckDuckGo(doc, c.maxResults), nil
}

func parseDuckDuckGo(doc *goquery.Document, limit int) []source.WebResult {
	results := make([]source.WebResult, 0, limit)
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Find("a.result__a").Text())
		link, _ := s.Find("a.result__a").Attr("href")
		snippet := strings.TrimSpace(s.Find("a.result__snippet").Text())

		if title == "" || link == "" {
			return true
		}
		results = append(results, source.WebResult{
			Title:   title,
			URL:     cleanDuckDuckGoURL(link),
			Snippet: snippet,
		})
		return len(results) < limit
	})
	return results
}

// cleanDuckDuckGoURL unwraps the redirect links the HTML endpoint serves
// (//duckduckgo.com/l/?uddg=<encoded target>).
func cleanDuckDuckGoURL(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		return "https:" + link
	}
	return link
}

func (c *Client) searchGoogleCSE(ctx context.Context, query string) ([]source.WebResult, error) {
	params := url.Values{}
	params.Set("key", c.googleAPIKey)
	params.Set("cx", c.googleCX)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", c.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.googleapis.com/customsearch/v1?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var searchResp struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]source.WebResult, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		results = append(results, source.WebResult{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

func dedupeByURL(results []source.WebResult) []source.WebResult {
	seen := make(map[string]struct{}, len(results))
	out := results[:0:0]
	for _, r := range results {
		key := strings.ToLower(strings.TrimRight(r.URL, "/"))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
