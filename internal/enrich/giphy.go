package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultGiphyURL = "https://api.giphy.com"

// ImageSearcher finds at most one image for a search term. An empty URL with
// a nil error means nothing matched.
type ImageSearcher interface {
	Search(ctx context.Context, term string) (string, error)
}

type GiphySearcher struct {
	apiKey  string
	baseURL string
	rating  string
	client  *http.Client
}

// NewGiphySearcher returns nil when no API key is configured.
func NewGiphySearcher(apiKey, rating string) *GiphySearcher {
	if apiKey == "" {
		return nil
	}
	if rating == "" {
		rating = "g"
	}
	return &GiphySearcher{
		apiKey:  apiKey,
		baseURL: DefaultGiphyURL,
		rating:  rating,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// WithBaseURL points the searcher at another host, used by tests.
func (g *GiphySearcher) WithBaseURL(baseURL string) *GiphySearcher {
	g.baseURL = strings.TrimRight(baseURL, "/")
	return g
}

type giphySearchResponse struct {
	Data []struct {
		Images struct {
			FixedHeight struct {
				URL string `json:"url"`
			} `json:"fixed_height"`
		} `json:"images"`
	} `json:"data"`
}

func (g *GiphySearcher) Search(ctx context.Context, term string) (string, error) {
	term = strings.TrimSpace(term)
	if g == nil || term == "" {
		return "", nil
	}

	q := url.Values{}
	q.Set("api_key", g.apiKey)
	q.Set("q", term)
	q.Set("limit", "1")
	q.Set("offset", "0")
	q.Set("rating", g.rating)
	q.Set("lang", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/gifs/search?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("giphy search: unexpected status %d", resp.StatusCode)
	}

	var body giphySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("giphy search: %w", err)
	}
	if len(body.Data) == 0 {
		return "", nil
	}
	return body.Data[0].Images.FixedHeight.URL, nil
}
