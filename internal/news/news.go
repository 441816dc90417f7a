// Package news proxies city headlines from NewsAPI.org.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/upstream"
)

const (
	newsAPIBaseURL = "https://newsapi.org"
	everythingPath = "/v2/everything"
)

var (
	ErrNotConfigured = errors.New("news API key not configured")
	ErrQueryRequired = errors.New("provide city or locationName")
)

// Article is the trimmed shape returned to clients.
type Article struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
	Source      string  `json:"source"`
	Author      *string `json:"author"`
}

// Result is one page of articles for a city.
type Result struct {
	Articles     []Article `json:"articles"`
	TotalResults int       `json:"totalResults"`
	City         string    `json:"city"`
}

type rawResponse struct {
	TotalResults int `json:"totalResults"`
	Articles     []struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		URL         string  `json:"url"`
		URLToImage  *string `json:"urlToImage"`
		PublishedAt string  `json:"publishedAt"`
		Author      *string `json:"author"`
		Source      *struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Options tune the outbound client. BaseURL is overridden in tests.
type Options struct {
	BaseURL  string
	PageSize int
	Client   upstream.Config
}

// Client fetches the newest English articles mentioning a city.
type Client struct {
	apiKey   string
	pageSize int
	http     *upstream.Client
	logger   *slog.Logger
}

func NewClient(apiKey string, opts Options) *Client {
	cfg := opts.Client
	cfg.Name = "newsapi"
	cfg.BaseURL = opts.BaseURL
	if cfg.BaseURL == "" {
		cfg.BaseURL = newsAPIBaseURL
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiKey:   apiKey,
		pageSize: pageSize,
		http:     upstream.New(cfg),
		logger:   logger.With("provider", cfg.Name),
	}
}

// Query derives the search term: city when given, else the first segment of
// locationName.
func Query(city, locationName string) string {
	if c := common.FirstNonEmpty(city); c != "" {
		return c
	}
	return common.CityFromLabel(locationName)
}

// ForCity returns articles for the city named by city or locationName.
func (c *Client) ForCity(ctx context.Context, city, locationName string) (*Result, error) {
	q := Query(city, locationName)
	if q == "" {
		return nil, ErrQueryRequired
	}
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	values := url.Values{}
	values.Set("q", q)
	values.Set("sortBy", "publishedAt")
	values.Set("pageSize", strconv.Itoa(c.pageSize))
	values.Set("language", "en")
	values.Set("apiKey", c.apiKey)

	body, err := c.http.Get(ctx, everythingPath, values)
	if err != nil {
		c.logger.Warn("news request failed", "query", q, "status", upstream.StatusOf(err), "err", err)
		return nil, err
	}

	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}

	res := &Result{
		Articles:     make([]Article, 0, len(raw.Articles)),
		TotalResults: raw.TotalResults,
		City:         q,
	}
	for _, a := range raw.Articles {
		source := "Unknown"
		if a.Source != nil && a.Source.Name != "" {
			source = a.Source.Name
		}
		res.Articles = append(res.Articles, Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			URLToImage:  a.URLToImage,
			PublishedAt: a.PublishedAt,
			Source:      source,
			Author:      a.Author,
		})
	}
	if res.TotalResults == 0 {
		res.TotalResults = len(res.Articles)
	}
	return res, nil
}
