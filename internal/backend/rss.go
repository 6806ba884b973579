package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/DeafMist/ai-news-dashboard/internal/models"
)

// RSSSources lists the feeds configured on the backend.
func (c *Client) RSSSources(ctx context.Context) ([]models.RSSSource, error) {
	var env envelope[[]models.RSSSource]
	if err := c.do(ctx, http.MethodGet, "/rss-sources", nil, &env); err != nil {
		return nil, fmt.Errorf("fetch rss sources: %w", err)
	}
	if err := env.check("/rss-sources"); err != nil {
		return nil, fmt.Errorf("fetch rss sources: %w", err)
	}
	return env.Data, nil
}

// RSSRuns lists past executions of the scraping pipeline.
func (c *Client) RSSRuns(ctx context.Context) ([]models.RSSRun, error) {
	var env envelope[[]models.RSSRun]
	if err := c.do(ctx, http.MethodGet, "/rss-runs", nil, &env); err != nil {
		return nil, fmt.Errorf("fetch rss runs: %w", err)
	}
	if err := env.check("/rss-runs"); err != nil {
		return nil, fmt.Errorf("fetch rss runs: %w", err)
	}
	return env.Data, nil
}

// TriggerScrape starts a background RSS scrape on the backend.
func (c *Client) TriggerScrape(ctx context.Context) (string, error) {
	var res struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/scrape/rss/trigger", nil, &res); err != nil {
		return "", fmt.Errorf("trigger scrape: %w", err)
	}
	return res.Message, nil
}
