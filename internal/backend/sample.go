package backend

import (
	"time"

	"github.com/DeafMist/ai-news-dashboard/internal/models"
)

// SamplePosts is a small offline feed, one post per day going back from now.
func SamplePosts(now time.Time) []models.Post {
	day := 24 * time.Hour
	ts := func(back int) string {
		return now.Add(-time.Duration(back) * day).UTC().Format(time.RFC3339)
	}

	return []models.Post{
		{
			ID:        "sample-1",
			Title:     "Reasoning-focused language model tops math benchmarks",
			Summary:   "The newest frontier model targets multi-step logic and mathematical problem solving.",
			Tags:      []string{"Large Language Models (LLMs)", "AI Research"},
			Source:    "OpenAI Blog",
			Platform:  "RSS",
			Timestamp: ts(0),
			URL:       "https://example.com/reasoning-model",
		},
		{
			ID:        "sample-2",
			Title:     "Protein structure prediction speeds up drug discovery",
			Summary:   "Improved structure prediction could shorten drug development timelines by years.",
			Tags:      []string{"AI Applications (e.g. healthcare, finance, education)", "AI Research"},
			Source:    "Google AI Blog",
			Platform:  "RSS",
			Timestamp: ts(1),
			URL:       "https://example.com/protein-folding",
		},
		{
			ID:        "sample-3",
			Title:     "Open-weight model family released to researchers",
			Summary:   "A new open model release lets companies build on it with fewer restrictions.",
			Tags:      []string{"Open-Source AI", "Large Language Models (LLMs)"},
			Source:    "Meta AI",
			Platform:  "Website",
			Timestamp: ts(2),
			URL:       "https://example.com/open-weights",
		},
		{
			ID:        "sample-4",
			Title:     "Safety coalition proposes pre-deployment evaluation framework",
			Summary:   "Guidelines for evaluating large models before release emphasize transparency and risk assessment.",
			Tags:      []string{"AI Ethics & Safety", "AI Policy & Regulation"},
			Source:    "AI Safety Center",
			Platform:  "Website",
			Timestamp: ts(3),
			URL:       "https://example.com/safety-framework",
		},
	}
}
