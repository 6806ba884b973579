package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/DeafMist/ai-news-dashboard/internal/models"
)

// OfflineReply is what the chat shows when the assistant cannot be reached.
const OfflineReply = "I'm currently offline. Please try again later when I'm connected to the server."

// Chat sends a question to the assistant and returns its answer.
func (c *Client) Chat(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("chat: empty question")
	}

	var res struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, "/chat", map[string]string{"question": question}, &res); err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return res.Response, nil
}

// Summarize asks the language model behind the backend for a combined
// summary of the articles matching req.
func (c *Client) Summarize(ctx context.Context, req models.SummaryRequest) (string, error) {
	if len(req.Sources) == 0 {
		return "", errors.New("summarize: at least one source is required")
	}

	var res struct {
		Summary string `json:"summary"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/lm/summarize-articles", req, &res); err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	if res.Error != "" {
		return "", fmt.Errorf("summarize: %s", res.Error)
	}
	if res.Summary == "" {
		return "", errors.New("summarize: unexpected response format")
	}
	return res.Summary, nil
}
