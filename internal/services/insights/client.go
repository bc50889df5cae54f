package insights

import (
	"context"
	"errors"
	"strings"
	"time"

	commonhttp "prospect-lookup/internal/common/http"
	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/common/metrics"
	"prospect-lookup/internal/models"
)

var ErrInsightUnavailable = errors.New("INSIGHT_UNAVAILABLE")

const unavailableNotice = "AI insights temporarily unavailable."

// Insight is one generated commentary block for a category tab.
type Insight struct {
	Category   models.Category `json:"category"`
	Text       string          `json:"insights"`
	Model      string          `json:"model_used"`
	TokensUsed int             `json:"tokens_used"`
	Status     string          `json:"generation_status"`
}

// chatRequest follows the chat-completions wire format.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Client generates per-category donor commentary through a chat-completions
// API. Generation failure degrades to a static notice; the endpoint never
// fails because the model did.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *commonhttp.Client
	logger  logger.Logger
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    commonhttp.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"component": "ai-insights"}),
	}
}

// Generate produces commentary for one category tab. The returned Insight is
// always usable; the error is informational when Status is "error".
func (c *Client) Generate(ctx context.Context, category models.Category, fullName, city, state string) (*Insight, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: BuildPrompt(category, fullName, city, state)},
		},
		MaxTokens:   1000,
		Temperature: 0.7,
		TopP:        0.9,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	var resp chatResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/chat/completions", headers, req, &resp); err != nil {
		metrics.VendorCalls.WithLabelValues("insights", "error").Inc()
		c.logger.Warn("insight generation failed", map[string]interface{}{
			"category": string(category),
			"error":    err.Error(),
		})
		return &Insight{
			Category: category,
			Text:     unavailableNotice,
			Model:    c.model,
			Status:   "error",
		}, errors.Join(ErrInsightUnavailable, err)
	}

	var text string
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	if text == "" {
		return &Insight{
			Category: category,
			Text:     unavailableNotice,
			Model:    c.model,
			Status:   "error",
		}, ErrInsightUnavailable
	}

	metrics.VendorCalls.WithLabelValues("insights", "success").Inc()
	return &Insight{
		Category:   category,
		Text:       text,
		Model:      c.model,
		TokensUsed: resp.Usage.TotalTokens,
		Status:     "success",
	}, nil
}
