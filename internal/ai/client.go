package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"task-tracker-backend/internal/logger"
)

const temperature = 0.1

// Analyzer turns free text into a task draft.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Draft, error)
}

// Client talks to any OpenAI-compatible chat-completion endpoint
// (DeepSeek included) in JSON mode.
type Client struct {
	api   *openai.Client
	model string
	now   func() time.Time
}

type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

func New(o Options) *Client {
	cfg := openai.DefaultConfig(o.APIKey)
	if o.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(o.BaseURL, "/")
	}
	if o.HTTPClient != nil {
		cfg.HTTPClient = o.HTTPClient
	} else {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: o.Model,
		now:   time.Now,
	}
}

func (c *Client) Analyze(ctx context.Context, text string) (Draft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		analyzeCount.WithLabelValues("empty").Inc()
		return Draft{}, ErrEmptyInput
	}

	d, err := c.complete(ctx, text)
	if err != nil {
		analyzeCount.WithLabelValues("failure").Inc()
		logger.Warn(ctx, "ai analyze failed", "text_len", len([]rune(text)), "error", err.Error())
		return Draft{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	outcome := "success"
	if d.Title == Unrecognized {
		outcome = "unrecognized"
	}
	analyzeCount.WithLabelValues(outcome).Inc()
	return d, nil
}

func (c *Client) complete(ctx context.Context, text string) (Draft, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    buildMessages(c.now(), text),
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	analyzeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return Draft{}, err
	}
	if len(resp.Choices) == 0 {
		return Draft{}, errors.New("no choices in response")
	}

	var d Draft
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Choices[0].Message.Content)), &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	if err := d.normalize(); err != nil {
		return Draft{}, err
	}
	return d, nil
}
