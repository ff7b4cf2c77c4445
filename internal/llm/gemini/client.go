package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/b2breeze/internal/llm"
)

var _ llm.Generator = (*Client)(nil)

// Client implements llm.Generator using Google Gemini.
type Client struct {
	client  *genai.Client
	cfg     Config
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a Gemini API client. No request is made until Generate.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key required")
	}
	cfg = cfg.withDefaults()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &Client{client: client, cfg: cfg, limiter: NewLimiter(cfg.RequestsPerMinute), logger: logger}, nil
}

// NewLimiter returns a token bucket allowing rpm requests per minute with a
// burst of 1. rpm <= 0 disables limiting.
func NewLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
}

func (c *Client) Model() string { return c.cfg.Model }

// Generate sends one prompt and returns the model's text (JSON, given the
// response MIME type).
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("gemini: rate limit wait: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.cfg.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		BuildConfig(system, c.cfg.Temperature),
	)
	if err != nil {
		c.logger.Error("gemini.generate.failed", "model", c.cfg.Model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("gemini: %w", err)
	}
	if result == nil {
		return "", errors.New("gemini: nil result")
	}
	text := strings.TrimSpace(result.Text())
	c.logger.Debug("gemini.generate.ok", "model", c.cfg.Model, "bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds())
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

// BuildConfig returns the GenerateContentConfig for extraction calls.
func BuildConfig(system string, temperature float32) *genai.GenerateContentConfig {
	temp := temperature
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}
