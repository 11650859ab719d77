package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Generator turns a prompt into model text.
type Generator interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// ErrNoAPIKey is returned when no generative model is configured.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY is not configured")

// IsConfigError reports whether err points at a missing or rejected API key.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoAPIKey) {
		return true
	}
	msg := strings.ToUpper(err.Error())
	return strings.Contains(msg, "API_KEY") || strings.Contains(msg, "API KEY")
}

// Gemini calls the Gemini API through google.golang.org/genai.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

func (g *Gemini) GenerateReply(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	res, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return res.Text(), nil
}

// Unavailable is the Generator used when no API key is configured.
type Unavailable struct{}

func (Unavailable) GenerateReply(context.Context, string) (string, error) {
	return "", ErrNoAPIKey
}
