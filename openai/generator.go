// Package openai implements llmfetch.Generator against any OpenAI-compatible
// chat completions endpoint, such as a local llama.cpp server.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fwojciec/llmfetch"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultModel is sent when no model is configured. Local servers usually
// ignore the model name.
const DefaultModel = "local"

// Ensure Generator implements llmfetch.Generator at compile time.
var _ llmfetch.Generator = (*Generator)(nil)

// Config configures a Generator.
type Config struct {
	BaseURL    string       // Optional, defaults to the OpenAI API
	APIKey     string       // Optional for local servers
	Model      string       // Optional, defaults to DefaultModel
	HTTPClient *http.Client // Optional (tests)

	// MaxRetries is the number of SDK-level retries per call. The
	// extraction loop already retries failed attempts, so zero is typical.
	MaxRetries int
}

// Generator implements llmfetch.Generator using the official OpenAI SDK.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator creates a new Generator.
func NewGenerator(cfg Config) *Generator {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Generator{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Complete sends prompt as a single user message. top_k and stop are passed
// as raw body fields because not every compatible server accepts the typed
// forms.
func (g *Generator) Complete(ctx context.Context, prompt string, params llmfetch.GenerateParams) (string, error) {
	if prompt == "" {
		return "", llmfetch.Errorf(llmfetch.EINVALID, "prompt required")
	}

	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(float64(params.Temperature)),
		TopP:        openai.Float(float64(params.TopP)),
		Seed:        openai.Int(params.Seed),
	}
	if params.MaxTokens > 0 {
		body.MaxTokens = openai.Int(int64(params.MaxTokens))
	}

	var opts []option.RequestOption
	if params.TopK > 0 {
		opts = append(opts, option.WithJSONSet("top_k", params.TopK))
	}
	if len(params.Stop) > 0 {
		opts = append(opts, option.WithJSONSet("stop", params.Stop))
	}

	resp, err := g.client.Chat.Completions.New(ctx, body, opts...)
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", llmfetch.Errorf(llmfetch.EINTERNAL, "completion returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", llmfetch.Errorf(llmfetch.EINTERNAL, "completion returned an empty response")
	}
	return text, nil
}

func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("completion error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("completion error (status %d)", apiErr.StatusCode)
	}
	return err
}
