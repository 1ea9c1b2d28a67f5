// Package gemini implements llmfetch.Generator using Google Gemini.
package gemini

import (
	"context"
	"math"
	"strings"

	"github.com/fwojciec/llmfetch"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const systemInstruction = "You write XPath expressions for HTML documents. Reply with a single XPath expression and no explanation."

// Ensure Generator implements llmfetch.Generator at compile time.
var _ llmfetch.Generator = (*Generator)(nil)

// Generator implements llmfetch.Generator using the Gemini API.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a new Generator. An empty model selects DefaultModel.
func NewGenerator(client *genai.Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Complete sends prompt to Gemini with the sampling settings from params.
func (g *Generator) Complete(ctx context.Context, prompt string, params llmfetch.GenerateParams) (string, error) {
	if prompt == "" {
		return "", llmfetch.Errorf(llmfetch.EINVALID, "prompt required")
	}
	if err := ValidateSeed(params.Seed); err != nil {
		return "", err
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(params),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", llmfetch.Errorf(llmfetch.EINTERNAL, "gemini returned nil result")
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", llmfetch.Errorf(llmfetch.EINTERNAL, "gemini returned an empty response")
	}
	return text, nil
}

// ValidateSeed returns EINVALID if seed does not fit Gemini's 32-bit seed.
// Truncating instead would let distinct attempts share a seed.
func ValidateSeed(seed int64) error {
	if seed < math.MinInt32 || seed > math.MaxInt32 {
		return llmfetch.Errorf(llmfetch.EINVALID, "seed %d out of range for gemini (32-bit)", seed)
	}
	return nil
}

// BuildConfig translates params into a GenerateContentConfig. The seed must
// pass ValidateSeed.
func BuildConfig(params llmfetch.GenerateParams) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		Temperature:   genai.Ptr(params.Temperature),
		TopP:          genai.Ptr(params.TopP),
		Seed:          genai.Ptr(int32(params.Seed)),
		StopSequences: params.Stop,
	}
	if params.TopK > 0 {
		config.TopK = genai.Ptr(float32(params.TopK))
	}
	if params.MaxTokens > 0 {
		config.MaxOutputTokens = int32(params.MaxTokens)
	}
	return config
}
