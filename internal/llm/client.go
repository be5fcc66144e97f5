package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is the text-generation capability consumed by the pipeline. It is
// treated as unreliable: output is never trusted without re-validation, and
// transient unavailability is retried a bounded number of times.
type Client interface {
	// GenerateText generates free text. system may be empty.
	GenerateText(ctx context.Context, prompt, system string, tier ModelTier) (string, error)
	// GenerateJSON generates JSON output with markdown fences stripped.
	GenerateJSON(ctx context.Context, prompt, system string, tier ModelTier) (string, error)
	// GenerateTextFromImage generates text conditioned on an image.
	GenerateTextFromImage(ctx context.Context, prompt string, image []byte, mimeType, system string, tier ModelTier) (string, error)
	// Close releases provider resources.
	Close() error
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &GenerationError{Message: "API key is required"}
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &GenerationError{Message: "failed to create Gemini client", Cause: err}
	}

	return &GeminiClient{client: client, config: config}, nil
}

func (c *GeminiClient) model(tier ModelTier, system string, jsonOutput bool) (*genai.GenerativeModel, error) {
	name := c.config.GetModel(tier)
	if name == "" {
		return nil, &GenerationError{Message: fmt.Sprintf("no model configured for tier %s", tier)}
	}
	model := c.client.GenerativeModel(name)
	model.SetTemperature(0.4)
	if jsonOutput {
		model.SetTemperature(0.1)
		model.ResponseMIMEType = "application/json"
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return model, nil
}

// GenerateText generates free text with bounded retries on transient failures.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt, system string, tier ModelTier) (string, error) {
	model, err := c.model(tier, system, false)
	if err != nil {
		return "", err
	}
	return withRetry(ctx, func() (string, error) {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
		return extractText(resp)
	})
}

// GenerateJSON generates JSON output and strips markdown fences. The result
// is raw text; callers must run it through the schema-validating decode.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt, system string, tier ModelTier) (string, error) {
	model, err := c.model(tier, system, true)
	if err != nil {
		return "", err
	}
	out, err := withRetry(ctx, func() (string, error) {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
		return extractText(resp)
	})
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(out), nil
}

// GenerateTextFromImage generates text conditioned on image bytes, used for
// vision-assisted slot hints on captured worksheets.
func (c *GeminiClient) GenerateTextFromImage(ctx context.Context, prompt string, image []byte, mimeType, system string, tier ModelTier) (string, error) {
	if len(image) == 0 {
		return "", &GenerationError{Message: "image bytes are required"}
	}
	model, err := c.model(tier, system, false)
	if err != nil {
		return "", err
	}
	format := strings.TrimPrefix(mimeType, "image/")
	return withRetry(ctx, func() (string, error) {
		resp, err := model.GenerateContent(ctx, genai.ImageData(format, image), genai.Text(prompt))
		if err != nil {
			return "", err
		}
		return extractText(resp)
	})
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractText flattens the first candidate's text parts.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &GenerationError{Message: "no candidates in response"}
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &GenerationError{Message: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", &GenerationError{Message: "no text parts in response"}
	}
	return strings.Join(parts, ""), nil
}
