package mcq

import (
	"context"
	"encoding/json"

	"github.com/MakikoOhashi/lexidrill/internal/llm"
	"github.com/MakikoOhashi/lexidrill/internal/prompts"
	"github.com/MakikoOhashi/lexidrill/internal/schemas"
)

// LLMParser is the last-resort structured parse backed by the generation
// capability. Output is schema-validated before decoding; a response that
// fails validation is a malformed-output error, never a partial Structure.
type LLMParser struct {
	client llm.Client
}

func NewLLMParser(client llm.Client) *LLMParser {
	return &LLMParser{client: client}
}

func (p *LLMParser) ParseStructure(ctx context.Context, source string) (Structure, error) {
	prompt := prompts.Format(prompts.MustGet("choice.json", "parse-structure"), map[string]string{
		"Source": source,
	})

	raw, err := p.client.GenerateJSON(ctx, prompt, "", llm.TierLite)
	if err != nil {
		return Structure{}, err
	}

	if err := schemas.Validate(schemas.ChoiceParse, raw); err != nil {
		return Structure{}, &llm.MalformedOutputError{Message: "choice parse response failed validation", Raw: raw, Cause: err}
	}

	var s Structure
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Structure{}, &llm.MalformedOutputError{Message: "choice parse response is not valid JSON", Raw: raw, Cause: err}
	}
	if s.CorrectIndex < 0 || s.CorrectIndex >= len(s.Choices) {
		s.CorrectIndex = 0
	}
	return s, nil
}
