package slots

import (
	"context"
	"encoding/json"

	"github.com/MakikoOhashi/lexidrill/internal/llm"
	"github.com/MakikoOhashi/lexidrill/internal/prompts"
	"github.com/MakikoOhashi/lexidrill/internal/schemas"
)

// LLMRepairer asks the text-generation capability to reconstruct slot
// descriptors for text in which no blank pattern could be found. The response
// is constrained to the slot grammar and schema-validated before use.
type LLMRepairer struct {
	client llm.Client
}

// NewLLMRepairer creates a repairer backed by the given generation client.
func NewLLMRepairer(client llm.Client) *LLMRepairer {
	return &LLMRepairer{client: client}
}

// ProposeSlots requests a structured slot repair and re-validates the JSON.
func (r *LLMRepairer) ProposeSlots(ctx context.Context, text string) ([]Hint, error) {
	prompt := prompts.Format(prompts.MustGet("cloze.json", "repair-slots"), map[string]string{
		"Text": text,
	})

	raw, err := r.client.GenerateJSON(ctx, prompt, "", llm.TierLite)
	if err != nil {
		return nil, err
	}

	if err := schemas.Validate(schemas.SlotRepair, raw); err != nil {
		return nil, &llm.MalformedOutputError{Message: "slot repair rejected by schema", Raw: raw, Cause: err}
	}

	var decoded struct {
		Slots []struct {
			Prefix       string `json:"prefix"`
			MissingCount int    `json:"missing_count"`
			Start        *int   `json:"start"`
		} `json:"slots"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, &llm.MalformedOutputError{Message: "slot repair is not valid JSON", Raw: raw, Cause: err}
	}

	hints := make([]Hint, 0, len(decoded.Slots))
	for _, s := range decoded.Slots {
		start := -1
		if s.Start != nil {
			start = *s.Start
		}
		hints = append(hints, Hint{Prefix: s.Prefix, MissingCount: s.MissingCount, Start: start})
	}
	return hints, nil
}
