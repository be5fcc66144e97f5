package mcq

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MakikoOhashi/lexidrill/internal/llm"
	"github.com/MakikoOhashi/lexidrill/internal/prompts"
	"github.com/MakikoOhashi/lexidrill/internal/schemas"
)

// BuildPrimary is the deterministic structural baseline for the choice task:
// the source item with its choices rotated. It rarely clears the verbatim
// answer check on its own; it exists so the ladder always has a structurally
// valid starting point.
func BuildPrimary(source Structure) Structure {
	n := len(source.Choices)
	if n < 2 {
		return source
	}

	sum := sha256.Sum256([]byte(source.Question + strings.Join(source.Choices, "\n")))
	shift := int(binary.BigEndian.Uint32(sum[:4])%uint32(n-1)) + 1

	rotated := make([]string, n)
	for i, c := range source.Choices {
		rotated[(i+shift)%n] = c
	}

	return Structure{
		Passage:      source.Passage,
		Question:     source.Question,
		Choices:      rotated,
		CorrectIndex: (source.CorrectIndex + shift) % n,
	}
}

// Rewriter requests themed rewrites and minimal repairs from the generation
// capability. All output goes through the schema gate before decoding.
type Rewriter struct {
	client llm.Client
}

func NewRewriter(client llm.Client) *Rewriter {
	return &Rewriter{client: client}
}

type rewriteResponse struct {
	Structure
	ReasoningSteps []string `json:"reasoning_steps"`
}

// ThemedRewrite produces a fresh item on the given theme, modeled on the
// source's structure. A non-empty fixedPassage pins the passage so its length
// cannot drift during the rewrite.
func (r *Rewriter) ThemedRewrite(ctx context.Context, source Structure, theme, fixedPassage string) (Structure, []string, error) {
	passageConstraint := ""
	if fixedPassage != "" {
		passageConstraint = fmt.Sprintf("- Use exactly this passage, unchanged: %q\n", fixedPassage)
	}

	prompt := prompts.Format(prompts.MustGet("choice.json", "themed-rewrite"), map[string]string{
		"Theme":             theme,
		"Source":            Render(source),
		"ChoiceCount":       strconv.Itoa(len(source.Choices)),
		"CorrectChoice":     source.Choices[source.CorrectIndex],
		"PassageConstraint": passageConstraint,
	})

	raw, err := r.client.GenerateJSON(ctx, prompt, "", llm.TierStandard)
	if err != nil {
		return Structure{}, nil, err
	}
	return decodeRewrite(raw)
}

// FixedPassage pre-generates a passage at a pinned word count, separately
// from the item rewrite, so passage length cannot drift.
func (r *Rewriter) FixedPassage(ctx context.Context, theme, language string, targetWords int) (string, error) {
	prompt := prompts.Format(prompts.MustGet("choice.json", "fixed-passage"), map[string]string{
		"Theme":       theme,
		"Language":    language,
		"TargetWords": strconv.Itoa(targetWords),
	})
	out, err := r.client.GenerateText(ctx, prompt, "", llm.TierLite)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RepairCandidate asks for a minimal surface rewrite of an item that sits too
// close to its reference, preserving structure.
func (r *Rewriter) RepairCandidate(ctx context.Context, item Structure, reference string) (Structure, error) {
	prompt := prompts.Format(prompts.MustGet("choice.json", "repair-candidate"), map[string]string{
		"Item":   Render(item),
		"Source": reference,
	})

	raw, err := r.client.GenerateJSON(ctx, prompt, "", llm.TierAdvanced)
	if err != nil {
		return Structure{}, err
	}
	s, _, err := decodeRewrite(raw)
	return s, err
}

func decodeRewrite(raw string) (Structure, []string, error) {
	if err := schemas.Validate(schemas.ChoiceRewrite, raw); err != nil {
		return Structure{}, nil, &llm.MalformedOutputError{Message: "rewrite response failed validation", Raw: raw, Cause: err}
	}
	var resp rewriteResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return Structure{}, nil, &llm.MalformedOutputError{Message: "rewrite response is not valid JSON", Raw: raw, Cause: err}
	}
	if resp.CorrectIndex < 0 || resp.CorrectIndex >= len(resp.Choices) {
		return Structure{}, nil, &llm.MalformedOutputError{Message: "rewrite correct index out of range", Raw: raw}
	}
	return resp.Structure, resp.ReasoningSteps, nil
}

// Render flattens a Structure back into display text: passage, question, then
// labeled choices. Also used as the similarity-comparison surface.
func Render(s Structure) string {
	var sb strings.Builder
	if s.Passage != "" {
		sb.WriteString(s.Passage)
		sb.WriteString("\n\n")
	}
	sb.WriteString(s.Question)
	for i, c := range s.Choices {
		sb.WriteString(fmt.Sprintf("\n%c) %s", 'A'+i, c))
	}
	return sb.String()
}
