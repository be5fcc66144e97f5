package mcq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MakikoOhashi/lexidrill/internal/llm"
)

// recordingClient captures the tier of each call and returns canned output.
type recordingClient struct {
	jsonTier llm.ModelTier
	textTier llm.ModelTier
	json     string
	text     string
}

func (c *recordingClient) GenerateText(_ context.Context, _, _ string, tier llm.ModelTier) (string, error) {
	c.textTier = tier
	return c.text, nil
}

func (c *recordingClient) GenerateJSON(_ context.Context, _, _ string, tier llm.ModelTier) (string, error) {
	c.jsonTier = tier
	return c.json, nil
}

func (c *recordingClient) GenerateTextFromImage(_ context.Context, _ string, _ []byte, _, _ string, _ llm.ModelTier) (string, error) {
	return "", &llm.GenerationError{Message: "not stubbed"}
}

func (c *recordingClient) Close() error { return nil }

const rewriteJSON = `{"passage": "", "question": "What changed at the dock?", "choices": ["Shipments stopped.", "Fees doubled.", "Cranes arrived."], "correct_index": 0, "reasoning_steps": []}`

func testItem() Structure {
	return Structure{
		Question:     "What happened at the harbor?",
		Choices:      []string{"Traffic halted.", "Tides rose.", "Lights dimmed."},
		CorrectIndex: 0,
	}
}

func TestRepairCandidate_UsesAdvancedTier(t *testing.T) {
	client := &recordingClient{json: rewriteJSON}
	r := NewRewriter(client)

	got, err := r.RepairCandidate(context.Background(), testItem(), "reference text")
	require.NoError(t, err)
	assert.Equal(t, llm.TierAdvanced, client.jsonTier)
	assert.Equal(t, "What changed at the dock?", got.Question)
}

func TestThemedRewrite_UsesStandardTier(t *testing.T) {
	client := &recordingClient{json: rewriteJSON}
	r := NewRewriter(client)

	_, _, err := r.ThemedRewrite(context.Background(), testItem(), "the docks", "")
	require.NoError(t, err)
	assert.Equal(t, llm.TierStandard, client.jsonTier)
}

func TestRepairCandidate_OutOfRangeIndexRejected(t *testing.T) {
	client := &recordingClient{json: `{"passage": "", "question": "What happened here?", "choices": ["a", "b"], "correct_index": 5, "reasoning_steps": []}`}
	r := NewRewriter(client)

	_, err := r.RepairCandidate(context.Background(), testItem(), "reference")
	var malformed *llm.MalformedOutputError
	require.ErrorAs(t, err, &malformed)
}
