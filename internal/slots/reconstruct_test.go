package slots

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstruct_PrefixStyle(t *testing.T) {
	ext, err := Reconstruct("The weather is sunny today.", []string{"sunny"}, StylePrefix)
	require.NoError(t, err)

	assert.Equal(t, "The weather is s____ today.", ext.DisplayText)
	require.Len(t, ext.Slots, 1)
	assert.Equal(t, "s", ext.Slots[0].Prefix)
	assert.Equal(t, 4, ext.Slots[0].MissingCount)
	assert.Equal(t, []string{"sunny"}, ext.AnswerKey)
}

func TestReconstruct_FullStyle(t *testing.T) {
	ext, err := Reconstruct("The weather is sunny today.", []string{"sunny"}, StyleFull)
	require.NoError(t, err)

	assert.Equal(t, "The weather is _____ today.", ext.DisplayText)
	assert.Equal(t, "", ext.Slots[0].Prefix)
	assert.Equal(t, 5, ext.Slots[0].MissingCount)
}

func TestReconstruct_LengthInvariant(t *testing.T) {
	ext, err := Reconstruct("She has a vivid imagination always.", []string{"imagination"}, StyleFull)
	require.NoError(t, err)

	require.Len(t, ext.Slots, 1)
	slot := ext.Slots[0]
	// 11 letters: underscore run capped at 10, one letter spills into the prefix.
	assert.Equal(t, "i", slot.Prefix)
	assert.Equal(t, 10, slot.MissingCount)
	assert.Equal(t, len(ext.AnswerKey[0]), len(slot.Prefix)+slot.MissingCount)
}

func TestReconstruct_MultipleAnswersOrderedByPosition(t *testing.T) {
	ext, err := Reconstruct("A quick brown fox jumps over a lazy dog.", []string{"lazy", "quick"}, StyleFull)
	require.NoError(t, err)

	require.Len(t, ext.Slots, 2)
	assert.Equal(t, []string{"quick", "lazy"}, ext.AnswerKey)
	assert.Less(t, ext.Slots[0].Start, ext.Slots[1].Start)
}

func TestReconstruct_AnswerNotFound(t *testing.T) {
	_, err := Reconstruct("The weather is sunny.", []string{"missing"}, StyleFull)
	assert.Error(t, err)
}

func TestReconstruct_RejectsUnblankableAnswers(t *testing.T) {
	_, err := Reconstruct("I am a person.", []string{"a"}, StyleFull)
	assert.Error(t, err)

	_, err = Reconstruct("It was incomprehensibilities.", []string{"incomprehensibilities"}, StyleFull)
	assert.Error(t, err)
}

func TestReconstruct_PreservesCaseFromText(t *testing.T) {
	ext, err := Reconstruct("Sunny days are rare.", []string{"sunny"}, StylePrefix)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sunny"}, ext.AnswerKey)
	assert.Equal(t, "S", ext.Slots[0].Prefix)
}

func TestRoundTrip_ReconstructThenExtract(t *testing.T) {
	// Reconstructing and re-extracting must yield the same {prefix, missing}
	// pairs in the same order.
	cases := []struct {
		text    string
		answers []string
		style   BlankStyle
	}{
		{"The weather is sunny and warm today.", []string{"sunny", "today"}, StylePrefix},
		{"The weather is sunny and warm today.", []string{"weather"}, StyleFull},
		{"A quick brown fox jumps over a lazy dog.", []string{"quick", "jumps", "lazy"}, StylePrefix},
	}

	e := NewExtractor(nil)
	for _, tc := range cases {
		ext, err := Reconstruct(tc.text, tc.answers, tc.style)
		require.NoError(t, err)

		again := e.Extract(context.Background(), ext.DisplayText, nil)
		require.Len(t, again.Slots, len(ext.Slots), "display: %s", ext.DisplayText)
		for i := range ext.Slots {
			assert.Equal(t, ext.Slots[i].Prefix, again.Slots[i].Prefix)
			assert.Equal(t, ext.Slots[i].MissingCount, again.Slots[i].MissingCount)
		}
	}
}

func TestDetectStyle(t *testing.T) {
	assert.Equal(t, StylePrefix, DetectStyle([]Slot{{Prefix: "s"}}))
	assert.Equal(t, StyleFull, DetectStyle([]Slot{{Prefix: ""}}))
	assert.Equal(t, StyleFull, DetectStyle(nil))
}
