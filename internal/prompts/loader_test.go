package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownPrompts(t *testing.T) {
	for _, key := range []string{"generate-passage", "select-blanks", "repair-slots", "repair-candidate"} {
		prompt, err := Get("cloze.json", key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, prompt)
	}
	for _, key := range []string{"parse-structure", "themed-rewrite", "fixed-passage", "repair-candidate"} {
		prompt, err := Get("choice.json", key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, prompt)
	}
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("cloze.json", "missing-key")
	assert.Error(t, err)
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("nope.json", "generate-passage")
	assert.Error(t, err)
}

func TestFormat_ReplacesPlaceholders(t *testing.T) {
	out := Format("theme {{.Theme}}, count {{.Count}}", map[string]string{
		"Theme": "seasons",
		"Count": "4",
	})
	assert.Equal(t, "theme seasons, count 4", out)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() { MustGet("cloze.json", "missing") })
}
