package cloze

import (
	"strings"
	"testing"

	"github.com/MakikoOhashi/lexidrill/internal/slots"
	"github.com/MakikoOhashi/lexidrill/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrimary_PlainSentence(t *testing.T) {
	source := "The weather is sunny and warm today."

	cand, ext, err := BuildPrimary(source, slots.Extraction{})
	require.NoError(t, err)

	assert.Equal(t, types.FormatCloze, cand.Format)
	require.Len(t, cand.Answers, 1)
	// Longest eligible content word wins.
	assert.Equal(t, "weather", cand.Answers[0])
	assert.Contains(t, cand.Text, "_")
	assert.Len(t, cand.Distractors, 3)
	assert.Len(t, ext.Slots, 1)
}

func TestBuildPrimary_SourceWithBlanks(t *testing.T) {
	ext := slots.Extraction{
		DisplayText: "The weather is s____ today.",
		Slots:       []slots.Slot{{Prefix: "s", MissingCount: 4, Start: 15, End: 20}},
		AnswerKey:   []string{"sunny"},
		Source:      slots.SourceRegex,
	}

	cand, got, err := BuildPrimary("The weather is sunny today.", ext)
	require.NoError(t, err)

	assert.Equal(t, ext.DisplayText, cand.Text)
	assert.Equal(t, []string{"sunny"}, cand.Answers)
	assert.Equal(t, ext, got)
}

func TestBuildPrimary_NoBlankableWord(t *testing.T) {
	cand, ext, err := BuildPrimary("So it is.", slots.Extraction{})
	require.NoError(t, err)

	assert.Equal(t, types.FormatShortAnswer, cand.Format)
	assert.Empty(t, cand.Answers)
	assert.Empty(t, ext.Slots)
}

func TestSelectBlankWord(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		exclude []string
		want    string
	}{
		{"longest wins", "A quick brown animal jumped over.", nil, "animal"},
		{"stopwords skipped", "There should never be these.", nil, "never"},
		{"exclusion honored", "The weather is sunny today.", []string{"weather"}, "sunny"},
		{"short words only", "So it is no go.", nil, ""},
		{"punctuation trimmed", "It was splendid, truly.", nil, "splendid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectBlankWord(tt.text, tt.exclude))
		})
	}
}

func TestDistractors_DeterministicAndDistinct(t *testing.T) {
	a := Distractors("sunny")
	b := Distractors("sunny")
	assert.Equal(t, a, b)

	require.Len(t, a, 3)
	seen := map[string]bool{"sunny": true}
	for _, d := range a {
		assert.False(t, seen[strings.ToLower(d)], "distractor %q duplicates", d)
		seen[strings.ToLower(d)] = true
	}
}

func TestDistractors_CasePreserved(t *testing.T) {
	for _, d := range Distractors("Tokyo") {
		assert.Equal(t, strings.ToUpper(d[:1]), d[:1])
	}
}

func TestCarve_MatchesStyle(t *testing.T) {
	cand, ext, err := Carve("The garden was blooming early.", []string{"blooming"}, slots.StylePrefix)
	require.NoError(t, err)

	require.Len(t, ext.Slots, 1)
	assert.Equal(t, "b", ext.Slots[0].Prefix)
	assert.Equal(t, 7, ext.Slots[0].MissingCount)
	assert.Contains(t, cand.Text, "b_______")
}

func TestValidate(t *testing.T) {
	source := "The weather is sunny and warm today."
	mk := func(text string, answers []string) slots.Extraction {
		ext, err := slots.Reconstruct(text, answers, slots.StyleFull)
		require.NoError(t, err)
		return ext
	}

	t.Run("valid candidate passes", func(t *testing.T) {
		ext := mk("The weather is sunny and warm today.", []string{"sunny"})
		assert.NoError(t, Validate(ext, source, 1, 15))
	})

	t.Run("blank count mismatch", func(t *testing.T) {
		ext := mk("The weather is sunny and warm today.", []string{"sunny"})
		err := Validate(ext, source, 2, 15)
		var se *ShapeError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Reason, "expected 2 blanks")
	})

	t.Run("choice markers rejected", func(t *testing.T) {
		ext := slots.Extraction{
			DisplayText: "The weather is _____ now. A) sunny B) rainy",
			Slots:       []slots.Slot{{MissingCount: 5}},
			AnswerKey:   []string{"sunny"},
		}
		err := Validate(ext, source, 1, 15)
		var se *ShapeError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Reason, "choice markers")
	})

	t.Run("trailing blank rejected", func(t *testing.T) {
		ext := mk("The weather is warm and sunny.", []string{"sunny"})
		err := Validate(ext, source, 1, 15)
		var se *ShapeError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Reason, "end of text")
	})

	t.Run("word count drift rejected", func(t *testing.T) {
		long := strings.Repeat("extra padding words here now then ", 10) + "sunny day."
		ext := mk(long, []string{"sunny"})
		err := Validate(ext, source, 1, 15)
		var se *ShapeError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Reason, "word count")
	})
}
