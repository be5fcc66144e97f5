package mcq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItem() Structure {
	return Structure{
		Passage:      "The orchard stood empty after the early frost ruined the harvest.",
		Question:     "What most likely happened to the fruit?",
		Choices:      []string{"The frost destroyed it.", "It was sold abroad.", "Birds ate all of it."},
		CorrectIndex: 0,
	}
}

func sourceItem() Structure {
	return Structure{
		Question:     "What most likely happened?",
		Choices:      []string{"The cold ruined the crop.", "Nothing changed.", "It rained."},
		CorrectIndex: 0,
	}
}

func TestValidate_ValidItemPasses(t *testing.T) {
	assert.NoError(t, Validate(validItem(), sourceItem()))
}

func TestValidate_ChoiceCount(t *testing.T) {
	item := validItem()
	item.Choices = item.Choices[:1]
	item.CorrectIndex = 0

	var se *ShapeError
	require.ErrorAs(t, Validate(item, sourceItem()), &se)
	assert.Contains(t, se.Reason, "choice count")
}

func TestValidate_DuplicateChoices(t *testing.T) {
	item := validItem()
	item.Choices[1] = " the frost destroyed it. "

	var se *ShapeError
	require.ErrorAs(t, Validate(item, sourceItem()), &se)
	assert.Contains(t, se.Reason, "duplicates")
}

func TestValidate_MetaChoice(t *testing.T) {
	item := validItem()
	item.Choices[2] = "All of the above."

	var se *ShapeError
	require.ErrorAs(t, Validate(item, sourceItem()), &se)
	assert.Contains(t, se.Reason, "meta-choice")
}

func TestValidate_MixedChoiceShape(t *testing.T) {
	item := validItem()
	item.Choices[2] = "hungry birds"

	var se *ShapeError
	require.ErrorAs(t, Validate(item, sourceItem()), &se)
	assert.Contains(t, se.Reason, "mix phrases")
}

func TestValidate_MissingInferenceCue(t *testing.T) {
	item := validItem()
	item.Question = "What color was the frost?"

	var se *ShapeError
	require.ErrorAs(t, Validate(item, sourceItem()), &se)
	assert.Contains(t, se.Reason, "inference cue")
}

func TestValidate_VerbatimAnswerReuse(t *testing.T) {
	item := validItem()
	item.Choices[0] = "The cold ruined the crop."

	var se *ShapeError
	require.ErrorAs(t, Validate(item, sourceItem()), &se)
	assert.Contains(t, se.Reason, "verbatim")
}

func TestValidate_UngroundedCorrectChoice(t *testing.T) {
	item := validItem()
	item.Choices[0] = "Aliens took everything."

	var se *ShapeError
	require.ErrorAs(t, Validate(item, sourceItem()), &se)
	assert.Contains(t, se.Reason, "no content token")
}

func TestValidate_TrigramCopyCeiling(t *testing.T) {
	item := validItem()
	// Lift a full clause straight out of the passage.
	item.Choices[0] = "The early frost ruined the harvest."

	var se *ShapeError
	require.ErrorAs(t, Validate(item, sourceItem()), &se)
	assert.Contains(t, se.Reason, "3-grams")
}

func TestCheckCombo_NonCJKPasses(t *testing.T) {
	err := CheckCombo(validItem(), "any source", Thresholds{})
	assert.NoError(t, err)
}

func TestCheckCombo_NovelKanji(t *testing.T) {
	item := Structure{
		Question:     "どれが正しいと考えられるか。",
		Choices:      []string{"天気は晴れだった。", "嵐が来た。"},
		CorrectIndex: 0,
	}
	th := Thresholds{NovelKanjiCeiling: 0.35, StatementSimLimit: 0.80, KanjiDensityTarget: 0.55}

	// Source contains none of the kanji terms used in the choices.
	var se *ShapeError
	require.ErrorAs(t, CheckCombo(item, "ここにはまったくちがうことば。", th), &se)
	assert.Contains(t, se.Reason, "novel kanji")
}

func TestCheckCombo_SimilarStatements(t *testing.T) {
	item := Structure{
		Question:     "どれが正しいと考えられるか。",
		Choices:      []string{"天気は晴れだった。", "天気は晴れだったよ。"},
		CorrectIndex: 0,
	}
	th := Thresholds{NovelKanjiCeiling: 1.0, StatementSimLimit: 0.50, KanjiDensityTarget: 0.9}

	var se *ShapeError
	require.ErrorAs(t, CheckCombo(item, "天気 晴 正", th), &se)
	assert.Contains(t, se.Reason, "similar")
}
