package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_SlotRepairAccepted(t *testing.T) {
	doc := `{"slots":[{"prefix":"s","missing_count":4,"start":15}]}`
	assert.NoError(t, Validate(SlotRepair, doc))
}

func TestValidate_SlotRepairRejectsBadPrefix(t *testing.T) {
	doc := `{"slots":[{"prefix":"toolong","missing_count":4}]}`
	err := Validate(SlotRepair, doc)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
}

func TestValidate_SlotRepairRejectsTooManySlots(t *testing.T) {
	doc := `{"slots":[
		{"prefix":"a","missing_count":2},{"prefix":"b","missing_count":2},
		{"prefix":"c","missing_count":2},{"prefix":"d","missing_count":2},
		{"prefix":"e","missing_count":2},{"prefix":"f","missing_count":2},
		{"prefix":"g","missing_count":2}]}`
	var ve *ValidationError
	assert.ErrorAs(t, Validate(SlotRepair, doc), &ve)
}

func TestValidate_BlankSelection(t *testing.T) {
	assert.NoError(t, Validate(BlankSelection, `{"words":["sunny"]}`))
	assert.NoError(t, Validate(BlankSelection, `{"words":["sunny","today"],"rationale":"content words"}`))

	var ve *ValidationError
	assert.ErrorAs(t, Validate(BlankSelection, `{"words":[]}`), &ve)
	assert.ErrorAs(t, Validate(BlankSelection, `{"words":["a"]}`), &ve)
	assert.ErrorAs(t, Validate(BlankSelection, `{"words":["one","two","three"]}`), &ve)
}

func TestValidate_ChoiceRewrite(t *testing.T) {
	doc := `{"question":"Which inference follows?","choices":["a","b","c","d"],"correct_index":1}`
	assert.NoError(t, Validate(ChoiceRewrite, doc))

	var ve *ValidationError
	assert.ErrorAs(t, Validate(ChoiceRewrite, `{"question":"Which inference follows?","choices":["only"],"correct_index":0}`), &ve)
	assert.ErrorAs(t, Validate(ChoiceRewrite, `{"choices":["a","b"],"correct_index":0}`), &ve)
}

func TestValidate_RejectsMalformedJSON(t *testing.T) {
	err := Validate(ChoiceParse, `{"question": "broken`)
	var sle *SchemaLoadError
	assert.ErrorAs(t, err, &sle)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("does_not_exist", `{}`)
	var sle *SchemaLoadError
	assert.ErrorAs(t, err, &sle)
}
