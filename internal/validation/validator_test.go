package validation

import (
	"testing"

	"quiz-author/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestValidateDraftID(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateDraftID("01HGZ8VNRYXS8QKNJV5GRWPWDQ"))

	errs := v.ValidateDraftID("")
	if assert.Len(t, errs, 1) {
		assert.Equal(t, domain.CodeMissingField, errs[0].Code)
	}

	errs = v.ValidateDraftID("not-a-ulid")
	if assert.Len(t, errs, 1) {
		assert.Equal(t, domain.CodeInvalidFormat, errs[0].Code)
		assert.Equal(t, "draft_id", errs[0].Field)
	}
}

func TestParseIndex(t *testing.T) {
	v := NewValidator()

	n, errs := v.ParseIndex("index", "3")
	assert.Empty(t, errs)
	assert.Equal(t, 3, n)

	_, errs = v.ParseIndex("index", "")
	assert.Equal(t, domain.CodeMissingField, errs[0].Code)

	_, errs = v.ParseIndex("index", "abc")
	assert.Equal(t, domain.CodeInvalidFormat, errs[0].Code)

	_, errs = v.ParseIndex("slot", "-1")
	assert.Equal(t, domain.CodeOutOfRange, errs[0].Code)
}

func TestValidateQuestionType(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateQuestionType("PICTURE_RESPONSE"))
	assert.Empty(t, v.ValidateQuestionType(""))
	assert.Len(t, v.ValidateQuestionType("ESSAY"), 1)
}
