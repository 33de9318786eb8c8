package validation

import (
	"regexp"
	"strconv"
	"strings"

	"quiz-author/internal/domain"
)

// MaxQuestionIndex bounds path indices; drafts never get near it.
const MaxQuestionIndex = 10000

var validULID = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDraftID validates a draft identifier
func (v *Validator) ValidateDraftID(draftID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(draftID) == "" {
		errors = append(errors, domain.NewMissingFieldError("draft_id"))
	} else if !isValidULID(draftID) {
		errors = append(errors, domain.NewInvalidFormatError("draft_id", draftID))
	}

	return errors
}

// ParseIndex validates a non-negative question or slot index parameter.
func (v *Validator) ParseIndex(field, raw string) (int, domain.ValidationErrors) {
	if strings.TrimSpace(raw) == "" {
		return 0, domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ValidationErrors{domain.NewInvalidFormatError(field, raw)}
	}
	if n < 0 || n > MaxQuestionIndex {
		return 0, domain.ValidationErrors{domain.NewOutOfRangeError(field, n, 0, MaxQuestionIndex)}
	}
	return n, nil
}

// ValidateQuestionType accepts the four selectable types. The empty type is
// accepted as well since it is the "no type" selection.
func (v *Validator) ValidateQuestionType(raw string) domain.ValidationErrors {
	if raw == "" || domain.ParseQuestionType(raw) != domain.TypeNone {
		return nil
	}
	return domain.ValidationErrors{domain.NewInvalidFormatError("type", raw)}
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, Crockford's Base32
	if len(s) != 26 {
		return false
	}
	return validULID.MatchString(s)
}
