package validation

import (
	"fmt"
	"strings"

	"quiz-author/internal/domain"
)

const (
	CodeQuestionTextRequired ErrorCode = "QUESTION_TEXT_REQUIRED"
	CodeOptionTextRequired   ErrorCode = "OPTION_TEXT_REQUIRED"
	CodeNoCorrectOption      ErrorCode = "NO_CORRECT_OPTION"
	CodeNoIncorrectOption    ErrorCode = "NO_INCORRECT_OPTION"
	CodeBlankAnswerRequired  ErrorCode = "BLANK_ANSWER_REQUIRED"
	CodeImageRequired        ErrorCode = "IMAGE_REQUIRED"
	CodeAnswerRequired       ErrorCode = "ANSWER_REQUIRED"
)

// ErrorCode names the rule a question broke.
type ErrorCode = domain.ErrorCode

// SubmissionValidator gates a quiz form before it is forwarded.
type SubmissionValidator struct {
	// AnswerChecks applies the fill-in-the-blank and picture-response rules
	// to questions of those types. Without it those rules sit behind the
	// multiple choice branch and never fire.
	AnswerChecks bool
}

// NewSubmissionValidator creates a validator.
func NewSubmissionValidator(answerChecks bool) *SubmissionValidator {
	return &SubmissionValidator{AnswerChecks: answerChecks}
}

// Validate walks question indices in ascending order, skipping deleted
// ones, and returns the first violation. Later questions are not checked.
func (v *SubmissionValidator) Validate(form *domain.QuizForm) *domain.SubmissionError {
	for i := 0; i < form.NextIndex; i++ {
		q, ok := form.Question(i)
		if !ok {
			continue
		}
		if err := v.validateQuestion(q); err != nil {
			return err
		}
	}
	return nil
}

func (v *SubmissionValidator) validateQuestion(q *domain.Question) *domain.SubmissionError {
	if isBlank(q.Text) {
		return failure(q, CodeQuestionTextRequired, "Question text is required.")
	}

	if q.Type == domain.TypeMultipleChoice {
		if err := validateMultipleChoice(q); err != nil {
			return err
		}
		return validateAnswers(q)
	}

	if v.AnswerChecks {
		return validateAnswers(q)
	}
	return nil
}

func validateMultipleChoice(q *domain.Question) *domain.SubmissionError {
	var total, checked int
	for _, s := range q.Slots {
		if s.Kind != domain.SlotOption {
			continue
		}
		if isBlank(s.Text) {
			return failure(q, CodeOptionTextRequired, "All option texts must be filled.")
		}
		total++
		if s.Correct {
			checked++
		}
	}
	if checked == 0 {
		return failure(q, CodeNoCorrectOption, "You must select at least one correct answer.")
	}
	if total-checked == 0 {
		return failure(q, CodeNoIncorrectOption, "You must include at least one incorrect answer.")
	}
	return nil
}

func validateAnswers(q *domain.Question) *domain.SubmissionError {
	switch q.Type {
	case domain.TypeFillInBlank:
		if isBlank(firstAnswer(q)) {
			return failure(q, CodeBlankAnswerRequired, "Fill-in-the-blank answer is required.")
		}
	case domain.TypePictureResponse:
		if q.Image == nil {
			return MissingImage(q)
		}
		if isBlank(firstAnswer(q)) {
			return failure(q, CodeAnswerRequired, "You must enter an answer.")
		}
	}
	return nil
}

// MissingImage is the violation for a picture question without a picture.
// Submit also reports it when the stored picture expired.
func MissingImage(q *domain.Question) *domain.SubmissionError {
	return failure(q, CodeImageRequired, "You must select an image file.")
}

// firstAnswer reads answer slot 0; a removed or missing slot counts as empty.
func firstAnswer(q *domain.Question) string {
	s, ok := q.Slot(0)
	if !ok || s.Kind != domain.SlotAnswer {
		return ""
	}
	return s.Text
}

func failure(q *domain.Question, code ErrorCode, msg string) *domain.SubmissionError {
	return &domain.SubmissionError{
		QuestionIndex: q.Index,
		Code:          code,
		Message:       fmt.Sprintf("Question %d: %s", q.Index+1, msg),
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
