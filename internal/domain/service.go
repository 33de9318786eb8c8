package domain

import (
	"context"
	"strconv"
)

// DraftRepository persists authoring drafts between requests.
type DraftRepository interface {
	// GetDraft returns ErrCacheMiss when the draft does not exist or expired.
	GetDraft(ctx context.Context, draftID string) (*QuizForm, error)
	SaveDraft(ctx context.Context, form *QuizForm) error
	DeleteDraft(ctx context.Context, draftID string) error

	SaveImage(ctx context.Context, draftID string, questionIndex int, data []byte) error
	GetImage(ctx context.Context, draftID string, questionIndex int) ([]byte, error)
	DeleteImage(ctx context.Context, draftID string, questionIndex int) error
}

// SubmissionSink receives quizzes that passed validation. It stands for the
// server endpoint the native form used to post to.
type SubmissionSink interface {
	Submit(ctx context.Context, submission *Submission) error
}

// SubmissionFile is an uploaded file carried with a submission.
type SubmissionFile struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
}

// Submission is a validated form flattened back to the field naming
// contract of the authoring page.
type Submission struct {
	DraftID  string
	AuthorID string
	Fields   map[string]string
	Files    []SubmissionFile
}

// NewSubmission flattens the live questions of form. Checkboxes are only
// present when checked, as a browser would post them.
func NewSubmission(form *QuizForm) *Submission {
	fields := make(map[string]string)
	for _, i := range form.Indices() {
		q := form.Questions[i]
		fields[QuestionTextName(i)] = q.Text
		fields[QuestionTypeName(i)] = string(q.Type)
		for _, s := range q.Slots {
			switch s.Kind {
			case SlotOption:
				fields[OptionTextName(i, s.Index)] = s.Text
				if s.Correct {
					fields[IsCorrectName(i, s.Index)] = "on"
				}
			case SlotAnswer:
				fields[AnswerName(i, s.Index)] = s.Text
			}
		}
	}
	fields["questionCount"] = strconv.Itoa(form.NextIndex)
	return &Submission{
		DraftID:  form.ID,
		AuthorID: form.OwnerID,
		Fields:   fields,
	}
}
