package dto

import (
	"time"

	"quiz-author/internal/domain"
)

// DraftResponse is the builder state of a draft together with the field
// list each question renders.
// @Description Quiz draft
type DraftResponse struct {
	ID        string             `json:"id"`
	NextIndex int                `json:"next_index"`
	Questions []QuestionResponse `json:"questions"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// QuestionResponse is one live question.
type QuestionResponse struct {
	Index       int                `json:"index"`
	Text        string             `json:"text"`
	Type        string             `json:"type"`
	TypeLabel   string             `json:"type_label,omitempty"`
	SlotCounter int                `json:"slot_counter"`
	Slots       []SlotResponse     `json:"slots"`
	Fields      []domain.FieldSpec `json:"fields,omitempty"`
	Image       *domain.ImageRef   `json:"image,omitempty"`
}

// SlotResponse is one option/answer slot with its rendered fields.
type SlotResponse struct {
	Index     int                `json:"index"`
	Kind      string             `json:"kind"`
	Text      string             `json:"text"`
	Correct   bool               `json:"correct"`
	Removable bool               `json:"removable"`
	Fields    []domain.FieldSpec `json:"fields"`
}

// QuestionTextRequest sets a question's text.
type QuestionTextRequest struct {
	Text string `json:"text"`
}

// QuestionTypeRequest changes a question's type.
type QuestionTypeRequest struct {
	Type string `json:"type"`
}

// AddOptionRequest carries the type the add-option control was rendered for.
// An empty type means the question's current type.
type AddOptionRequest struct {
	Type string `json:"type"`
}

// SlotRequest updates one slot. Nil fields are left unchanged.
type SlotRequest struct {
	Text    *string `json:"text"`
	Correct *bool   `json:"correct"`
}

// SubmissionErrorResponse is returned when a submission is blocked.
type SubmissionErrorResponse struct {
	Code     string `json:"code"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Question int    `json:"question"`
}

// SubmitResponse acknowledges a forwarded quiz.
type SubmitResponse struct {
	DraftID   string `json:"draft_id"`
	Questions int    `json:"questions"`
	Status    string `json:"status"`
}

// ValidateResponse reports the result of a dry-run validation.
type ValidateResponse struct {
	Valid bool                     `json:"valid"`
	Error *SubmissionErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewDraftResponse converts a form into its API representation.
func NewDraftResponse(form *domain.QuizForm) *DraftResponse {
	resp := &DraftResponse{
		ID:        form.ID,
		NextIndex: form.NextIndex,
		Questions: make([]QuestionResponse, 0, len(form.Questions)),
		CreatedAt: form.CreatedAt,
		UpdatedAt: form.UpdatedAt,
	}
	for _, i := range form.Indices() {
		resp.Questions = append(resp.Questions, newQuestionResponse(form.Questions[i]))
	}
	return resp
}

func newQuestionResponse(q *domain.Question) QuestionResponse {
	qr := QuestionResponse{
		Index:       q.Index,
		Text:        q.Text,
		Type:        string(q.Type),
		SlotCounter: q.SlotCounter,
		Slots:       make([]SlotResponse, 0, len(q.Slots)),
		Image:       q.Image,
	}
	v, ok := domain.VariantOf(q.Type)
	if ok {
		qr.TypeLabel = v.Label()
		qr.Fields = v.QuestionFields(q.Index)
	}
	for _, s := range q.Slots {
		sr := SlotResponse{
			Index:     s.Index,
			Kind:      string(s.Kind),
			Text:      s.Text,
			Correct:   s.Correct,
			Removable: s.Removable,
		}
		if ok {
			sr.Fields = v.SlotFields(q.Index, s.Index)
		}
		qr.Slots = append(qr.Slots, sr)
	}
	return qr
}

// NewSubmissionErrorResponse converts a blocked submission.
func NewSubmissionErrorResponse(err *domain.SubmissionError) *SubmissionErrorResponse {
	return &SubmissionErrorResponse{
		Code:     string(domain.CodeSubmissionInvalid),
		Rule:     string(err.Code),
		Message:  err.Message,
		Question: err.QuestionNumber(),
	}
}
