package domain

import (
	"sort"
	"strings"
	"time"
)

// OptionSlot is one answer/option input group of a question.
type OptionSlot struct {
	Index   int      `json:"index"`
	Kind    SlotKind `json:"kind"`
	Text    string   `json:"text"`
	Correct bool     `json:"correct,omitempty"`
	// Removable is set only for slots appended through AddOption;
	// the initial template rows carry no remove control.
	Removable bool `json:"removable"`
}

// ImageRef points at the uploaded picture of a picture-response question.
// The bytes are stored next to the draft, keyed by question index.
type ImageRef struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Question is one block of the authoring form.
type Question struct {
	Index       int           `json:"index"`
	Text        string        `json:"text"`
	Type        QuestionType  `json:"type"`
	Slots       []*OptionSlot `json:"slots"`
	SlotCounter int           `json:"slot_counter"`
	Image       *ImageRef     `json:"image,omitempty"`
}

// Slot returns the slot with the given index.
func (q *Question) Slot(index int) (*OptionSlot, bool) {
	for _, s := range q.Slots {
		if s.Index == index {
			return s, true
		}
	}
	return nil, false
}

// QuizForm is the builder state of one authoring session (a draft).
// NextIndex only grows; deleted questions leave gaps.
type QuizForm struct {
	ID        string            `json:"id"`
	OwnerID   string            `json:"owner_id"`
	NextIndex int               `json:"next_index"`
	Questions map[int]*Question `json:"questions"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// SubmittedAt is set once the quiz has been handed to the quiz store.
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// Submitted reports whether the form was already forwarded.
func (f *QuizForm) Submitted() bool {
	return f.SubmittedAt != nil
}

// NewQuizForm creates an empty form.
func NewQuizForm(id, ownerID string) *QuizForm {
	now := time.Now()
	return &QuizForm{
		ID:        id,
		OwnerID:   ownerID,
		Questions: make(map[int]*Question),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Question returns the live question at index.
func (f *QuizForm) Question(index int) (*Question, bool) {
	q, ok := f.Questions[index]
	return q, ok
}

// Indices returns live question indices in ascending order.
func (f *QuizForm) Indices() []int {
	out := make([]int, 0, len(f.Questions))
	for i := range f.Questions {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// AddQuestion allocates the next index and appends a multiple choice
// question with its default option slots.
func (f *QuizForm) AddQuestion() int {
	if f.Questions == nil {
		f.Questions = make(map[int]*Question)
	}
	index := f.NextIndex
	f.NextIndex++
	f.Questions[index] = &Question{Index: index}
	f.ChangeType(index, TypeMultipleChoice)
	return index
}

// ChangeType replaces the question's slots with the initial template of t
// and resets its slot counter. An unknown type clears the slots and leaves
// the counter untouched.
func (f *QuizForm) ChangeType(index int, t QuestionType) {
	q, ok := f.Questions[index]
	if !ok {
		return
	}
	q.Slots = nil
	q.Image = nil

	v, ok := VariantOf(t)
	if !ok {
		q.Type = TypeNone
		return
	}
	q.Type = t
	q.SlotCounter = v.InitialSlots()
	for i := 0; i < v.InitialSlots(); i++ {
		q.Slots = append(q.Slots, &OptionSlot{Index: i, Kind: v.SlotKind()})
	}
}

// AddOption appends one removable slot of type t. The control that
// triggers it is rendered for a specific type, so a t that no longer
// matches the question is a no-op.
func (f *QuizForm) AddOption(t QuestionType, index int) (slot int, added bool) {
	q, ok := f.Questions[index]
	if !ok || q.Type == TypeNone || q.Type != t {
		return 0, false
	}
	v, _ := VariantOf(t)
	slot = q.SlotCounter
	q.SlotCounter++
	q.Slots = append(q.Slots, &OptionSlot{Index: slot, Kind: v.SlotKind(), Removable: true})
	return slot, true
}

// RemoveOption drops a removable slot. Slot counters are not adjusted.
func (f *QuizForm) RemoveOption(index, slot int) bool {
	q, ok := f.Questions[index]
	if !ok {
		return false
	}
	for i, s := range q.Slots {
		if s.Index == slot {
			if !s.Removable {
				return false
			}
			q.Slots = append(q.Slots[:i], q.Slots[i+1:]...)
			return true
		}
	}
	return false
}

// DeleteQuestion removes the question; its index is never handed out again.
func (f *QuizForm) DeleteQuestion(index int) bool {
	if _, ok := f.Questions[index]; !ok {
		return false
	}
	delete(f.Questions, index)
	return true
}

func (f *QuizForm) SetQuestionText(index int, text string) {
	if q, ok := f.Questions[index]; ok {
		q.Text = text
	}
}

func (f *QuizForm) SetSlotText(index, slot int, text string) {
	if s := f.slot(index, slot); s != nil {
		s.Text = text
	}
}

// SetSlotCorrect only applies to option slots.
func (f *QuizForm) SetSlotCorrect(index, slot int, correct bool) {
	if s := f.slot(index, slot); s != nil && s.Kind == SlotOption {
		s.Correct = correct
	}
}

// AttachImage records an uploaded picture. Only picture-response questions
// render an upload control.
func (f *QuizForm) AttachImage(index int, ref ImageRef) bool {
	q, ok := f.Questions[index]
	if !ok || q.Type != TypePictureResponse {
		return false
	}
	q.Image = &ref
	return true
}

func (f *QuizForm) slot(index, slot int) *OptionSlot {
	q, ok := f.Questions[index]
	if !ok {
		return nil
	}
	s, _ := q.Slot(slot)
	return s
}

// ApplyFieldValues syncs posted form fields into the model. A changed
// question type behaves like the type selector's change event and discards
// that question's posted slot values. An option slot whose text field was
// posted but whose checkbox was not is unchecked.
func (f *QuizForm) ApplyFieldValues(values map[string][]string) {
	for _, i := range f.Indices() {
		q := f.Questions[i]
		if text, ok := firstValue(values, QuestionTextName(i)); ok {
			q.Text = text
		}
		if raw, ok := firstValue(values, QuestionTypeName(i)); ok {
			if t := ParseQuestionType(raw); t != q.Type {
				f.ChangeType(i, t)
				continue
			}
		}
		for _, s := range q.Slots {
			switch s.Kind {
			case SlotOption:
				text, ok := firstValue(values, OptionTextName(i, s.Index))
				if !ok {
					continue
				}
				s.Text = text
				checked, _ := firstValue(values, IsCorrectName(i, s.Index))
				s.Correct = checked != "" && !strings.EqualFold(checked, "false")
			case SlotAnswer:
				if text, ok := firstValue(values, AnswerName(i, s.Index)); ok {
					s.Text = text
				}
			}
		}
	}
}

func firstValue(values map[string][]string, name string) (string, bool) {
	v, ok := values[name]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}
