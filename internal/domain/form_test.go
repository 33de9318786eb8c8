package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotIndices(q *Question) []int {
	out := make([]int, len(q.Slots))
	for i, s := range q.Slots {
		out[i] = s.Index
	}
	return out
}

func TestAddQuestion_IndicesNeverReused(t *testing.T) {
	form := NewQuizForm("draft", "author")

	first := form.AddQuestion()
	second := form.AddQuestion()
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	assert.True(t, form.DeleteQuestion(second))
	third := form.AddQuestion()
	assert.Equal(t, 2, third, "deleted index must not be handed out again")
	assert.Greater(t, third, second)
	assert.Equal(t, []int{0, 2}, form.Indices())
}

func TestAddQuestion_DefaultsToMultipleChoice(t *testing.T) {
	form := NewQuizForm("draft", "author")
	i := form.AddQuestion()

	q, ok := form.Question(i)
	require.True(t, ok)
	assert.Equal(t, TypeMultipleChoice, q.Type)
	assert.Equal(t, 2, q.SlotCounter)
	assert.Equal(t, []int{0, 1}, slotIndices(q))
	for _, s := range q.Slots {
		assert.Equal(t, SlotOption, s.Kind)
		assert.False(t, s.Removable)
	}
}

func TestChangeType_ReplacesSlotsWithInitialTemplate(t *testing.T) {
	tests := []struct {
		name     string
		to       QuestionType
		slots    int
		kind     SlotKind
		hasImage bool
	}{
		{"multiple choice", TypeMultipleChoice, 2, SlotOption, false},
		{"fill in blank", TypeFillInBlank, 1, SlotAnswer, false},
		{"picture response", TypePictureResponse, 1, SlotAnswer, true},
		{"multi answer", TypeMultiAnswer, 1, SlotAnswer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := NewQuizForm("draft", "author")
			i := form.AddQuestion()
			form.ChangeType(i, TypeFillInBlank)
			form.AddOption(TypeFillInBlank, i)
			form.AddOption(TypeFillInBlank, i)

			form.ChangeType(i, tt.to)

			q := form.Questions[i]
			assert.Equal(t, tt.to, q.Type)
			assert.Len(t, q.Slots, tt.slots)
			assert.Equal(t, tt.slots, q.SlotCounter)
			for _, s := range q.Slots {
				assert.Equal(t, tt.kind, s.Kind)
				assert.Empty(t, s.Text)
			}
			v, ok := VariantOf(tt.to)
			require.True(t, ok)
			assert.Equal(t, tt.hasImage, len(v.QuestionFields(i)) > 0)
		})
	}
}

func TestChangeType_UnknownTypeClearsSlots(t *testing.T) {
	form := NewQuizForm("draft", "author")
	i := form.AddQuestion()
	form.AddOption(TypeMultipleChoice, i)

	form.ChangeType(i, ParseQuestionType("ESSAY"))

	q := form.Questions[i]
	assert.Equal(t, TypeNone, q.Type)
	assert.Empty(t, q.Slots)
	assert.Equal(t, 3, q.SlotCounter)

	_, added := form.AddOption(TypeNone, i)
	assert.False(t, added)
}

func TestChangeType_DropsImage(t *testing.T) {
	form := NewQuizForm("draft", "author")
	i := form.AddQuestion()
	form.ChangeType(i, TypePictureResponse)
	require.True(t, form.AttachImage(i, ImageRef{FileName: "a.png", ContentType: "image/png", Size: 3}))

	form.ChangeType(i, TypePictureResponse)
	assert.Nil(t, form.Questions[i].Image)
}

func TestAddOption_UsesSlotCounter(t *testing.T) {
	form := NewQuizForm("draft", "author")
	i := form.AddQuestion()

	slot, added := form.AddOption(TypeMultipleChoice, i)
	require.True(t, added)
	assert.Equal(t, 2, slot)
	assert.Equal(t, 3, form.Questions[i].SlotCounter)

	s, ok := form.Questions[i].Slot(2)
	require.True(t, ok)
	assert.True(t, s.Removable)
	assert.Equal(t, SlotOption, s.Kind)
}

func TestAddOption_StaleTypeIsNoop(t *testing.T) {
	form := NewQuizForm("draft", "author")
	i := form.AddQuestion()
	form.ChangeType(i, TypeFillInBlank)

	_, added := form.AddOption(TypeMultipleChoice, i)
	assert.False(t, added)
	assert.Len(t, form.Questions[i].Slots, 1)

	_, added = form.AddOption(TypeFillInBlank, 42)
	assert.False(t, added)
}

func TestRemoveOption_LeavesGapsAndCounter(t *testing.T) {
	form := NewQuizForm("draft", "author")
	i := form.AddQuestion()
	form.AddOption(TypeMultipleChoice, i)
	form.AddOption(TypeMultipleChoice, i)

	assert.True(t, form.RemoveOption(i, 2))
	assert.False(t, form.RemoveOption(i, 2), "second removal is a no-op")
	assert.False(t, form.RemoveOption(i, 0), "initial rows have no remove control")

	q := form.Questions[i]
	assert.Equal(t, []int{0, 1, 3}, slotIndices(q))
	assert.Equal(t, 4, q.SlotCounter)

	slot, _ := form.AddOption(TypeMultipleChoice, i)
	assert.Equal(t, 4, slot)
}

func TestDeleteQuestion_Idempotent(t *testing.T) {
	form := NewQuizForm("draft", "author")
	i := form.AddQuestion()

	assert.True(t, form.DeleteQuestion(i))
	assert.False(t, form.DeleteQuestion(i))
	assert.Equal(t, 1, form.NextIndex)
}

func TestAttachImage_OnlyPictureResponse(t *testing.T) {
	form := NewQuizForm("draft", "author")
	i := form.AddQuestion()

	assert.False(t, form.AttachImage(i, ImageRef{FileName: "a.png"}))
	form.ChangeType(i, TypePictureResponse)
	assert.True(t, form.AttachImage(i, ImageRef{FileName: "a.png"}))
	assert.Equal(t, "a.png", form.Questions[i].Image.FileName)
}

func TestApplyFieldValues(t *testing.T) {
	form := NewQuizForm("draft", "author")
	mc := form.AddQuestion()
	fib := form.AddQuestion()
	form.ChangeType(fib, TypeFillInBlank)
	form.SetSlotCorrect(mc, 1, true)

	form.ApplyFieldValues(map[string][]string{
		"questionText_0":   {"Capital of France?"},
		"questionType_0":   {"MULTIPLE_CHOICE"},
		"optionText_0_0":   {"Paris"},
		"isCorrect_0_0":    {"on"},
		"optionText_0_1":   {"Lyon"},
		"questionText_1":   {"2 + 2 = _"},
		"questionType_1":   {"FILL_IN_BLANK"},
		"answer_1_0":       {"4"},
		"unrelated_field":  {"x"},
		"questionText_900": {"ignored"},
	})

	q0 := form.Questions[mc]
	assert.Equal(t, "Capital of France?", q0.Text)
	assert.Equal(t, "Paris", q0.Slots[0].Text)
	assert.True(t, q0.Slots[0].Correct)
	assert.Equal(t, "Lyon", q0.Slots[1].Text)
	assert.False(t, q0.Slots[1].Correct, "absent checkbox means unchecked")

	q1 := form.Questions[fib]
	assert.Equal(t, "2 + 2 = _", q1.Text)
	assert.Equal(t, "4", q1.Slots[0].Text)
	assert.Len(t, form.Questions, 2)
}

func TestApplyFieldValues_TypeChangeDiscardsSlotValues(t *testing.T) {
	form := NewQuizForm("draft", "author")
	i := form.AddQuestion()

	form.ApplyFieldValues(map[string][]string{
		"questionText_0": {"Name the building"},
		"questionType_0": {"PICTURE_RESPONSE"},
		"optionText_0_0": {"stale"},
		"answer_0_0":     {"stale"},
	})

	q := form.Questions[i]
	assert.Equal(t, "Name the building", q.Text)
	assert.Equal(t, TypePictureResponse, q.Type)
	require.Len(t, q.Slots, 1)
	assert.Empty(t, q.Slots[0].Text)
}

func TestApplyFieldValues_CheckboxUntouchedWithoutRow(t *testing.T) {
	form := NewQuizForm("draft", "author")
	i := form.AddQuestion()
	form.SetSlotCorrect(i, 0, true)

	form.ApplyFieldValues(map[string][]string{"questionText_0": {"only text"}})

	assert.True(t, form.Questions[i].Slots[0].Correct)
}

func TestNewSubmission_FlattensLiveQuestions(t *testing.T) {
	form := NewQuizForm("draft", "author")
	mc := form.AddQuestion()
	deleted := form.AddQuestion()
	fib := form.AddQuestion()
	form.DeleteQuestion(deleted)
	form.ChangeType(fib, TypeFillInBlank)
	form.SetQuestionText(mc, "Pick one")
	form.SetSlotText(mc, 0, "A")
	form.SetSlotCorrect(mc, 0, true)
	form.SetSlotText(mc, 1, "B")
	form.SetQuestionText(fib, "Blank")
	form.SetSlotText(fib, 0, "word")

	sub := NewSubmission(form)

	assert.Equal(t, "draft", sub.DraftID)
	assert.Equal(t, "author", sub.AuthorID)
	assert.Equal(t, "Pick one", sub.Fields["questionText_0"])
	assert.Equal(t, "MULTIPLE_CHOICE", sub.Fields["questionType_0"])
	assert.Equal(t, "on", sub.Fields["isCorrect_0_0"])
	_, checked := sub.Fields["isCorrect_0_1"]
	assert.False(t, checked)
	_, present := sub.Fields["questionText_1"]
	assert.False(t, present)
	assert.Equal(t, "word", sub.Fields["answer_2_0"])
	assert.Equal(t, "3", sub.Fields["questionCount"])
}

func TestParseQuestionType(t *testing.T) {
	assert.Equal(t, TypeMultiAnswer, ParseQuestionType("MULTI_ANSWER"))
	assert.Equal(t, TypeNone, ParseQuestionType(""))
	assert.Equal(t, TypeNone, ParseQuestionType("multiple_choice"))
	assert.Equal(t, "Picture response", TypePictureResponse.Label())
}
