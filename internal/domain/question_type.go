package domain

import "fmt"

// QuestionType selects the answer-capture template and the validation rules of a question.
type QuestionType string

const (
	TypeNone            QuestionType = ""
	TypeMultipleChoice  QuestionType = "MULTIPLE_CHOICE"
	TypeFillInBlank     QuestionType = "FILL_IN_BLANK"
	TypePictureResponse QuestionType = "PICTURE_RESPONSE"
	TypeMultiAnswer     QuestionType = "MULTI_ANSWER"
)

// QuestionTypes lists the selectable types in display order.
var QuestionTypes = []QuestionType{
	TypeMultipleChoice,
	TypeFillInBlank,
	TypePictureResponse,
	TypeMultiAnswer,
}

// ParseQuestionType maps a raw selector value to a known type.
// Anything else, including the empty string, yields TypeNone.
func ParseQuestionType(raw string) QuestionType {
	for _, t := range QuestionTypes {
		if string(t) == raw {
			return t
		}
	}
	return TypeNone
}

// FieldKind is the input control a field is rendered as.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldCheckbox FieldKind = "checkbox"
	FieldFile     FieldKind = "file"
)

// FieldSpec describes one rendered input.
type FieldSpec struct {
	Kind        FieldKind `json:"kind"`
	Name        string    `json:"name"`
	Placeholder string    `json:"placeholder,omitempty"`
	Label       string    `json:"label,omitempty"`
	Accept      string    `json:"accept,omitempty"`
}

// SlotKind is the shape of an option slot.
type SlotKind string

const (
	SlotOption SlotKind = "option" // text + correctness flag
	SlotAnswer SlotKind = "answer" // accepted answer text
)

// Variant is the per-type template: how many slots a question starts with,
// what one slot looks like and which question-level fields it carries.
type Variant interface {
	Type() QuestionType
	Label() string
	InitialSlots() int
	SlotKind() SlotKind
	SlotFields(question, slot int) []FieldSpec
	QuestionFields(question int) []FieldSpec
}

type multipleChoice struct{}

func (multipleChoice) Type() QuestionType { return TypeMultipleChoice }
func (multipleChoice) Label() string { return "Multiple Choice" }
func (multipleChoice) InitialSlots() int { return 2 }
func (multipleChoice) SlotKind() SlotKind { return SlotOption }

func (multipleChoice) SlotFields(question, slot int) []FieldSpec {
	return []FieldSpec{
		{Kind: FieldText, Name: OptionTextName(question, slot), Placeholder: fmt.Sprintf("Option %d", slot+1)},
		{Kind: FieldCheckbox, Name: IsCorrectName(question, slot), Label: "Correct"},
	}
}

func (multipleChoice) QuestionFields(int) []FieldSpec { return nil }

// answerVariant covers the three text-answer types; only the picture
// response variant adds the image upload.
type answerVariant struct {
	t         QuestionType
	label     string
	withImage bool
}

func (v answerVariant) Type() QuestionType { return v.t }
func (v answerVariant) Label() string { return v.label }
func (answerVariant) InitialSlots() int { return 1 }
func (answerVariant) SlotKind() SlotKind { return SlotAnswer }

func (answerVariant) SlotFields(question, slot int) []FieldSpec {
	return []FieldSpec{
		{Kind: FieldText, Name: AnswerName(question, slot), Placeholder: fmt.Sprintf("Correct Answer %d", slot+1)},
	}
}

func (v answerVariant) QuestionFields(question int) []FieldSpec {
	if !v.withImage {
		return nil
	}
	return []FieldSpec{
		{Kind: FieldFile, Name: ImageName(question), Label: "Upload Image:", Accept: "image/*"},
	}
}

var variants = map[QuestionType]Variant{
	TypeMultipleChoice:  multipleChoice{},
	TypeFillInBlank:     answerVariant{t: TypeFillInBlank, label: "Fill in the Blank"},
	TypePictureResponse: answerVariant{t: TypePictureResponse, label: "Picture response", withImage: true},
	TypeMultiAnswer:     answerVariant{t: TypeMultiAnswer, label: "Multiple Answer"},
}

// VariantOf returns the template of t, or false for TypeNone and unknown values.
func VariantOf(t QuestionType) (Variant, bool) {
	v, ok := variants[t]
	return v, ok
}

// Label returns the display label, or the raw value for unknown types.
func (t QuestionType) Label() string {
	if v, ok := VariantOf(t); ok {
		return v.Label()
	}
	return string(t)
}

// Field names shared by the rendered form, the sync path and the forwarded submission.

func QuestionBlockID(q int) string { return fmt.Sprintf("question_%d", q) }
func QuestionTextName(q int) string { return fmt.Sprintf("questionText_%d", q) }
func QuestionTypeName(q int) string { return fmt.Sprintf("questionType_%d", q) }
func ExtraFieldsID(q int) string { return fmt.Sprintf("extraFields_%d", q) }
func OptionsID(q int) string { return fmt.Sprintf("options-%d", q) }
func OptionTextName(q, s int) string { return fmt.Sprintf("optionText_%d_%d", q, s) }
func IsCorrectName(q, s int) string { return fmt.Sprintf("isCorrect_%d_%d", q, s) }
func AnswerName(q, s int) string { return fmt.Sprintf("answer_%d_%d", q, s) }
func ImageName(q int) string { return fmt.Sprintf("image_%d", q) }
