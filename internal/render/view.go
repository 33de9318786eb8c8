package render

import (
	"net/url"
	"strconv"
	"strings"

	"quiz-author/internal/domain"
)

// PageData is everything the authoring page template needs.
type PageData struct {
	Title    string
	DraftID  string
	Alert    string
	Progress int

	Questions []QuestionView
	Types     []TypeOption

	SubmitURL      string
	AddQuestionURL string
	UpdateURL      string
}

// TypeOption is one entry of the question type selector.
type TypeOption struct {
	Value string
	Label string
}

// QuestionView is one question block.
type QuestionView struct {
	Number         int
	BlockID        string
	TextName       string
	Text           string
	TypeName       string
	Type           string
	ExtraFieldsID  string
	OptionsID      string
	HasTemplate    bool
	AddOptionURL   string
	DeleteURL      string
	QuestionFields []FieldView
	Slots          []SlotView
}

// SlotView is one option/answer row.
type SlotView struct {
	Removable bool
	RemoveURL string
	Fields    []FieldView
}

// FieldView is a FieldSpec with the draft's current value.
type FieldView struct {
	domain.FieldSpec
	Value    string
	Checked  bool
	FileName string
}

func (f FieldView) IsText() bool     { return f.Kind == domain.FieldText }
func (f FieldView) IsCheckbox() bool { return f.Kind == domain.FieldCheckbox }
func (f FieldView) IsFile() bool     { return f.Kind == domain.FieldFile }

// ConfirmationData is shown after a quiz was forwarded.
type ConfirmationData struct {
	Title     string
	DraftID   string
	Questions int
	NewURL    string
}

// BasePath is where the authoring pages are mounted.
const BasePath = "/create-quiz"

// DraftURL returns the page URL of a draft.
func DraftURL(draftID string) string {
	return BasePath + "/" + url.PathEscape(draftID)
}

// ActionURL returns the URL a page button posts to.
func ActionURL(draftID, action string, params url.Values) string {
	u := DraftURL(draftID) + "/actions/" + action
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// NewPageData builds the view of form. alert is shown above the form.
func NewPageData(form *domain.QuizForm, alert string) PageData {
	data := PageData{
		Title:          "Create Quiz",
		DraftID:        form.ID,
		Alert:          alert,
		Progress:       ProgressWidth(strconv.Itoa(FormProgress(form))),
		SubmitURL:      DraftURL(form.ID) + "/submit",
		AddQuestionURL: ActionURL(form.ID, "add-question", nil),
		UpdateURL:      ActionURL(form.ID, "update", nil),
	}
	for _, t := range domain.QuestionTypes {
		data.Types = append(data.Types, TypeOption{Value: string(t), Label: t.Label()})
	}
	for _, i := range form.Indices() {
		data.Questions = append(data.Questions, newQuestionView(form.ID, form.Questions[i]))
	}
	return data
}

func newQuestionView(draftID string, q *domain.Question) QuestionView {
	i := q.Index
	index := strconv.Itoa(i)
	qv := QuestionView{
		Number:        i + 1,
		BlockID:       domain.QuestionBlockID(i),
		TextName:      domain.QuestionTextName(i),
		Text:          q.Text,
		TypeName:      domain.QuestionTypeName(i),
		Type:          string(q.Type),
		ExtraFieldsID: domain.ExtraFieldsID(i),
		OptionsID:     domain.OptionsID(i),
		DeleteURL:     ActionURL(draftID, "delete-question", url.Values{"index": {index}}),
	}

	v, ok := domain.VariantOf(q.Type)
	if !ok {
		return qv
	}
	qv.HasTemplate = true
	qv.AddOptionURL = ActionURL(draftID, "add-option", url.Values{"index": {index}, "type": {string(q.Type)}})
	for _, spec := range v.QuestionFields(i) {
		fv := FieldView{FieldSpec: spec}
		if spec.Kind == domain.FieldFile && q.Image != nil {
			fv.FileName = q.Image.FileName
		}
		qv.QuestionFields = append(qv.QuestionFields, fv)
	}
	for _, s := range q.Slots {
		sv := SlotView{Removable: s.Removable}
		if s.Removable {
			sv.RemoveURL = ActionURL(draftID, "remove-option", url.Values{
				"index": {index},
				"slot":  {strconv.Itoa(s.Index)},
			})
		}
		for _, spec := range v.SlotFields(i, s.Index) {
			fv := FieldView{FieldSpec: spec}
			switch spec.Kind {
			case domain.FieldText:
				fv.Value = s.Text
			case domain.FieldCheckbox:
				fv.Checked = s.Correct
			}
			sv.Fields = append(sv.Fields, fv)
		}
		qv.Slots = append(qv.Slots, sv)
	}
	return qv
}

// FormProgress is the share of live questions that have text, in percent.
func FormProgress(form *domain.QuizForm) int {
	if len(form.Questions) == 0 {
		return 0
	}
	filled := 0
	for _, q := range form.Questions {
		if strings.TrimSpace(q.Text) != "" {
			filled++
		}
	}
	return filled * 100 / len(form.Questions)
}

// ProgressWidth turns a data-progress value into a bar width in percent.
// Non-numeric values render as 0.
func ProgressWidth(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f != f {
		return 0
	}
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	}
	return int(f)
}
