package render

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"quiz-author/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleForm() *domain.QuizForm {
	form := domain.NewQuizForm("01HGZ8VNRYXS8QKNJV5GRWPWDQ", "author")
	mc := form.AddQuestion()
	form.SetQuestionText(mc, "Capital of France?")
	form.SetSlotText(mc, 0, "Paris")
	form.SetSlotCorrect(mc, 0, true)
	form.AddOption(domain.TypeMultipleChoice, mc)

	pic := form.AddQuestion()
	form.ChangeType(pic, domain.TypePictureResponse)
	form.AttachImage(pic, domain.ImageRef{FileName: "eiffel.png", ContentType: "image/png", Size: 3})
	return form
}

func renderPage(t *testing.T, data PageData) string {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.CreateQuiz(&buf, data))
	return buf.String()
}

func TestCreateQuiz_FieldNamingContract(t *testing.T) {
	html := renderPage(t, NewPageData(sampleForm(), ""))

	for _, want := range []string{
		`id="question_0"`,
		`name="questionText_0"`,
		`value="Capital of France?"`,
		`name="questionType_0"`,
		`id="extraFields_0"`,
		`id="options-0"`,
		`name="optionText_0_0"`,
		`placeholder="Option 1"`,
		`name="isCorrect_0_0" checked`,
		`name="optionText_0_2"`,
		`placeholder="Option 3"`,
		`name="answer_1_0"`,
		`placeholder="Correct Answer 1"`,
		`name="image_1"`,
		`accept="image/*"`,
		`Upload Image:`,
		`eiffel.png`,
		`<option value="PICTURE_RESPONSE" selected>Picture response</option>`,
		`actions/add-option?index=0`,
	} {
		assert.Contains(t, html, want)
	}

	// Only the appended option has a remove control.
	assert.Equal(t, 1, strings.Count(html, `class="remove-option-btn"`))
	assert.NotContains(t, html, `name="isCorrect_0_1" checked`)
	assert.NotContains(t, html, `role="alert"`)
}

func TestCreateQuiz_AlertAndProgress(t *testing.T) {
	html := renderPage(t, NewPageData(sampleForm(), "Question 2: Question text is required."))

	assert.Contains(t, html, `<div class="alert" role="alert">Question 2: Question text is required.</div>`)
	assert.Contains(t, html, `data-progress="50"`)
	assert.Contains(t, html, `width: 50%`)
	assert.Contains(t, html, `class="navbar__toggle-state"`)
	assert.Contains(t, html, `class="navbar__links"`)
}

func TestCreateQuiz_EscapesUserText(t *testing.T) {
	form := domain.NewQuizForm("draft", "author")
	i := form.AddQuestion()
	form.SetQuestionText(i, `"><script>alert(1)</script>`)

	html := renderPage(t, NewPageData(form, ""))
	assert.NotContains(t, html, "<script>")
}

func TestCreateQuiz_UntypedQuestionHasNoSlots(t *testing.T) {
	form := domain.NewQuizForm("draft", "author")
	i := form.AddQuestion()
	form.ChangeType(i, domain.TypeNone)

	data := NewPageData(form, "")
	require.Len(t, data.Questions, 1)
	assert.False(t, data.Questions[0].HasTemplate)

	html := renderPage(t, data)
	assert.Contains(t, html, `id="extraFields_0"`)
	assert.NotContains(t, html, `id="options-0"`)
}

func TestNewPageData_SkipsDeletedQuestions(t *testing.T) {
	form := domain.NewQuizForm("draft", "author")
	form.AddQuestion()
	second := form.AddQuestion()
	form.DeleteQuestion(0)

	data := NewPageData(form, "")
	require.Len(t, data.Questions, 1)
	assert.Equal(t, second+1, data.Questions[0].Number)
	assert.Equal(t, "question_1", data.Questions[0].BlockID)
}

func TestProgressWidth(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"40", 40},
		{" 72.5 ", 72},
		{"0", 0},
		{"100", 100},
		{"140", 100},
		{"-5", 0},
		{"abc", 0},
		{"", 0},
		{"NaN", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressWidth(tt.raw))
		})
	}
}

func TestFormProgress(t *testing.T) {
	form := domain.NewQuizForm("draft", "author")
	assert.Equal(t, 0, FormProgress(form))

	a := form.AddQuestion()
	form.AddQuestion()
	form.AddQuestion()
	form.SetQuestionText(a, "filled")
	assert.Equal(t, 33, FormProgress(form))
}

func TestSubmitted(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Submitted(&buf, ConfirmationData{Title: "Quiz Created", Questions: 3, NewURL: BasePath}))
	assert.Contains(t, buf.String(), "Your quiz with 3 questions was submitted.")
}

func TestStaticFS(t *testing.T) {
	f, err := StaticFS().Open("style.css")
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(body), ".progress-bar-inner")
}
