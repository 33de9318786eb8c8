package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Renderer executes the authoring page templates.
type Renderer struct {
	createQuiz *template.Template
	submitted  *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	createQuiz, err := template.ParseFS(templateFS, "templates/layout.html", "templates/field.html", "templates/create_quiz.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse create quiz template: %w", err)
	}
	submitted, err := template.ParseFS(templateFS, "templates/layout.html", "templates/submitted.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse submitted template: %w", err)
	}
	return &Renderer{createQuiz: createQuiz, submitted: submitted}, nil
}

// CreateQuiz renders the authoring page.
func (r *Renderer) CreateQuiz(w io.Writer, data PageData) error {
	return r.createQuiz.ExecuteTemplate(w, "create_quiz.html", data)
}

// Submitted renders the confirmation page.
func (r *Renderer) Submitted(w io.Writer, data ConfirmationData) error {
	return r.submitted.ExecuteTemplate(w, "submitted.html", data)
}

// StaticFS serves the stylesheet.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
