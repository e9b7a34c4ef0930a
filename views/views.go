package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

const (
	PagePayment = "payment.html"
	PageSuccess = "success.html"
	PageFailure = "failure.html"
	PagePending = "pending.html"
	PageError   = "error.html"
)

//go:embed templates/*.html
var files embed.FS

// Renderer renders the embedded pages for echo.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	templates, err := template.ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: templates}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

type PaymentPage struct {
	SessionID  string
	Amount     string
	Currency   string
	OrderID    string
	SuccessURL string
	FailureURL string
}

type OutcomePage struct {
	SessionID string
	Status    string
	Message   string
}

type ErrorPage struct {
	Message        string
	UpstreamStatus int
	UpstreamBody   string
	Hint           string
	ReturnURL      string
}
