// Package web renders the server-side HTML pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/wolfman30/prisoner-profile/internal/reference"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

//go:embed templates/*.html
var templatesFS embed.FS

const displayDateLayout = "Monday 2 January 2006"

// pages maps each page to the layout it is rendered inside. The movement
// slip is printed, so it skips the site chrome.
var pages = map[string]string{
	"appointment_form":  "layout.html",
	"court_hearing":     "layout.html",
	"confirmation":      "layout.html",
	"movement_slip":     "print.html",
	"edit_field":        "layout.html",
	"personal_overview": "layout.html",
	"not_found":         "layout.html",
	"error":             "layout.html",
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages  map[string]*template.Template
	logger *logging.Logger
}

// NewRenderer parses every page up front so a broken template fails at start-up.
func NewRenderer(logger *logging.Logger) (*Renderer, error) {
	if logger == nil {
		logger = logging.Default()
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pages)), logger: logger}
	for page, layout := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templatesFS, "templates/"+layout, "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes page with status. Output is buffered so a template error
// never leaves a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := r.pages[page]
	if !ok {
		r.logger.Error("unknown page", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("failed to render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

var funcs = template.FuncMap{
	"displayDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(displayDateLayout)
	},
	"clock": func(t time.Time) string { return t.Format("15:04") },
	"describe": func(options []reference.Option, value string) string {
		return reference.Describe(options, value)
	},
}
