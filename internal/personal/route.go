// Package personal serves the single-field edit pages for a prisoner's
// personal details. Each page is described by an EditRoute (how to read the
// current value, how to save a new one, and how the field is presented) and
// the Builder turns routes into GET/POST handlers.
package personal

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/prisoner-profile/internal/compliance"
	"github.com/wolfman30/prisoner-profile/internal/flash"
	"github.com/wolfman30/prisoner-profile/internal/observability/metrics"
	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/internal/reference"
	"github.com/wolfman30/prisoner-profile/internal/tenancy"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

// Page template names.
const (
	PageEditField = "edit_field"
	PageOverview  = "personal_overview"
	PageNotFound  = "not_found"
	PageError     = "error"
)

const genericSaveError = "Sorry, there was a problem saving the change. Please try again."

// InputKind selects how the field is rendered.
type InputKind string

const (
	InputText     InputKind = "text"
	InputTextArea InputKind = "textarea"
	InputNumber   InputKind = "number"
	InputSelect   InputKind = "select"
	InputEmail    InputKind = "email"
	InputPhone    InputKind = "tel"
)

// FieldMeta describes how a field is presented and audited.
type FieldMeta struct {
	Name   string
	Label  string
	Hint   string
	Kind   InputKind
	Suffix string
	// Domain names the reference domain offering the options of a select.
	Domain string
	// DuplicateNoun completes "This … already exists for this prisoner".
	DuplicateNoun string
	Action        compliance.AuditAction
}

// Getter reads the current value.
type Getter func(ctx context.Context, prisonerNumber string) (string, error)

// Setter saves a validated value.
type Setter func(ctx context.Context, prisonerNumber, value string) error

// Validator returns a user-facing message, or "" when value is acceptable.
type Validator func(value string) string

// EditRoute is one editable field, mounted at /prisoner/{prisonerNumber}/personal/{Path}.
type EditRoute struct {
	Path     string
	Meta     FieldMeta
	Get      Getter
	Set      Setter
	Validate Validator
}

// Renderer writes a named page.
type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data any)
}

// PrisonerReader resolves the prisoner shown in the page header.
type PrisonerReader interface {
	GetPrisoner(ctx context.Context, prisonerNumber string) (*prisonapi.Prisoner, error)
}

// OptionsReader supplies select options for a reference domain.
type OptionsReader interface {
	Domain(ctx context.Context, domain string) ([]reference.Option, error)
}

// Auditor records staff actions.
type Auditor interface {
	Log(ctx context.Context, action compliance.AuditAction, who, prisonerNumber string, details any) error
}

// EditPage is the view model of a single-field edit page.
type EditPage struct {
	Prisoner  prisonapi.Prisoner
	Meta      FieldMeta
	Value     string
	Options   []reference.Option
	Error     string
	Notice    string
	Action    string
	CancelURL string
}

// Builder turns EditRoutes into handlers sharing one set of collaborators.
type Builder struct {
	prisoners PrisonerReader
	options   OptionsReader
	flash     *flash.Messenger
	audit     Auditor
	renderer  Renderer
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
}

// NewBuilder creates a builder sharing the given collaborators.
func NewBuilder(prisoners PrisonerReader, options OptionsReader, fm *flash.Messenger, audit Auditor, renderer Renderer, m *metrics.BookingMetrics, logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Builder{
		prisoners: prisoners,
		options:   options,
		flash:     fm,
		audit:     audit,
		renderer:  renderer,
		metrics:   m,
		logger:    logger,
	}
}

// Mount registers GET and POST handlers for every route.
func (b *Builder) Mount(r chi.Router, routes ...EditRoute) {
	for _, route := range routes {
		pattern := "/prisoner/{prisonerNumber}/personal/" + route.Path
		r.Get(pattern, b.Show(route))
		r.Post(pattern, b.Save(route))
	}
}

// Show renders the edit page with the current (or flashed) value.
func (b *Builder) Show(route EditRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		prisoner, ok := b.prisoner(w, r)
		if !ok {
			return
		}

		msg, _, err := b.flash.ReadRequest(ctx, tenancy.Username(ctx), r.URL.Query())
		if err != nil {
			b.logger.Warn("failed to read flash", "error", err)
		}

		value := msg.Value(route.Meta.Name)
		if msg.Form == nil {
			value, err = route.Get(ctx, prisoner.PrisonerNumber)
			if err != nil {
				b.fail(w, r, "failed to read "+route.Meta.Name, err)
				return
			}
		}

		page := EditPage{
			Prisoner:  *prisoner,
			Meta:      route.Meta,
			Value:     value,
			Error:     msg.ErrorFor(route.Meta.Name),
			Notice:    msg.Notice,
			Action:    r.URL.Path,
			CancelURL: overviewPath(prisoner.PrisonerNumber),
		}
		if route.Meta.Domain != "" {
			page.Options, err = b.options.Domain(ctx, route.Meta.Domain)
			if err != nil {
				b.fail(w, r, "failed to load options", err)
				return
			}
		}
		b.renderer.Render(w, http.StatusOK, PageEditField, page)
	}
}

// Save validates and stores the submitted value, then returns to the overview.
func (b *Builder) Save(route EditRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		pn := chi.URLParam(r, "prisonerNumber")
		value := strings.TrimSpace(r.PostForm.Get(route.Meta.Name))
		back := r.URL.Path

		if route.Validate != nil {
			if problem := route.Validate(value); problem != "" {
				b.metrics.ObserveValidationFailure(route.Path)
				b.redirectWithFlash(w, r, back, flash.Message{
					Errors: []flash.FieldError{{Field: route.Meta.Name, Message: problem}},
					Form:   r.PostForm,
				})
				return
			}
		}

		if err := route.Set(ctx, pn, value); err != nil {
			msg := flash.Message{Form: r.PostForm}
			switch {
			case errors.Is(err, prisonapi.ErrDuplicate) && route.Meta.DuplicateNoun != "":
				msg.Errors = []flash.FieldError{{
					Field:   route.Meta.Name,
					Message: "This " + route.Meta.DuplicateNoun + " already exists for this prisoner",
				}}
			case errors.Is(err, prisonapi.ErrNotFound):
				b.renderer.Render(w, http.StatusNotFound, PageNotFound, nil)
				return
			default:
				b.logger.Error("failed to save personal detail", "error", err, "field", route.Meta.Name, "prisoner_number", pn)
				msg.Notice = genericSaveError
			}
			b.redirectWithFlash(w, r, back, msg)
			return
		}

		who := tenancy.Username(ctx)
		if b.audit != nil {
			details := map[string]string{"field": route.Meta.Name}
			if route.Meta.Action == compliance.ActionContactAdded {
				details["fingerprint"] = compliance.Fingerprint(value)
			}
			if err := b.audit.Log(ctx, route.Meta.Action, who, pn, details); err != nil {
				b.logger.Error("failed to audit personal detail", "error", err, "field", route.Meta.Name)
			}
		}
		b.logger.Info("personal detail saved", "field", route.Meta.Name, "prisoner_number", pn, "staff", who)
		b.redirectWithFlash(w, r, overviewPath(pn), flash.Message{Notice: route.Meta.Label + " updated"})
	}
}

func (b *Builder) prisoner(w http.ResponseWriter, r *http.Request) (*prisonapi.Prisoner, bool) {
	prisoner, err := b.prisoners.GetPrisoner(r.Context(), chi.URLParam(r, "prisonerNumber"))
	if err != nil {
		b.fail(w, r, "failed to load prisoner", err)
		return nil, false
	}
	return prisoner, true
}

func (b *Builder) redirectWithFlash(w http.ResponseWriter, r *http.Request, target string, msg flash.Message) {
	ctx := r.Context()
	id, err := b.flash.Write(ctx, tenancy.Username(ctx), msg)
	if err != nil {
		b.logger.Error("failed to write flash", "error", err)
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, flash.RedirectTo(target, id), http.StatusSeeOther)
}

func (b *Builder) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, prisonapi.ErrNotFound) {
		b.renderer.Render(w, http.StatusNotFound, PageNotFound, nil)
		return
	}
	b.logger.Error(msg, "error", err, "path", r.URL.Path)
	b.renderer.Render(w, http.StatusInternalServerError, PageError, nil)
}

func overviewPath(prisonerNumber string) string {
	return "/prisoner/" + url.PathEscape(prisonerNumber) + "/personal"
}
