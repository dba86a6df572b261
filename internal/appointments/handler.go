package appointments

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/prisoner-profile/internal/flash"
	"github.com/wolfman30/prisoner-profile/internal/movementslip"
	"github.com/wolfman30/prisoner-profile/internal/observability/metrics"
	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/internal/reference"
	"github.com/wolfman30/prisoner-profile/internal/schedule"
	"github.com/wolfman30/prisoner-profile/internal/tenancy"
	"github.com/wolfman30/prisoner-profile/internal/videolink"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

const (
	genericSubmitError = "Sorry, there was a problem saving the appointment. Please try again."

	// An amendment stays with the API that holds the booking.
	changeCategoryError = "You cannot change this appointment to that type. Add a new appointment instead"
)

// PrisonerReader reads prisoners and their prison appointments.
type PrisonerReader interface {
	GetPrisoner(ctx context.Context, prisonerNumber string) (*prisonapi.Prisoner, error)
	GetAppointment(ctx context.Context, appointmentID int64) (*prisonapi.Appointment, error)
}

// BookingReader reads video link bookings.
type BookingReader interface {
	GetBooking(ctx context.Context, bookingID int64) (*videolink.Booking, error)
}

// ReferenceReader loads the form vocabularies.
type ReferenceReader interface {
	AppointmentData(ctx context.Context, prisonID string) (*reference.AppointmentData, error)
}

// ScheduleReader loads what is already booked on a day.
type ScheduleReader interface {
	ForPrisoner(ctx context.Context, bookingID int64, date time.Time) ([]schedule.Event, error)
	ForLocation(ctx context.Context, prisonID string, locationID int64, date time.Time) ([]schedule.Event, error)
}

// Config wires the handler's collaborators.
type Config struct {
	Prisoners PrisonerReader
	Bookings  BookingReader
	Reference ReferenceReader
	Schedule  ScheduleReader
	Submitter *Submitter
	Drafts    *DraftStore
	Flash     *flash.Messenger
	Slips     movementslip.Store
	Audit     Auditor
	Renderer  Renderer
	Metrics   *metrics.BookingMetrics
	Logger    *logging.Logger
	Location  *time.Location
	Now       func() time.Time
}

// Handler serves the appointment booking journey.
type Handler struct {
	prisoners PrisonerReader
	bookings  BookingReader
	reference ReferenceReader
	schedule  ScheduleReader
	submitter *Submitter
	drafts    *DraftStore
	flash     *flash.Messenger
	slips     movementslip.Store
	audit     Auditor
	renderer  Renderer
	validator *Validator
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewHandler creates the appointments handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Handler{
		prisoners: cfg.Prisoners,
		bookings:  cfg.Bookings,
		reference: cfg.Reference,
		schedule:  cfg.Schedule,
		submitter: cfg.Submitter,
		drafts:    cfg.Drafts,
		flash:     cfg.Flash,
		slips:     cfg.Slips,
		audit:     cfg.Audit,
		renderer:  cfg.Renderer,
		validator: NewValidator(cfg.Location, cfg.Now),
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		loc:       cfg.Location,
		now:       cfg.Now,
	}
}

// Routes registers the journey under r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/prisoner/{prisonerNumber}", func(r chi.Router) {
		r.Get("/add-appointment", h.AddForm)
		r.Post("/add-appointment", h.SubmitAppointment)
		r.Get("/edit-appointment/{appointmentId}", h.EditForm)
		r.Post("/edit-appointment/{appointmentId}", h.SubmitAppointment)
		r.Get("/appointments/{draftId}/court-hearing", h.HearingForm)
		r.Post("/appointments/{draftId}/court-hearing", h.SubmitHearing)
		r.Get("/appointments/{draftId}/confirmation", h.Confirmation)
		r.Get("/appointments/{bookingId}/movement-slip", h.MovementSlip)
	})
}

// draftLoader builds the starting draft once the prisoner and reference
// data are known.
type draftLoader func(ctx context.Context, prisoner *prisonapi.Prisoner, data *reference.AppointmentData) (*Draft, error)

func newDraft(_ context.Context, prisoner *prisonapi.Prisoner, _ *reference.AppointmentData) (*Draft, error) {
	return &Draft{Prisoner: *prisoner}, nil
}

// AddForm handles GET /prisoner/{prisonerNumber}/add-appointment.
func (h *Handler) AddForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, newDraft)
}

// EditForm handles GET /prisoner/{prisonerNumber}/edit-appointment/{appointmentId}.
// A bookingId query parameter selects a video link booking instead of a
// prison appointment.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	loader, ok := h.editLoader(r)
	if !ok {
		h.notFound(w)
		return
	}
	h.renderForm(w, r, loader)
}

func (h *Handler) editLoader(r *http.Request) (draftLoader, bool) {
	appointmentID, err := strconv.ParseInt(chi.URLParam(r, "appointmentId"), 10, 64)
	if err != nil {
		return nil, false
	}
	if raw := r.URL.Query().Get("bookingId"); raw != "" {
		bookingID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, false
		}
		return func(ctx context.Context, prisoner *prisonapi.Prisoner, data *reference.AppointmentData) (*Draft, error) {
			b, err := h.bookings.GetBooking(ctx, bookingID)
			if err != nil {
				return nil, err
			}
			return DraftFromBooking(b, *prisoner, data)
		}, true
	}
	return func(ctx context.Context, prisoner *prisonapi.Prisoner, _ *reference.AppointmentData) (*Draft, error) {
		a, err := h.prisoners.GetAppointment(ctx, appointmentID)
		if err != nil {
			return nil, err
		}
		if a.BookingID != 0 && a.BookingID != prisoner.BookingID {
			return nil, prisonapi.ErrNotFound
		}
		return DraftFromAppointment(a, *prisoner, h.loc)
	}, true
}

func (h *Handler) loaderFor(r *http.Request) (draftLoader, bool) {
	if chi.URLParam(r, "appointmentId") == "" {
		return newDraft, true
	}
	return h.editLoader(r)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, load draftLoader) {
	ctx := r.Context()
	prisoner, data, ok := h.prisonerAndData(w, r)
	if !ok {
		return
	}
	draft, err := load(ctx, prisoner, data)
	if err != nil {
		h.upstreamError(w, r, "failed to load appointment", err)
		return
	}

	msg := h.readFlash(r)
	if msg.Form != nil {
		draft.ApplyAppointmentForm(url.Values(msg.Form))
	}

	q := r.URL.Query()
	date := h.scheduleDate(q.Get("date"), draft.Date)
	page := FormPage{
		Prisoner:             *prisoner,
		Draft:                draft,
		Data:                 data,
		Visibility:           VisibilityFor(draft.AppointmentType),
		MeetingTypesAsRadios: MeetingTypesAsRadios(len(data.MeetingTypes)),
		RepeatPeriods:        RepeatPeriods,
		Errors:               msg.Errors,
		Notice:               msg.Notice,
		PrisonerSchedule:     h.prisonerTable(ctx, prisoner, date),
		Action:               r.URL.Path + preservedQuery(q),
		Editing:              draft.Editing(),
	}
	location := q.Get("location")
	if location == "" {
		location = draft.Location
	}
	page.LocationSchedule = h.locationTable(ctx, prisoner, data, location, date)

	h.renderer.Render(w, http.StatusOK, PageAppointmentForm, page)
}

// SubmitAppointment handles POST for both the add and edit forms.
func (h *Handler) SubmitAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	load, ok := h.loaderFor(r)
	if !ok {
		h.notFound(w)
		return
	}
	prisoner, data, ok := h.prisonerAndData(w, r)
	if !ok {
		return
	}
	draft, err := load(ctx, prisoner, data)
	if err != nil {
		h.upstreamError(w, r, "failed to load appointment", err)
		return
	}
	loaded := draft.Category()
	draft.ApplyAppointmentForm(r.PostForm)

	back := r.URL.Path + preservedQuery(r.URL.Query())
	errs := h.validator.Appointment(draft)
	if draft.Editing() && draft.AppointmentType != "" && draft.Category() != loaded {
		errs = append(errs, flash.FieldError{Field: "appointmentType", Message: changeCategoryError})
	}
	if len(errs) > 0 {
		h.metrics.ObserveValidationFailure(PageAppointmentForm)
		h.redirectWithFlash(w, r, back, flash.Message{Errors: errs, Form: r.PostForm})
		return
	}

	if draft.Category() == CategoryCourt {
		draftID, err := h.drafts.Create(ctx, tenancy.Username(ctx), draft)
		if err != nil {
			h.logger.Error("failed to save draft", "error", err, "prisoner_number", prisoner.PrisonerNumber)
			h.redirectWithFlash(w, r, back, flash.Message{Notice: genericSubmitError, Form: r.PostForm})
			return
		}
		http.Redirect(w, r, journeyPath(prisoner.PrisonerNumber, draftID, "court-hearing"), http.StatusSeeOther)
		return
	}

	h.submit(w, r, draft, data, "", back, r.PostForm)
}

// submit sends the draft upstream and moves on to the confirmation page. On
// failure the posted form is flashed back to the page at back.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request, draft *Draft, data *reference.AppointmentData, draftID, back string, form url.Values) {
	ctx := r.Context()
	owner := tenancy.Username(ctx)
	pn := draft.Prisoner.PrisonerNumber

	req, err := BuildRequest(draft, data, h.loc)
	if err != nil {
		h.logger.Error("failed to build booking request", "error", err, "prisoner_number", pn)
		h.redirectWithFlash(w, r, back, flash.Message{Notice: genericSubmitError, Form: form})
		return
	}
	bookingID, err := h.submitter.Submit(ctx, pn, req)
	if err != nil {
		h.logger.Error("booking submission failed", "error", err, "variant", req.Variant(), "prisoner_number", pn)
		h.redirectWithFlash(w, r, back, flash.Message{Notice: genericSubmitError, Form: form})
		return
	}

	draft.BookingID = bookingID
	if draftID == "" {
		draftID, err = h.drafts.Create(ctx, owner, draft)
	} else {
		err = h.drafts.Save(ctx, owner, draftID, draft)
	}
	if err != nil {
		// The booking exists upstream; without the draft there is nothing to confirm.
		h.logger.Error("failed to save confirmed draft", "error", err, "booking_id", bookingID)
		h.renderer.Render(w, http.StatusInternalServerError, PageError, nil)
		return
	}

	if err := h.slips.Create(ctx, h.slipFor(ctx, draft, data)); err != nil {
		h.logger.Error("failed to create movement slip", "error", err, "booking_id", bookingID)
	}
	http.Redirect(w, r, journeyPath(pn, draftID, "confirmation"), http.StatusSeeOther)
}

func (h *Handler) slipFor(ctx context.Context, d *Draft, data *reference.AppointmentData) movementslip.Slip {
	createdBy := tenancy.Username(ctx)
	if staff, ok := tenancy.StaffFromContext(ctx); ok && staff.DisplayName != "" {
		createdBy = staff.DisplayName
	}
	comments := d.Comment
	if !VisibilityFor(d.AppointmentType).Comments {
		comments = d.NotesForStaff
	}
	slip := movementslip.Slip{
		BookingID:      strconv.FormatInt(d.BookingID, 10),
		Owner:          tenancy.Username(ctx),
		PrisonerName:   d.Prisoner.FullName(),
		PrisonerNumber: d.Prisoner.PrisonerNumber,
		CellLocation:   d.Prisoner.CellLocation,
		Reason:         reference.Describe(data.AppointmentTypes, d.AppointmentType),
		Location:       data.LocationText(d.Location),
		Comments:       comments,
		CreatedBy:      createdBy,
		CreatedAt:      h.now().UTC(),
	}
	if start, end, err := d.window(h.loc); err == nil {
		slip.Start, slip.End = start, end
	}
	return slip
}

func (h *Handler) prisonerAndData(w http.ResponseWriter, r *http.Request) (*prisonapi.Prisoner, *reference.AppointmentData, bool) {
	ctx := r.Context()
	prisoner, err := h.prisoners.GetPrisoner(ctx, chi.URLParam(r, "prisonerNumber"))
	if err != nil {
		h.upstreamError(w, r, "failed to load prisoner", err)
		return nil, nil, false
	}
	data, err := h.reference.AppointmentData(ctx, prisoner.PrisonID)
	if err != nil {
		h.upstreamError(w, r, "failed to load reference data", err)
		return nil, nil, false
	}
	return prisoner, data, true
}

func (h *Handler) readFlash(r *http.Request) flash.Message {
	ctx := r.Context()
	msg, _, err := h.flash.ReadRequest(ctx, tenancy.Username(ctx), r.URL.Query())
	if err != nil {
		h.logger.Warn("failed to read flash", "error", err)
	}
	return msg
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target string, msg flash.Message) {
	ctx := r.Context()
	id, err := h.flash.Write(ctx, tenancy.Username(ctx), msg)
	if err != nil {
		h.logger.Error("failed to write flash", "error", err)
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, flash.RedirectTo(target, id), http.StatusSeeOther)
}

func (h *Handler) scheduleDate(query, draftDate string) time.Time {
	for _, v := range []string{query, draftDate} {
		if v == "" {
			continue
		}
		if d, err := parseDate(v, h.loc); err == nil {
			return d
		}
	}
	return truncateDay(h.now().In(h.loc))
}

func (h *Handler) prisonerTable(ctx context.Context, prisoner *prisonapi.Prisoner, date time.Time) schedule.Table {
	table := schedule.Table{Title: prisoner.FullName() + "'s schedule", Date: date}
	events, err := h.schedule.ForPrisoner(ctx, prisoner.BookingID, date)
	if err != nil {
		h.logger.Warn("failed to load prisoner schedule", "error", err, "prisoner_number", prisoner.PrisonerNumber)
		return table
	}
	table.Events = events
	return table
}

func (h *Handler) locationTable(ctx context.Context, prisoner *prisonapi.Prisoner, data *reference.AppointmentData, value string, date time.Time) *schedule.Table {
	if value == "" {
		return nil
	}
	loc, ok := data.FindLocation(value)
	if !ok {
		return nil
	}
	table := &schedule.Table{Title: loc.Text, Date: date}
	events, err := h.schedule.ForLocation(ctx, prisoner.PrisonID, loc.ID, date)
	if err != nil {
		h.logger.Warn("failed to load location schedule", "error", err, "location_id", loc.ID)
		return table
	}
	table.Events = events
	return table
}

func (h *Handler) upstreamError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, prisonapi.ErrNotFound) || errors.Is(err, videolink.ErrNotFound) {
		h.notFound(w)
		return
	}
	h.logger.Error(msg, "error", err, "path", r.URL.Path)
	h.renderer.Render(w, http.StatusInternalServerError, PageError, nil)
}

func (h *Handler) notFound(w http.ResponseWriter) {
	h.renderer.Render(w, http.StatusNotFound, PageNotFound, nil)
}

func journeyPath(prisonerNumber, id, step string) string {
	return "/prisoner/" + url.PathEscape(prisonerNumber) + "/appointments/" + url.PathEscape(id) + "/" + step
}

// preservedQuery keeps the parameters that identify the form being edited.
func preservedQuery(q url.Values) string {
	keep := url.Values{}
	if v := q.Get("bookingId"); v != "" {
		keep.Set("bookingId", v)
	}
	if len(keep) == 0 {
		return ""
	}
	return "?" + keep.Encode()
}

func samePrisoner(d *Draft, prisonerNumber string) bool {
	return samePrisonerNumber(d.Prisoner.PrisonerNumber, prisonerNumber)
}

func samePrisonerNumber(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
