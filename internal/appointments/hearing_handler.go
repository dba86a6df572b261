package appointments

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/prisoner-profile/internal/flash"
	"github.com/wolfman30/prisoner-profile/internal/reference"
	"github.com/wolfman30/prisoner-profile/internal/schedule"
	"github.com/wolfman30/prisoner-profile/internal/tenancy"
)

// HearingForm handles GET /prisoner/{prisonerNumber}/appointments/{draftId}/court-hearing.
func (h *Handler) HearingForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	draft, draftID, ok := h.courtDraft(w, r)
	if !ok {
		return
	}
	data, err := h.reference.AppointmentData(ctx, draft.Prisoner.PrisonID)
	if err != nil {
		h.upstreamError(w, r, "failed to load reference data", err)
		return
	}

	msg := h.readFlash(r)
	if msg.Form != nil {
		draft.ApplyHearingForm(url.Values(msg.Form))
	}

	q := r.URL.Query()
	preLocation := firstNonEmpty(q.Get("preLocation"), draft.PreLocation)
	postLocation := firstNonEmpty(q.Get("postLocation"), draft.PostLocation)
	date := h.scheduleDate("", draft.Date)

	back := "/prisoner/" + url.PathEscape(draft.Prisoner.PrisonerNumber) + "/add-appointment"
	if draft.VideoBookingID != 0 {
		id := strconv.FormatInt(draft.VideoBookingID, 10)
		back = "/prisoner/" + url.PathEscape(draft.Prisoner.PrisonerNumber) + "/edit-appointment/" + id + "?bookingId=" + id
	}

	page := HearingPage{
		Prisoner:     draft.Prisoner,
		Draft:        draft,
		Data:         data,
		Durations:    BriefingDurations,
		Errors:       msg.Errors,
		Notice:       msg.Notice,
		PreSchedule:  h.briefingTable(ctx, draft, data, preLocation, date),
		PostSchedule: h.briefingTable(ctx, draft, data, postLocation, date),
		Action:       journeyPath(draft.Prisoner.PrisonerNumber, draftID, "court-hearing"),
		BackLink:     back,
	}
	h.renderer.Render(w, http.StatusOK, PageCourtHearing, page)
}

// SubmitHearing handles POST /prisoner/{prisonerNumber}/appointments/{draftId}/court-hearing.
func (h *Handler) SubmitHearing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	draft, draftID, ok := h.courtDraft(w, r)
	if !ok {
		return
	}
	draft.ApplyHearingForm(r.PostForm)

	back := journeyPath(draft.Prisoner.PrisonerNumber, draftID, "court-hearing")
	if errs := h.validator.Hearing(draft); len(errs) > 0 {
		h.metrics.ObserveValidationFailure(PageCourtHearing)
		h.redirectWithFlash(w, r, back, flash.Message{Errors: errs, Form: r.PostForm})
		return
	}

	data, err := h.reference.AppointmentData(ctx, draft.Prisoner.PrisonID)
	if err != nil {
		h.upstreamError(w, r, "failed to load reference data", err)
		return
	}
	h.submit(w, r, draft, data, draftID, back, r.PostForm)
}

// courtDraft loads the caller's draft for a court hearing that has not been
// submitted yet.
func (h *Handler) courtDraft(w http.ResponseWriter, r *http.Request) (*Draft, string, bool) {
	ctx := r.Context()
	draftID := chi.URLParam(r, "draftId")
	draft, ok, err := h.drafts.Load(ctx, tenancy.Username(ctx), draftID)
	if err != nil {
		h.upstreamError(w, r, "failed to load draft", err)
		return nil, "", false
	}
	if !ok || draft.Category() != CategoryCourt || draft.BookingID != 0 ||
		!samePrisoner(draft, chi.URLParam(r, "prisonerNumber")) {
		h.notFound(w)
		return nil, "", false
	}
	return draft, draftID, true
}

func (h *Handler) briefingTable(ctx context.Context, d *Draft, data *reference.AppointmentData, value string, date time.Time) *schedule.Table {
	return h.locationTable(ctx, &d.Prisoner, data, value, date)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
