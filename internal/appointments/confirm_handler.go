package appointments

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/prisoner-profile/internal/compliance"
	"github.com/wolfman30/prisoner-profile/internal/movementslip"
	"github.com/wolfman30/prisoner-profile/internal/tenancy"
)

// Confirmation handles GET /prisoner/{prisonerNumber}/appointments/{draftId}/confirmation.
func (h *Handler) Confirmation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pn := chi.URLParam(r, "prisonerNumber")
	draft, ok, err := h.drafts.Load(ctx, tenancy.Username(ctx), chi.URLParam(r, "draftId"))
	if err != nil {
		h.upstreamError(w, r, "failed to load draft", err)
		return
	}
	if !ok || draft.BookingID == 0 || !samePrisoner(draft, pn) {
		h.notFound(w)
		return
	}

	data, err := h.reference.AppointmentData(ctx, draft.Prisoner.PrisonID)
	if err != nil {
		h.upstreamError(w, r, "failed to load reference data", err)
		return
	}

	profile := "/prisoner/" + url.PathEscape(draft.Prisoner.PrisonerNumber)
	page := ConfirmationPage{
		Prisoner:        draft.Prisoner,
		Summary:         BuildSummary(draft, data, h.loc),
		Editing:         draft.Editing(),
		MovementSlipURL: journeyPath(draft.Prisoner.PrisonerNumber, strconv.FormatInt(draft.BookingID, 10), "movement-slip"),
		ProfileURL:      profile,
	}
	h.renderer.Render(w, http.StatusOK, PageConfirmation, page)
}

// MovementSlip handles GET /prisoner/{prisonerNumber}/appointments/{bookingId}/movement-slip.
// The slip is shown once; any later request gets a 404.
func (h *Handler) MovementSlip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pn := chi.URLParam(r, "prisonerNumber")
	bookingID := chi.URLParam(r, "bookingId")
	owner := tenancy.Username(ctx)

	slip, err := h.slips.Consume(ctx, bookingID, owner, pn)
	if err != nil {
		if !errors.Is(err, movementslip.ErrNotFound) {
			h.logger.Error("failed to load movement slip", "error", err, "booking_id", bookingID)
		}
		h.metrics.ObserveSlipView("denied")
		h.notFound(w)
		return
	}

	h.metrics.ObserveSlipView("rendered")
	if h.audit != nil {
		if err := h.audit.Log(ctx, compliance.ActionMovementSlipViewed, owner, slip.PrisonerNumber, map[string]string{"bookingId": bookingID}); err != nil {
			h.logger.Error("failed to audit movement slip view", "error", err, "booking_id", bookingID)
		}
	}
	h.renderer.Render(w, http.StatusOK, PageMovementSlip, SlipPage{Slip: slip})
}
