package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/prisoner-profile/internal/appointments"
	"github.com/wolfman30/prisoner-profile/internal/flash"
	"github.com/wolfman30/prisoner-profile/internal/movementslip"
	"github.com/wolfman30/prisoner-profile/internal/personal"
	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/internal/reference"
	"github.com/wolfman30/prisoner-profile/internal/schedule"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

var prisoner = prisonapi.Prisoner{PrisonerNumber: "G6123VU", FirstName: "John", LastName: "Saunders"}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(logging.Discard())
	require.NoError(t, err)
	return r
}

func render(t *testing.T, r *Renderer, status int, page string, data any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Render(rec, status, page, data)
	return rec
}

func testData() *reference.AppointmentData {
	return &reference.AppointmentData{
		AppointmentTypes: []reference.Option{{Value: "OIC", Text: "Adjudication Review"}, {Value: "VLPM", Text: "Video Link - Probation Meeting"}},
		Locations:        []reference.Location{{ID: 1, Key: "MDI-VIDEO-1", Text: "Video room 1"}},
		ProbationTeams:   []reference.Option{{Value: "BLKPPP", Text: "Blackpool"}},
		MeetingTypes:     []reference.Option{{Value: "PSR", Text: "Pre-sentence report"}, {Value: "RR", Text: "Recall report"}},
		Courts:           []reference.Option{{Value: "ABDRMC", Text: "Aberdare Magistrates"}},
		HearingTypes:     []reference.Option{{Value: "TRIAL", Text: "Trial"}},
	}
}

func TestNewRenderer_ParsesEveryPage(t *testing.T) {
	r := newTestRenderer(t)
	for page := range pages {
		assert.Contains(t, r.pages, page)
	}
}

func TestRender_AppointmentFormVisibility(t *testing.T) {
	r := newTestRenderer(t)
	d := &appointments.Draft{AppointmentType: "VLPM", MeetingType: "RR"}
	page := appointments.FormPage{
		Prisoner:             prisoner,
		Draft:                d,
		Data:                 testData(),
		Visibility:           appointments.VisibilityFor(d.AppointmentType),
		MeetingTypesAsRadios: true,
		RepeatPeriods:        appointments.RepeatPeriods,
		Errors:               []flash.FieldError{{Field: "date", Message: "Enter a date"}},
		PrisonerSchedule:     schedule.Table{Title: "John Saunders's schedule"},
		Action:               "/prisoner/G6123VU/add-appointment",
	}

	rec := render(t, r, http.StatusOK, appointments.PageAppointmentForm, page)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "Add an appointment")
	assert.Contains(t, body, `id="probation-fields" data-group="probation">`)
	assert.Contains(t, body, `type="radio" name="meetingType" value="RR" checked`)
	assert.Contains(t, body, `href="#date">Enter a date`)
	assert.Contains(t, body, "Notes for prison staff")
	assert.Contains(t, body, `id="recurring-fields" data-group="recurring" hidden`)
	assert.Contains(t, body, `id="comment-fields" data-group="comments" hidden`)
	assert.Contains(t, body, `id="notes-fields" data-group="notes">`)
	assert.Contains(t, body, "Nothing scheduled")
}

func TestRender_AppointmentFormStandard(t *testing.T) {
	r := newTestRenderer(t)
	d := &appointments.Draft{AppointmentType: "OIC", Comment: "<b>bring papers</b>"}
	page := appointments.FormPage{
		Prisoner:   prisoner,
		Draft:      d,
		Data:       testData(),
		Visibility: appointments.VisibilityFor(d.AppointmentType),
		Action:     "/prisoner/G6123VU/add-appointment",
	}

	body := render(t, r, http.StatusOK, appointments.PageAppointmentForm, page).Body.String()
	assert.Contains(t, body, `id="recurring-fields" data-group="recurring">`)
	assert.Contains(t, body, "&lt;b&gt;bring papers&lt;/b&gt;")
	assert.Contains(t, body, `id="probation-fields" data-group="probation" hidden`)
	assert.Contains(t, body, `id="notes-fields" data-group="notes" hidden`)
	assert.Contains(t, body, "End time (optional)")
}

func TestRender_AppointmentFormBeforeTypeChosen(t *testing.T) {
	r := newTestRenderer(t)
	d := &appointments.Draft{}
	page := appointments.FormPage{
		Prisoner:   prisoner,
		Draft:      d,
		Data:       testData(),
		Visibility: appointments.VisibilityFor(d.AppointmentType),
		Action:     "/prisoner/G6123VU/add-appointment",
	}

	body := render(t, r, http.StatusOK, appointments.PageAppointmentForm, page).Body.String()
	// A probation meeting can be completed on the first submission.
	assert.Contains(t, body, `id="probation-fields" data-group="probation">`)
	assert.Contains(t, body, `name="probationTeam"`)
	assert.Contains(t, body, `name="officerDetailsKnown"`)
	assert.Contains(t, body, `id="notes-fields" data-group="notes">`)
	assert.Contains(t, body, `id="comment-fields" data-group="comments">`)
	assert.Contains(t, body, `id="recurring-fields" data-group="recurring">`)
	assert.Contains(t, body, `<option value="VLPM" data-groups="probation notes">`)
	assert.Contains(t, body, `<option value="OIC" data-groups="comments recurring">`)
}

func TestRender_AppointmentFormEditingHasNoRepeat(t *testing.T) {
	r := newTestRenderer(t)
	d := &appointments.Draft{AppointmentType: "OIC", AppointmentID: 77}
	page := appointments.FormPage{
		Prisoner:   prisoner,
		Draft:      d,
		Data:       testData(),
		Visibility: appointments.VisibilityFor(d.AppointmentType),
		Editing:    true,
	}

	body := render(t, r, http.StatusOK, appointments.PageAppointmentForm, page).Body.String()
	assert.Contains(t, body, "Change appointment details")
	assert.NotContains(t, body, `id="recurring-fields"`)
	assert.NotContains(t, body, `name="repeats"`)
}

func TestRender_CourtHearing(t *testing.T) {
	r := newTestRenderer(t)
	page := appointments.HearingPage{
		Prisoner:  prisoner,
		Draft:     &appointments.Draft{AppointmentType: "VLB", PreRequired: "yes", PreDuration: "30"},
		Data:      testData(),
		Durations: appointments.BriefingDurations,
		Errors:    []flash.FieldError{{Field: "videoLink", Message: "Enter either a CVP number or a video link, not both"}},
		BackLink:  "/prisoner/G6123VU/add-appointment",
	}

	body := render(t, r, http.StatusOK, appointments.PageCourtHearing, page).Body.String()
	assert.Contains(t, body, `<option value="30" selected>30 minutes</option>`)
	assert.Contains(t, body, `name="preRequired" value="yes" checked`)
	assert.Contains(t, body, "Enter either a CVP number or a video link, not both")
}

func TestRender_Confirmation(t *testing.T) {
	r := newTestRenderer(t)
	page := appointments.ConfirmationPage{
		Prisoner: prisoner,
		Summary: appointments.Summary{Sections: []appointments.Section{
			{Name: "common", Title: "Appointment details", Rows: []appointments.Row{{Key: "Type", Value: "Adjudication Review"}}},
		}},
		MovementSlipURL: "/prisoner/G6123VU/movement-slip/1",
		ProfileURL:      "/prisoner/G6123VU",
	}

	body := render(t, r, http.StatusOK, appointments.PageConfirmation, page).Body.String()
	assert.Contains(t, body, "Appointment booked")
	assert.Contains(t, body, "<dt>Type</dt>")
	assert.Contains(t, body, `href="/prisoner/G6123VU/movement-slip/1"`)
}

func TestRender_MovementSlipHasNoChrome(t *testing.T) {
	r := newTestRenderer(t)
	start := time.Date(2026, 10, 17, 11, 5, 0, 0, time.UTC)
	end := start.Add(70 * time.Minute)
	slip := &movementslip.Slip{
		PrisonerName:   "John Saunders",
		PrisonerNumber: "G6123VU",
		Reason:         "Adjudication Review",
		Location:       "Video room 1",
		Start:          start,
		End:            &end,
		CreatedBy:      "Jo Smith",
		CreatedAt:      time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC),
	}

	body := render(t, r, http.StatusOK, appointments.PageMovementSlip, appointments.SlipPage{Slip: slip}).Body.String()
	assert.NotContains(t, body, "app-header")
	assert.Contains(t, body, "Saturday 17 October 2026")
	assert.Contains(t, body, "11:05 to 12:15")
	assert.NotContains(t, body, "<dt>Comments</dt>")
	assert.Contains(t, body, "Created by Jo Smith on Friday 16 October 2026 at 10:00")
}

func TestRender_EditFieldSelect(t *testing.T) {
	r := newTestRenderer(t)
	page := personal.EditPage{
		Prisoner: prisoner,
		Meta:     personal.FieldMeta{Name: "nationality", Label: "Nationality", Kind: personal.InputSelect},
		Value:    "FREN",
		Options:  []reference.Option{{Value: "BRIT", Text: "British"}, {Value: "FREN", Text: "French"}},
		Error:    "Select a nationality",
	}

	body := render(t, r, http.StatusOK, personal.PageEditField, page).Body.String()
	assert.Contains(t, body, `<option value="FREN" selected>French</option>`)
	assert.Contains(t, body, "Select a nationality")
}

func TestRender_PersonalOverviewHistory(t *testing.T) {
	r := newTestRenderer(t)
	page := personal.OverviewPage{
		Prisoner: prisoner,
		Rows:     []personal.OverviewRow{{Label: "Height", Value: "182", Suffix: "cm", EditURL: "/prisoner/G6123VU/personal/height"}},
		History: []personal.HistoryRow{
			{When: time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC), Who: "jsmith", Description: "Height changed"},
		},
	}

	body := render(t, r, http.StatusOK, personal.PageOverview, page).Body.String()
	assert.Contains(t, body, "182 cm")
	assert.Contains(t, body, "<td>Thursday 15 October 2026 at 14:30</td><td>Height changed</td><td>jsmith</td>")
	assert.NotContains(t, body, "No changes recorded")

	page.History = nil
	body = render(t, r, http.StatusOK, personal.PageOverview, page).Body.String()
	assert.Contains(t, body, "No changes recorded")
}

func TestRender_NotFoundWithNilData(t *testing.T) {
	r := newTestRenderer(t)
	rec := render(t, r, http.StatusNotFound, appointments.PageNotFound, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestRender_UnknownPage(t *testing.T) {
	r := newTestRenderer(t)
	rec := render(t, r, http.StatusOK, "missing", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRender_TemplateErrorWritesNothingPartial(t *testing.T) {
	r := newTestRenderer(t)
	rec := render(t, r, http.StatusOK, appointments.PageConfirmation, struct{}{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<html")
}
