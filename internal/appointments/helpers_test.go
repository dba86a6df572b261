package appointments

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/prisoner-profile/internal/compliance"
	"github.com/wolfman30/prisoner-profile/internal/flash"
	"github.com/wolfman30/prisoner-profile/internal/movementslip"
	"github.com/wolfman30/prisoner-profile/internal/observability/metrics"
	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/internal/reference"
	"github.com/wolfman30/prisoner-profile/internal/schedule"
	"github.com/wolfman30/prisoner-profile/internal/statestore"
	"github.com/wolfman30/prisoner-profile/internal/tenancy"
	"github.com/wolfman30/prisoner-profile/internal/videolink"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

var (
	london, _ = time.LoadLocation("Europe/London")
	fixedNow  = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	tomorrow  = "17/10/2026"
)

func testPrisoner() prisonapi.Prisoner {
	return prisonapi.Prisoner{
		PrisonerNumber: "G6123VU",
		BookingID:      1102484,
		FirstName:      "John",
		LastName:       "Saunders",
		PrisonID:       "MDI",
		CellLocation:   "1-1-035",
	}
}

func testData() *reference.AppointmentData {
	return &reference.AppointmentData{
		AppointmentTypes: []reference.Option{
			{Value: "ACTI", Text: "Activities"},
			{Value: "OIC", Text: "Adjudication Hearing"},
			{Value: "VLB", Text: "Video Link - Court Hearing"},
			{Value: "VLLA", Text: "Video Link - Legal Appointment"},
			{Value: "VLPM", Text: "Video Link - Probation Meeting"},
		},
		Locations: []reference.Location{
			{ID: 1, Key: "MDI-VIDEO-1", Text: "Local name one"},
			{ID: 2, Key: "MDI-VIDEO-2", Text: "Local name two"},
			{ID: 3, Key: "MDI-VIDEO-3", Text: "Local name three"},
		},
		ProbationTeams: []reference.Option{{Value: "BLKPPP", Text: "Blackpool"}},
		MeetingTypes: []reference.Option{
			{Value: "PSR", Text: "Pre-sentence report"},
			{Value: "RR", Text: "Recall report"},
		},
		Courts:       []reference.Option{{Value: "ABDRCT", Text: "Aberdare County Court"}},
		HearingTypes: []reference.Option{{Value: "APPEAL", Text: "Appeal"}},
	}
}

type fakePrisonAPI struct {
	mu          sync.Mutex
	prisoner    prisonapi.Prisoner
	appointment *prisonapi.Appointment
	created     []prisonapi.AppointmentRequest
	updated     map[int64]prisonapi.AppointmentRequest
	createErr   error
	nextID      int64
}

func (f *fakePrisonAPI) GetPrisoner(_ context.Context, pn string) (*prisonapi.Prisoner, error) {
	if !strings.EqualFold(pn, f.prisoner.PrisonerNumber) {
		return nil, prisonapi.ErrNotFound
	}
	p := f.prisoner
	return &p, nil
}

func (f *fakePrisonAPI) GetAppointment(_ context.Context, id int64) (*prisonapi.Appointment, error) {
	if f.appointment == nil || f.appointment.ID != id {
		return nil, prisonapi.ErrNotFound
	}
	a := *f.appointment
	return &a, nil
}

func (f *fakePrisonAPI) CreateAppointments(_ context.Context, _ int64, req prisonapi.AppointmentRequest) ([]prisonapi.CreatedAppointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	f.nextID++
	return []prisonapi.CreatedAppointment{{ID: 4000 + f.nextID, StartTime: req.StartTime}}, nil
}

func (f *fakePrisonAPI) UpdateAppointment(_ context.Context, id int64, req prisonapi.AppointmentRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = map[int64]prisonapi.AppointmentRequest{}
	}
	f.updated[id] = req
	return nil
}

type fakeVideoLinkAPI struct {
	mu        sync.Mutex
	booking   *videolink.Booking
	probation []videolink.ProbationBookingRequest
	court     []videolink.CourtBookingRequest
	amended   map[int64]any
	err       error
}

func (f *fakeVideoLinkAPI) GetBooking(_ context.Context, id int64) (*videolink.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, videolink.ErrNotFound
	}
	b := *f.booking
	return &b, nil
}

func (f *fakeVideoLinkAPI) CreateProbationBooking(_ context.Context, req videolink.ProbationBookingRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.probation = append(f.probation, req)
	return 7001, nil
}

func (f *fakeVideoLinkAPI) CreateCourtBooking(_ context.Context, req videolink.CourtBookingRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.court = append(f.court, req)
	return 7002, nil
}

func (f *fakeVideoLinkAPI) AmendProbationBooking(_ context.Context, id int64, req videolink.ProbationBookingRequest) error {
	return f.amend(id, req)
}

func (f *fakeVideoLinkAPI) AmendCourtBooking(_ context.Context, id int64, req videolink.CourtBookingRequest) error {
	return f.amend(id, req)
}

func (f *fakeVideoLinkAPI) amend(id int64, req any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.amended == nil {
		f.amended = map[int64]any{}
	}
	f.amended[id] = req
	return nil
}

type fakeReference struct{ data *reference.AppointmentData }

func (f fakeReference) AppointmentData(context.Context, string) (*reference.AppointmentData, error) {
	return f.data, nil
}

type fakeSchedule struct {
	prisoner []schedule.Event
	location map[int64][]schedule.Event
}

func (f fakeSchedule) ForPrisoner(context.Context, int64, time.Time) ([]schedule.Event, error) {
	return f.prisoner, nil
}

func (f fakeSchedule) ForLocation(_ context.Context, _ string, id int64, _ time.Time) ([]schedule.Event, error) {
	return f.location[id], nil
}

type auditCall struct {
	Action  compliance.AuditAction
	Who     string
	Subject string
}

type fakeAuditor struct {
	mu    sync.Mutex
	calls []auditCall
}

func (f *fakeAuditor) Log(_ context.Context, action compliance.AuditAction, who, pn string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, auditCall{action, who, pn})
	return nil
}

type renderCall struct {
	Status int
	Page   string
	Data   any
}

type recordingRenderer struct {
	mu    sync.Mutex
	calls []renderCall
}

func (r *recordingRenderer) Render(w http.ResponseWriter, status int, page string, data any) {
	r.mu.Lock()
	r.calls = append(r.calls, renderCall{status, page, data})
	r.mu.Unlock()
	w.WriteHeader(status)
	fmt.Fprint(w, page)
}

func (r *recordingRenderer) last(t *testing.T) renderCall {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		t.Fatal("nothing rendered")
	}
	return r.calls[len(r.calls)-1]
}

type harness struct {
	prison    *fakePrisonAPI
	videoLink *fakeVideoLinkAPI
	audit     *fakeAuditor
	renderer  *recordingRenderer
	slips     *movementslip.MemoryStore
	router    http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := statestore.NewMemoryStore()
	h := &harness{
		prison:    &fakePrisonAPI{prisoner: testPrisoner()},
		videoLink: &fakeVideoLinkAPI{},
		audit:     &fakeAuditor{},
		renderer:  &recordingRenderer{},
		slips:     movementslip.NewMemoryStore(),
	}
	m := metrics.NewBookingMetrics(prometheus.NewRegistry())
	logger := logging.Discard()

	handler := NewHandler(Config{
		Prisoners: h.prison,
		Bookings:  h.videoLink,
		Reference: fakeReference{data: testData()},
		Schedule: fakeSchedule{
			prisoner: []schedule.Event{{Start: fixedNow, Description: "Gym"}},
			location: map[int64][]schedule.Event{2: {{Start: fixedNow, Description: "Legal visit"}}},
		},
		Submitter: NewSubmitter(h.prison, h.videoLink, h.audit, m, logger),
		Drafts:    NewDraftStore(store, time.Hour),
		Flash:     flash.NewMessenger(store, time.Minute),
		Slips:     h.slips,
		Audit:     h.audit,
		Renderer:  h.renderer,
		Metrics:   m,
		Logger:    logger,
		Location:  london,
		Now:       func() time.Time { return fixedNow },
	})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := tenancy.WithStaff(req.Context(), tenancy.Staff{Username: "jsmith", DisplayName: "Jo Smith"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	handler.Routes(r)
	h.router = r
	return h
}

func (h *harness) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (h *harness) post(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func oicForm() url.Values {
	return url.Values{
		"appointmentType": {"OIC"},
		"location":        {"2"},
		"date":            {tomorrow},
		"startTime":       {"11:05"},
		"endTime":         {"12:15"},
		"comment":         {"Comment x"},
		"repeats":         {"no"},
	}
}
