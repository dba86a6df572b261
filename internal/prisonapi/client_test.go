package prisonapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wolfman30/prisoner-profile/internal/tenancy"
)

func TestGetPrisoner(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/offenders/A1234BC" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
			t.Fatalf("expected forwarded token, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"offenderNo":             "A1234BC",
			"bookingId":              1102,
			"firstName":              "John",
			"lastName":               "Smith",
			"agencyId":               "MDI",
			"assignedLivingUnitDesc": "1-2-003",
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	ctx := tenancy.WithStaff(context.Background(), tenancy.Staff{Username: "USER1", Token: "user-token"})

	p, err := c.GetPrisoner(ctx, "A1234BC")
	if err != nil {
		t.Fatalf("GetPrisoner error: %v", err)
	}
	if p.BookingID != 1102 || p.FullName() != "John Smith" || p.CellLocation != "1-2-003" {
		t.Fatalf("unexpected prisoner: %+v", p)
	}
}

func TestGetPrisonerEvents_SendsDateWindow(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bookings/1102/events" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("fromDate") != "2026-10-17" || r.URL.Query().Get("toDate") != "2026-10-17" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"startTime": "2026-10-17T09:00:00", "endTime": "2026-10-17T10:00:00", "eventSourceDesc": "Gym", "eventLocation": "Gym"},
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	events, err := c.GetPrisonerEvents(context.Background(), 1102, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetPrisonerEvents error: %v", err)
	}
	if len(events) != 1 || events[0].Description != "Gym" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestCreateAppointments_SendsBlankComment(t *testing.T) {
	var raw map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/bookings/1102/appointments" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &raw); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode([]map[string]any{{"appointmentEventId": 99, "startTime": "2026-10-17T11:05:00"}})
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	created, err := c.CreateAppointments(context.Background(), 1102, AppointmentRequest{
		AppointmentType: "OIC",
		LocationID:      2,
		StartTime:       "2026-10-17T11:05:00",
	})
	if err != nil {
		t.Fatalf("CreateAppointments error: %v", err)
	}
	if created[0].ID != 99 {
		t.Fatalf("unexpected created: %+v", created)
	}
	if v, ok := raw["comment"]; !ok || v != "" {
		t.Fatalf("expected empty comment to be sent, got %v (present=%v)", v, ok)
	}
	if _, ok := raw["repeat"]; ok {
		t.Fatalf("expected repeat to be omitted")
	}
	if _, ok := raw["endTime"]; ok {
		t.Fatalf("expected blank end time to be omitted")
	}
}

func TestAddContact_DuplicateMapsToErrDuplicate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"userMessage":"already exists"}`, http.StatusConflict)
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	_, err := c.AddContact(context.Background(), "A1234BC", Contact{Type: ContactTypeEmail, Value: "a@b.com"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetAppointment_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	if _, err := c.GetAppointment(context.Background(), 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServerErrorIsGeneric(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	err := c.UpdatePersonalDetails(context.Background(), "A1234BC", map[string]any{"religion": "CHRST"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected generic error, got %v", err)
	}
}

func TestReferenceCodeActive(t *testing.T) {
	if !(ReferenceCode{Code: "A"}).Active() || !(ReferenceCode{ActiveFlag: "Y"}).Active() {
		t.Fatal("expected active codes")
	}
	if (ReferenceCode{ActiveFlag: "N"}).Active() {
		t.Fatal("expected inactive code")
	}
}
