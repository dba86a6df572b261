// Package prisonapi is a typed client for the prison API: reference data,
// prisoner details, schedules, prison appointments and personal details.
package prisonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfman30/prisoner-profile/internal/observability/metrics"
	"github.com/wolfman30/prisoner-profile/internal/tenancy"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

const (
	apiName        = "prison-api"
	defaultTimeout = 10 * time.Second
	dateLayout     = "2006-01-02"
)

// Client is an HTTP client for the prison API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.BookingMetrics
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records upstream latency per operation.
func WithMetrics(m *metrics.BookingMetrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a prison API client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAppointmentTypes lists the appointment types staff may book.
func (c *Client) GetAppointmentTypes(ctx context.Context) ([]ReferenceCode, error) {
	var out []ReferenceCode
	if err := c.do(ctx, "get_appointment_types", http.MethodGet, "/api/reference-domains/scheduleReasons?eventType=APP", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReferenceCodes lists the codes of a reference domain, e.g. NAT or RELF.
func (c *Client) GetReferenceCodes(ctx context.Context, domain string) ([]ReferenceCode, error) {
	var out []ReferenceCode
	path := "/api/reference-domains/domains/" + url.PathEscape(domain) + "/codes"
	if err := c.do(ctx, "get_reference_codes", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEventLocations lists locations in a prison that can host appointments.
func (c *Client) GetEventLocations(ctx context.Context, prisonID string) ([]Location, error) {
	var out []Location
	path := "/api/agencies/" + url.PathEscape(prisonID) + "/eventLocations"
	if err := c.do(ctx, "get_event_locations", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPrisoner loads the prisoner's current booking.
func (c *Client) GetPrisoner(ctx context.Context, prisonerNumber string) (*Prisoner, error) {
	var out Prisoner
	if err := c.do(ctx, "get_prisoner", http.MethodGet, "/api/offenders/"+url.PathEscape(prisonerNumber), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPrisonerEvents returns the prisoner's scheduled events on date.
func (c *Client) GetPrisonerEvents(ctx context.Context, bookingID int64, date time.Time) ([]ScheduledEvent, error) {
	q := url.Values{}
	q.Set("fromDate", date.Format(dateLayout))
	q.Set("toDate", date.Format(dateLayout))
	path := "/api/bookings/" + strconv.FormatInt(bookingID, 10) + "/events?" + q.Encode()

	var out []ScheduledEvent
	if err := c.do(ctx, "get_prisoner_events", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetLocationEvents returns everything scheduled in a location on date.
func (c *Client) GetLocationEvents(ctx context.Context, prisonID string, locationID int64, date time.Time) ([]ScheduledEvent, error) {
	path := fmt.Sprintf("/api/schedules/%s/locations/%d/events?date=%s", url.PathEscape(prisonID), locationID, date.Format(dateLayout))

	var out []ScheduledEvent
	if err := c.do(ctx, "get_location_events", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAppointments creates one appointment, or a series when req.Repeat is set.
func (c *Client) CreateAppointments(ctx context.Context, bookingID int64, req AppointmentRequest) ([]CreatedAppointment, error) {
	var out []CreatedAppointment
	path := "/api/bookings/" + strconv.FormatInt(bookingID, 10) + "/appointments"
	if err := c.do(ctx, "create_appointments", http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("prisonapi: create appointments returned no ids")
	}
	return out, nil
}

// GetAppointment loads a single prison appointment.
func (c *Client) GetAppointment(ctx context.Context, appointmentID int64) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, "get_appointment", http.MethodGet, "/api/appointments/"+strconv.FormatInt(appointmentID, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAppointment amends a single prison appointment.
func (c *Client) UpdateAppointment(ctx context.Context, appointmentID int64, req AppointmentRequest) error {
	return c.do(ctx, "update_appointment", http.MethodPut, "/api/appointments/"+strconv.FormatInt(appointmentID, 10), req, nil)
}

// GetPersonalDetails loads the editable personal details.
func (c *Client) GetPersonalDetails(ctx context.Context, prisonerNumber string) (*PersonalDetails, error) {
	var out PersonalDetails
	if err := c.do(ctx, "get_personal_details", http.MethodGet, "/api/prisoners/"+url.PathEscape(prisonerNumber)+"/personal-details", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePersonalDetails patches the given fields only.
func (c *Client) UpdatePersonalDetails(ctx context.Context, prisonerNumber string, patch map[string]any) error {
	return c.do(ctx, "update_personal_details", http.MethodPatch, "/api/prisoners/"+url.PathEscape(prisonerNumber)+"/personal-details", patch, nil)
}

// GetContacts lists phone numbers and email addresses held for the prisoner.
func (c *Client) GetContacts(ctx context.Context, prisonerNumber string) ([]Contact, error) {
	var out []Contact
	if err := c.do(ctx, "get_contacts", http.MethodGet, "/api/prisoners/"+url.PathEscape(prisonerNumber)+"/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddContact adds a phone number or email address. A value the prisoner
// already has yields ErrDuplicate.
func (c *Client) AddContact(ctx context.Context, prisonerNumber string, contact Contact) (*Contact, error) {
	var out Contact
	if err := c.do(ctx, "add_contact", http.MethodPost, "/api/prisoners/"+url.PathEscape(prisonerNumber)+"/contacts", contact, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("prisonapi: marshal %s: %w", operation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("prisonapi: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tenancy.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(apiName, operation, 0, time.Since(start).Seconds())
		return fmt.Errorf("prisonapi: %s: %w", operation, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(apiName, operation, resp.StatusCode, time.Since(start).Seconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("prisonapi: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrDuplicate, operation)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Warn("prison api call failed", "operation", operation, "status", resp.StatusCode)
		return fmt.Errorf("prisonapi: %s: status %d: %s", operation, resp.StatusCode, msg)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("prisonapi: unmarshal %s: %w", operation, err)
	}
	return nil
}
