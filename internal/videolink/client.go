// Package videolink is a typed client for the video link booking API used
// for court hearings and probation meetings held over video.
package videolink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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
	apiName        = "video-link-api"
	defaultTimeout = 10 * time.Second
)

// ErrNotFound is returned when the booking or code list does not exist.
var ErrNotFound = errors.New("videolink: not found")

// Client is an HTTP client for the video link booking API.
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

// NewClient creates a video link API client rooted at baseURL.
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

// GetCourts lists courts enabled for video link bookings.
func (c *Client) GetCourts(ctx context.Context) ([]Code, error) {
	var out []Code
	if err := c.do(ctx, "get_courts", http.MethodGet, "/courts/enabled", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProbationTeams lists probation teams enabled for video link bookings.
func (c *Client) GetProbationTeams(ctx context.Context) ([]Code, error) {
	var out []Code
	if err := c.do(ctx, "get_probation_teams", http.MethodGet, "/probation-teams/enabled", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReferenceCodes lists a reference group such as COURT_HEARING_TYPE.
func (c *Client) GetReferenceCodes(ctx context.Context, group string) ([]Code, error) {
	var out []Code
	if err := c.do(ctx, "get_reference_codes", http.MethodGet, "/reference-codes/group/"+url.PathEscape(group), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBooking loads an existing booking.
func (c *Client) GetBooking(ctx context.Context, bookingID int64) (*Booking, error) {
	var out Booking
	if err := c.do(ctx, "get_booking", http.MethodGet, "/video-link-booking/id/"+strconv.FormatInt(bookingID, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProbationBooking books a probation meeting and returns its id.
func (c *Client) CreateProbationBooking(ctx context.Context, req ProbationBookingRequest) (int64, error) {
	req.BookingType = BookingTypeProbation
	return c.create(ctx, "create_probation_booking", req)
}

// CreateCourtBooking books a court hearing and returns its id.
func (c *Client) CreateCourtBooking(ctx context.Context, req CourtBookingRequest) (int64, error) {
	req.BookingType = BookingTypeCourt
	return c.create(ctx, "create_court_booking", req)
}

// AmendProbationBooking replaces the details of a probation meeting.
func (c *Client) AmendProbationBooking(ctx context.Context, bookingID int64, req ProbationBookingRequest) error {
	req.BookingType = BookingTypeProbation
	return c.do(ctx, "amend_probation_booking", http.MethodPut, "/video-link-booking/id/"+strconv.FormatInt(bookingID, 10), req, nil)
}

// AmendCourtBooking replaces the details of a court hearing.
func (c *Client) AmendCourtBooking(ctx context.Context, bookingID int64, req CourtBookingRequest) error {
	req.BookingType = BookingTypeCourt
	return c.do(ctx, "amend_court_booking", http.MethodPut, "/video-link-booking/id/"+strconv.FormatInt(bookingID, 10), req, nil)
}

func (c *Client) create(ctx context.Context, operation string, req any) (int64, error) {
	var out createdResponse
	if err := c.do(ctx, operation, http.MethodPost, "/video-link-booking", req, &out); err != nil {
		return 0, err
	}
	if out.ID == 0 {
		return 0, fmt.Errorf("videolink: %s returned no booking id", operation)
	}
	return out.ID, nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("videolink: marshal %s: %w", operation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("videolink: create request: %w", err)
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
		return fmt.Errorf("videolink: %s: %w", operation, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(apiName, operation, resp.StatusCode, time.Since(start).Seconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("videolink: read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Warn("video link api call failed", "operation", operation, "status", resp.StatusCode)
		return fmt.Errorf("videolink: %s: status %d: %s", operation, resp.StatusCode, msg)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("videolink: unmarshal %s: %w", operation, err)
	}
	return nil
}
