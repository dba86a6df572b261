// Package flash carries form values and errors across exactly one redirect.
//
// A handler that rejects a submission writes a Message and redirects with
// ?flash=<id>; the handler serving the redirect reads it once. The record is
// removed on read and scoped to the staff user who wrote it.
package flash

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/prisoner-profile/internal/statestore"
)

// QueryParam names the redirect parameter holding the flash id.
const QueryParam = "flash"

// FieldError is a validation failure tied to one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Message is the state handed to the next request.
type Message struct {
	Errors []FieldError        `json:"errors,omitempty"`
	Form   map[string][]string `json:"form,omitempty"`
	Notice string              `json:"notice,omitempty"`
}

// HasErrors reports whether any field or generic errors were flashed.
func (m Message) HasErrors() bool {
	return len(m.Errors) > 0
}

// ErrorFor returns the first message recorded for field.
func (m Message) ErrorFor(field string) string {
	for _, e := range m.Errors {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Value returns the first posted value for field.
func (m Message) Value(field string) string {
	if vals := m.Form[field]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// Messenger writes and reads flash messages.
type Messenger struct {
	store statestore.Store
	ttl   time.Duration
}

func NewMessenger(store statestore.Store, ttl time.Duration) *Messenger {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Messenger{store: store, ttl: ttl}
}

// Write stores msg for owner and returns the id to put on the redirect.
func (m *Messenger) Write(ctx context.Context, owner string, msg Message) (string, error) {
	id := uuid.NewString()
	if err := m.store.Save(ctx, key(owner, id), msg, m.ttl); err != nil {
		return "", fmt.Errorf("flash: write: %w", err)
	}
	return id, nil
}

// Read consumes the message. A missing, expired, already-read or foreign id
// yields ok=false.
func (m *Messenger) Read(ctx context.Context, owner, id string) (Message, bool, error) {
	var msg Message
	id = strings.TrimSpace(id)
	if id == "" {
		return msg, false, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return msg, false, nil
	}
	ok, err := m.store.Consume(ctx, key(owner, id), &msg)
	if err != nil {
		return Message{}, false, fmt.Errorf("flash: read: %w", err)
	}
	return msg, ok, nil
}

// ReadRequest consumes the message referenced by the request's flash parameter.
func (m *Messenger) ReadRequest(ctx context.Context, owner string, q url.Values) (Message, bool, error) {
	return m.Read(ctx, owner, q.Get(QueryParam))
}

// RedirectTo appends the flash id to target, keeping any existing query.
func RedirectTo(target, id string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set(QueryParam, id)
	u.RawQuery = q.Encode()
	return u.String()
}

func key(owner, id string) string {
	return "flash:" + owner + ":" + id
}
