// Package movementslip stores the printable escort slip for a created booking.
// A slip can be shown exactly once: the first read marks it as shown and any
// later read reports ErrNotFound.
package movementslip

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned for unknown, foreign or already shown slips, and for
// slips requested under another prisoner's number.
var ErrNotFound = errors.New("movementslip: not found")

// Slip is everything printed on a movement slip.
type Slip struct {
	BookingID      string     `json:"bookingId"`
	Owner          string     `json:"owner"`
	PrisonerName   string     `json:"prisonerName"`
	PrisonerNumber string     `json:"prisonerNumber"`
	CellLocation   string     `json:"cellLocation"`
	Reason         string     `json:"reason"`
	Location       string     `json:"location"`
	Comments       string     `json:"comments,omitempty"`
	Start          time.Time  `json:"start"`
	End            *time.Time `json:"end,omitempty"`
	CreatedBy      string     `json:"createdBy"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// TimeRange renders the slot as "11:05 to 12:15".
func (s Slip) TimeRange() string {
	if s.End == nil {
		return s.Start.Format("15:04")
	}
	return s.Start.Format("15:04") + " to " + s.End.Format("15:04")
}

// Store persists slips. Consume must be an atomic check-and-mark so that two
// concurrent loads of the same slip cannot both succeed. A slip whose prisoner
// number does not match is left unshown.
type Store interface {
	Create(ctx context.Context, slip Slip) error
	Consume(ctx context.Context, bookingID, owner, prisonerNumber string) (*Slip, error)
}

func normalisePrisonerNumber(pn string) string {
	return strings.ToUpper(strings.TrimSpace(pn))
}
