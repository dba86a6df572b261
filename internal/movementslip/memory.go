package movementslip

import (
	"context"
	"sync"
	"time"
)

type memoryKey struct {
	bookingID string
	owner     string
}

type memorySlip struct {
	slip  Slip
	shown bool
}

// MemoryStore is the single-process fallback used when no database is set.
type MemoryStore struct {
	mu    sync.Mutex
	slips map[memoryKey]*memorySlip
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slips: make(map[memoryKey]*memorySlip), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, slip Slip) error {
	if slip.CreatedAt.IsZero() {
		slip.CreatedAt = s.now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slips[memoryKey{slip.BookingID, slip.Owner}] = &memorySlip{slip: slip}
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, bookingID, owner, prisonerNumber string) (*Slip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.slips[memoryKey{bookingID, owner}]
	if !ok || rec.shown || normalisePrisonerNumber(rec.slip.PrisonerNumber) != normalisePrisonerNumber(prisonerNumber) {
		return nil, ErrNotFound
	}
	rec.shown = true
	slip := rec.slip
	return &slip, nil
}
