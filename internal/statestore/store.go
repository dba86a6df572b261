// Package statestore keeps short-lived JSON records for multi-step form
// journeys: drafts, confirmations, flash messages and cached reference data.
package statestore

import (
	"context"
	"time"
)

// Store is a TTL-bound key/value store for JSON-encodable values.
type Store interface {
	// Save writes value under key, replacing any previous record.
	Save(ctx context.Context, key string, value any, ttl time.Duration) error
	// Load decodes the record into out. ok is false when the key is absent or expired.
	Load(ctx context.Context, key string, out any) (ok bool, err error)
	// Consume atomically reads and removes the record. A second Consume of the
	// same key reports ok=false.
	Consume(ctx context.Context, key string, out any) (ok bool, err error)
	// Delete removes the record if present.
	Delete(ctx context.Context, key string) error
}
