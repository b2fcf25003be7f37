// Package store persists saved calculator scenarios, backing the site's
// save buttons. The engine itself never reads from the store; saving is a
// user-initiated side effect at the API boundary.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no saved scenario exists for the given id.
var ErrNotFound = errors.New("saved scenario not found")

// SavedScenario is one stored calculator input snapshot. Payload holds the
// scenario request as submitted, JSON-encoded.
type SavedScenario struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists saved scenarios.
type Store interface {
	Save(ctx context.Context, s SavedScenario) (string, error)
	Get(ctx context.Context, id string) (SavedScenario, error)
	List(ctx context.Context) ([]SavedScenario, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
