package store

import "context"

// NoopStore is used when no data file is configured; saves succeed with an
// empty id so the API surface stays uniform.
type NoopStore struct{}

// NewNoopStore creates a no-op store.
func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Save(_ context.Context, _ SavedScenario) (string, error) { return "", nil }
func (n *NoopStore) Get(_ context.Context, _ string) (SavedScenario, error) {
	return SavedScenario{}, ErrNotFound
}
func (n *NoopStore) List(_ context.Context) ([]SavedScenario, error) { return nil, nil }
func (n *NoopStore) Delete(_ context.Context, _ string) error        { return ErrNotFound }
func (n *NoopStore) Close() error                                    { return nil }
