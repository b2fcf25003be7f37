package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "scenarios.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() unexpected error: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() unexpected error: %v", err)
		}
	})
	return s
}

func TestSQLiteStoreSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, SavedScenario{
		Kind:    "mortgage",
		Name:    "starter home",
		Payload: []byte(`{"kind":"mortgage"}`),
	})
	if err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("Save() should assign an id to a blank record")
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if got.ID != id || got.Kind != "mortgage" || got.Name != "starter home" {
		t.Errorf("Get() = %+v", got)
	}
	if string(got.Payload) != `{"kind":"mortgage"}` {
		t.Errorf("Get() payload = %s", got.Payload)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Get() should return a creation timestamp")
	}
}

func TestSQLiteStoreResave(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, SavedScenario{Kind: "cd", Name: "first", Payload: []byte(`{}`)})
	if err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	// Saving with the same id overwrites rather than duplicating.
	if _, err := s.Save(ctx, SavedScenario{ID: id, Kind: "cd", Name: "renamed", Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if got.Name != "renamed" {
		t.Errorf("Get() name = %q, want %q", got.Name, "renamed")
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List() returned %d records, want 1", len(list))
	}
}

func TestSQLiteStoreListOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := SavedScenario{Kind: "mortgage", Name: "older", Payload: []byte(`{}`),
		CreatedAt: time.Now().Add(-time.Hour)}
	newer := SavedScenario{Kind: "mortgage", Name: "newer", Payload: []byte(`{}`),
		CreatedAt: time.Now()}

	if _, err := s.Save(ctx, older); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	if _, err := s.Save(ctx, newer); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(list))
	}
	if list[0].Name != "newer" || list[1].Name != "older" {
		t.Errorf("List() order = [%s, %s], want newest first", list[0].Name, list[1].Name)
	}
}

func TestSQLiteStoreDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, SavedScenario{Kind: "cd", Name: "gone soon", Payload: []byte(`{}`)})
	if err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() of missing id error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestNoopStore(t *testing.T) {
	s := NewNoopStore()
	ctx := context.Background()

	id, err := s.Save(ctx, SavedScenario{Kind: "mortgage"})
	if err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	if id != "" {
		t.Errorf("Save() id = %q, want empty", id)
	}
	if _, err := s.Get(ctx, "anything"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	list, err := s.List(ctx)
	if err != nil || list != nil {
		t.Errorf("List() = %v, %v, want nil, nil", list, err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() unexpected error: %v", err)
	}
}
