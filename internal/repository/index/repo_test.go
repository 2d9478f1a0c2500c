package index

import (
	"context"
	"errors"
	"testing"

	"github.com/naturalis/museumapp-api/internal/engine"
)

type mockStore struct {
	created map[string]string
	deleted []string
	err     error
}

func (m *mockStore) CreateIndex(_ context.Context, index string, mapping []byte) error {
	if m.err != nil {
		return m.err
	}
	if m.created == nil {
		m.created = map[string]string{}
	}
	m.created[index] = string(mapping)
	return nil
}

func (m *mockStore) DeleteIndex(_ context.Context, index string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, index)
	return nil
}

func TestCreateAndDelete(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)

	if err := repo.Create(context.Background(), "museumapp", []byte(`{"mappings":{}}`)); err != nil {
		t.Fatal(err)
	}
	if ms.created["museumapp"] != `{"mappings":{}}` {
		t.Errorf("created = %v", ms.created)
	}
	if err := repo.Delete(context.Background(), "museumapp"); err != nil {
		t.Fatal(err)
	}
	if len(ms.deleted) != 1 || ms.deleted[0] != "museumapp" {
		t.Errorf("deleted = %v", ms.deleted)
	}
}

func TestRequiresName(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)
	if err := repo.Create(context.Background(), "", nil); err == nil {
		t.Error("Create: expected error for empty name")
	}
	if err := repo.Delete(context.Background(), ""); err == nil {
		t.Error("Delete: expected error for empty name")
	}
	if len(ms.created) != 0 || len(ms.deleted) != 0 {
		t.Error("empty name must not reach the engine")
	}
}

func TestWrapsEngineError(t *testing.T) {
	ms := &mockStore{err: &engine.Error{Op: engine.OpDeleteIndex, Err: engine.ErrNotFound}}
	if err := New(ms).Delete(context.Background(), "gone"); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
