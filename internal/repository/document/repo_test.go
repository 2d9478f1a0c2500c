package document

import (
	"context"
	"errors"
	"testing"

	"github.com/naturalis/museumapp-api/internal/engine"
)

type indexCall struct {
	index, id string
	opts      engine.IndexOptions
}

type mockStore struct {
	indexCalls  []indexCall
	indexErr    error
	deleteIndex string
	deleteID    string
	deleteRefr  bool
	dbqIndex    string
	dbqBody     string
	dbqRefresh  bool
	dbqDeleted  int
}

func (m *mockStore) Index(_ context.Context, index, id string, _ []byte, opts engine.IndexOptions) error {
	m.indexCalls = append(m.indexCalls, indexCall{index: index, id: id, opts: opts})
	return m.indexErr
}

func (m *mockStore) Delete(_ context.Context, index, id string, refresh bool) error {
	m.deleteIndex, m.deleteID, m.deleteRefr = index, id, refresh
	return nil
}

func (m *mockStore) DeleteByQuery(_ context.Context, index string, body []byte, refresh bool) (int, error) {
	m.dbqIndex, m.dbqBody, m.dbqRefresh = index, string(body), refresh
	return m.dbqDeleted, nil
}

func TestCreate_IsCreateOnly(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "museumapp")

	if err := repo.Create(context.Background(), "abc", []byte(`{"id":"abc"}`)); err != nil {
		t.Fatal(err)
	}
	c := ms.indexCalls[0]
	if c.index != "museumapp" || c.id != "abc" || !c.opts.CreateOnly {
		t.Errorf("unexpected call %+v", c)
	}
}

func TestCreate_WrapsConflict(t *testing.T) {
	ms := &mockStore{indexErr: &engine.Error{Op: engine.OpIndex, Err: engine.ErrConflict}}
	err := New(ms, "museumapp").Create(context.Background(), "abc", []byte(`{}`))
	if !errors.Is(err, engine.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestDelete_Refreshes(t *testing.T) {
	ms := &mockStore{}
	if err := New(ms, "museumapp").Delete(context.Background(), "abc"); err != nil {
		t.Fatal(err)
	}
	if ms.deleteIndex != "museumapp" || ms.deleteID != "abc" || !ms.deleteRefr {
		t.Errorf("unexpected delete %q %q %v", ms.deleteIndex, ms.deleteID, ms.deleteRefr)
	}
}

func TestDeleteByQuery_Refreshes(t *testing.T) {
	ms := &mockStore{dbqDeleted: 4}
	n, err := New(ms, "museumapp").DeleteByQuery(context.Background(), []byte(`{"query":{"match_all":{}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 || !ms.dbqRefresh || ms.dbqIndex != "museumapp" {
		t.Errorf("unexpected delete_by_query n=%d refresh=%v index=%q", n, ms.dbqRefresh, ms.dbqIndex)
	}
}
