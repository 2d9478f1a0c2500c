package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/naturalis/museumapp-api/internal/domain"
	"github.com/naturalis/museumapp-api/internal/domain/query"
	"github.com/naturalis/museumapp-api/internal/domain/result"
	"github.com/naturalis/museumapp-api/internal/engine"
)

// --- Mocks ---

type mockSearcher struct {
	queries []query.Query
	resp    *engine.SearchResponse
	err     error
}

func (m *mockSearcher) Search(_ context.Context, q query.Query) (*engine.SearchResponse, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	if m.resp == nil {
		return &engine.SearchResponse{}, nil
	}
	return m.resp, nil
}

func hits(sources ...string) *engine.SearchResponse {
	resp := &engine.SearchResponse{}
	for _, s := range sources {
		resp.Hits.Hits = append(resp.Hits.Hits, engine.Hit{Source: json.RawMessage(s)})
	}
	resp.Hits.Total.Value = len(sources)
	return resp
}

func newService(ms *mockSearcher) *Service {
	return New(ms, domain.NewLanguages("nl", "en"))
}

// --- Tests ---

func TestDocuments_Precedence(t *testing.T) {
	tests := []struct {
		name   string
		req    DocumentsRequest
		kind   query.Kind
		params map[string]string
	}{
		{"key wins", DocumentsRequest{Key: "k1", Room: "A", Language: "xx"}, query.ByKey, map[string]string{"key": "k1"}},
		{"room over language", DocumentsRequest{Room: "A", Language: "en"}, query.ByRoom, map[string]string{"room": "A"}},
		{"room sentinel", DocumentsRequest{Room: "-"}, query.ByRoom, map[string]string{"room": ""}},
		{"language", DocumentsRequest{Language: "en"}, query.MatchAll, map[string]string{"language": "en"}},
		{"default language", DocumentsRequest{}, query.MatchAll, map[string]string{"language": "nl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := &mockSearcher{}
			res, err := newService(ms).Documents(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			q := ms.queries[0]
			if q.Kind() != tt.kind {
				t.Errorf("kind = %q, want %q", q.Kind(), tt.kind)
			}
			if q.Size() == nil || *q.Size() != DocumentsLimit {
				t.Errorf("size = %v, want %d", q.Size(), DocumentsLimit)
			}
			for k, v := range tt.params {
				if res.Params[k] != v {
					t.Errorf("params[%s] = %q, want %q", k, res.Params[k], v)
				}
			}
		})
	}
}

func TestDocuments_EmptyIsCountedZero(t *testing.T) {
	ms := &mockSearcher{resp: hits()}
	res, err := newService(ms).Documents(context.Background(), DocumentsRequest{Language: "en"})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := json.Marshal(res.Body)
	if string(b) != `{"size":0,"items":[]}` {
		t.Errorf("body = %s", b)
	}
	if res.Hits != 0 {
		t.Errorf("hits = %d", res.Hits)
	}
}

func TestDocuments_CountMatchesItems(t *testing.T) {
	ms := &mockSearcher{resp: hits(`{"key":"a"}`, `{"key":"b"}`, `{"key":"c"}`)}
	res, err := newService(ms).Documents(context.Background(), DocumentsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	body := res.Body.(result.Counted)
	if body.Size != 3 || len(body.Items) != 3 || res.Hits != 3 {
		t.Errorf("size=%d items=%d hits=%d", body.Size, len(body.Items), res.Hits)
	}
}

func TestUnsupportedLanguage_NeverSearches(t *testing.T) {
	ms := &mockSearcher{}
	svc := newService(ms)

	if _, err := svc.Documents(context.Background(), DocumentsRequest{Language: "de"}); !errors.Is(err, domain.ErrUnsupportedLanguage) {
		t.Errorf("Documents: expected ErrUnsupportedLanguage, got %v", err)
	}
	if _, err := svc.LastUpdated(context.Background(), "fr"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("LastUpdated: expected ErrValidation, got %v", err)
	}
	if len(ms.queries) != 0 {
		t.Errorf("expected no engine calls, got %d", len(ms.queries))
	}
}

func TestLastUpdated(t *testing.T) {
	ms := &mockSearcher{resp: hits(`{"last_modified":"2020-01-02 03:04:05"}`)}
	res, err := newService(ms).LastUpdated(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if ms.queries[0].Kind() != query.MostRecent || res.Params["language"] != "nl" {
		t.Errorf("unexpected query %q params %v", ms.queries[0].Kind(), res.Params)
	}
	b, _ := json.Marshal(res.Body)
	if string(b) != `{"last_modified":"2020-01-02 03:04:05"}` {
		t.Errorf("body = %s", b)
	}
}

func TestFavourites(t *testing.T) {
	ms := &mockSearcher{resp: hits(`{"key":"a","favourites_rank":1}`)}
	res, err := newService(ms).Favourites(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ms.queries[0].Kind() != query.FavouritesExists || res.Hits != 1 {
		t.Errorf("kind=%q hits=%d", ms.queries[0].Kind(), res.Hits)
	}
	if _, ok := res.Body.(result.List); !ok {
		t.Errorf("favourites must be list mode, got %T", res.Body)
	}
}

func TestRooms(t *testing.T) {
	resp := &engine.SearchResponse{Aggregations: map[string]json.RawMessage{
		query.RoomsAggregation: json.RawMessage(`{"buckets":[{"key":"A","doc_count":3},{"key":"B","doc_count":1}]}`),
	}}
	res, err := newService(&mockSearcher{resp: resp}).Rooms(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	body := res.Body.(result.Aggregation)
	if string(body.Items) != `[{"key":"A","doc_count":3},{"key":"B","doc_count":1}]` {
		t.Errorf("items = %s", body.Items)
	}
	if body.Note != result.RoomsNote {
		t.Errorf("note = %q", body.Note)
	}
	if res.Hits != 2 {
		t.Errorf("hits = %d, want 2 buckets", res.Hits)
	}
}

func TestUnitIDs(t *testing.T) {
	ms := &mockSearcher{resp: hits(`{"id":"1","created":"2019-01-01T00:00:00"}`)}
	res, err := newService(ms).UnitIDs(context.Background(), "2019-01-01T00:00:00")
	if err != nil {
		t.Fatal(err)
	}
	q := ms.queries[0]
	if q.Kind() != query.DateRange || res.Params["from"] != "2019-01-01T00:00:00" {
		t.Errorf("kind=%q params=%v", q.Kind(), res.Params)
	}
	if src := q.SourceIncludes(); len(src) != 2 || src[0] != "id" || src[1] != "created" {
		t.Errorf("source = %v", src)
	}
}

func TestUnitIDs_InvalidDate(t *testing.T) {
	ms := &mockSearcher{}
	_, err := newService(ms).UnitIDs(context.Background(), "yesterday")
	if !errors.Is(err, domain.ErrInvalidDate) || !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected invalid date validation error, got %v", err)
	}
	if len(ms.queries) != 0 {
		t.Error("invalid date must not reach the engine")
	}
}

func TestUnitIDs_EarliestDate(t *testing.T) {
	ms := &mockSearcher{}
	res, err := newService(ms).UnitIDs(context.Background(), "0001-01-01T00:00:00")
	if err != nil {
		t.Fatalf("earliest well-formed date must be accepted: %v", err)
	}
	if len(ms.queries) != 1 || ms.queries[0].Kind() != query.DateRange {
		t.Fatalf("expected one date range query, got %v", ms.queries)
	}
	if res.Params["from"] != "0001-01-01T00:00:00" {
		t.Errorf("params = %v", res.Params)
	}
}

func TestLegacyDocuments_Selection(t *testing.T) {
	tests := []struct {
		name string
		req  LegacyDocumentsRequest
		kind query.Kind
	}{
		{"id wins", LegacyDocumentsRequest{ID: "RMNH.1", From: "2019-01-01T00:00:00"}, query.ByID},
		{"from", LegacyDocumentsRequest{From: "2019-01-01T00:00:00"}, query.DateRange},
		{"neither", LegacyDocumentsRequest{}, query.MatchAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := &mockSearcher{resp: hits(`{"id":"RMNH.1"}`)}
			res, err := newService(ms).LegacyDocuments(context.Background(), tt.req)
			if err != nil {
				t.Fatal(err)
			}
			if ms.queries[0].Kind() != tt.kind {
				t.Errorf("kind = %q, want %q", ms.queries[0].Kind(), tt.kind)
			}
			if _, ok := res.Body.(result.List); !ok {
				t.Errorf("legacy documents must be list mode, got %T", res.Body)
			}
		})
	}
}

func TestSearchErrorPropagates(t *testing.T) {
	ms := &mockSearcher{err: &engine.Error{Op: engine.OpSearch, Err: engine.ErrUnavailable}}
	if _, err := newService(ms).Favourites(context.Background()); !errors.Is(err, engine.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
