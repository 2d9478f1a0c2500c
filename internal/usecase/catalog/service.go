package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/naturalis/museumapp-api/internal/domain"
	"github.com/naturalis/museumapp-api/internal/domain/query"
	"github.com/naturalis/museumapp-api/internal/domain/result"
)

// DocumentsLimit caps the counted documents listing.
const DocumentsLimit = 10000

// Result is a reduced response body plus what the usage log records.
type Result struct {
	Body   any
	Params map[string]string
	Hits   int
}

// DocumentsRequest carries the /documents filters. Empty fields are absent.
type DocumentsRequest struct {
	Key      string
	Language string
	Room     string
}

// LegacyDocumentsRequest carries the /v1/documents filters. Empty fields are absent.
type LegacyDocumentsRequest struct {
	From string
	ID   string
}

// Service answers the read endpoints.
type Service struct {
	search    Searcher
	languages domain.Languages
}

// New creates a catalog service answering for the given languages.
func New(search Searcher, languages domain.Languages) *Service {
	return &Service{search: search, languages: languages}
}

// LastUpdated returns the most recent last_modified value for language.
func (s *Service) LastUpdated(ctx context.Context, language string) (Result, error) {
	lang, err := s.languages.Resolve(language)
	if err != nil {
		return Result{}, err
	}
	q, err := query.NewMostRecent(lang)
	if err != nil {
		return Result{}, err
	}

	resp, err := s.search.Search(ctx, q)
	if err != nil {
		return Result{}, err
	}
	body, err := result.ReduceLastModified(resp)
	if err != nil {
		return Result{}, err
	}
	return Result{Body: body, Params: q.Params(), Hits: len(resp.Hits.Hits)}, nil
}

// Documents lists documents filtered by key, else room, else language.
func (s *Service) Documents(ctx context.Context, req DocumentsRequest) (Result, error) {
	q, err := s.documentsQuery(req)
	if err != nil {
		return Result{}, err
	}
	q = q.WithSize(DocumentsLimit)

	resp, err := s.search.Search(ctx, q)
	if err != nil {
		return Result{}, err
	}
	body := result.ReduceCounted(resp)
	return Result{Body: body, Params: q.Params(), Hits: body.Size}, nil
}

func (s *Service) documentsQuery(req DocumentsRequest) (query.Query, error) {
	switch {
	case req.Key != "":
		return query.NewByKey(req.Key)
	case req.Room != "":
		return query.NewByRoom(req.Room), nil
	default:
		lang, err := s.languages.Resolve(req.Language)
		if err != nil {
			return query.Query{}, err
		}
		return query.NewMatchAll(lang), nil
	}
}

// Favourites lists the ranked favourites.
func (s *Service) Favourites(ctx context.Context) (Result, error) {
	q := query.NewFavouritesExists()
	resp, err := s.search.Search(ctx, q)
	if err != nil {
		return Result{}, err
	}
	body := result.ReduceList(resp)
	return Result{Body: body, Params: q.Params(), Hits: len(body)}, nil
}

// Rooms returns the per-room bucket list.
func (s *Service) Rooms(ctx context.Context) (Result, error) {
	q := query.NewRoomAggregation()
	resp, err := s.search.Search(ctx, q)
	if err != nil {
		return Result{}, err
	}
	body, err := result.ReduceAggregation(resp, query.RoomsAggregation)
	if err != nil {
		return Result{}, err
	}
	var buckets []json.RawMessage
	if err := json.Unmarshal(body.Items, &buckets); err != nil {
		return Result{}, fmt.Errorf("rooms buckets: %w", err)
	}
	return Result{Body: body, Params: q.Params(), Hits: len(buckets)}, nil
}

// UnitIDs lists id and created of documents created at or after from.
// An empty from lists every document.
func (s *Service) UnitIDs(ctx context.Context, from string) (Result, error) {
	q, err := createdSince(from)
	if err != nil {
		return Result{}, err
	}
	q = q.WithSource(query.FieldID, query.FieldCreated)
	return s.list(ctx, q)
}

// LegacyDocuments lists documents by id, else created date, else all.
func (s *Service) LegacyDocuments(ctx context.Context, req LegacyDocumentsRequest) (Result, error) {
	var (
		q   query.Query
		err error
	)
	if req.ID != "" {
		q, err = query.NewByID(req.ID)
	} else {
		q, err = createdSince(req.From)
	}
	if err != nil {
		return Result{}, err
	}
	return s.list(ctx, q)
}

func (s *Service) list(ctx context.Context, q query.Query) (Result, error) {
	resp, err := s.search.Search(ctx, q)
	if err != nil {
		return Result{}, err
	}
	body := result.ReduceList(resp)
	return Result{Body: body, Params: q.Params(), Hits: len(body)}, nil
}

func createdSince(from string) (query.Query, error) {
	if from == "" {
		return query.NewMatchAll(""), nil
	}
	t, err := time.Parse(query.DateLayout, from)
	if err != nil {
		return query.Query{}, fmt.Errorf("%w: %q does not match %s: %w", domain.ErrInvalidDate, from, query.DateLayout, domain.ErrValidation)
	}
	return query.NewDateRange(query.FieldCreated, t)
}
