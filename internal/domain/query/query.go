package query

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Kind names a query template.
type Kind string

// Template kinds.
const (
	MatchAll         Kind = "match_all"
	DateRange        Kind = "date_range"
	ByKey            Kind = "by_key"
	ByID             Kind = "by_id"
	ByRoom           Kind = "by_room"
	FavouritesExists Kind = "favourites_exists"
	MostRecent       Kind = "most_recent"
	RoomAggregation  Kind = "room_aggregation"
)

// Document fields the templates address.
const (
	FieldID             = "id"
	FieldKey            = "key"
	FieldLanguage       = "language"
	FieldCreated        = "created"
	FieldLastModified   = "last_modified"
	FieldFavouritesRank = "favourites_rank"
	FieldLocation       = "objects.location.keyword"
)

// RoomsAggregation is the aggregation name used by NewRoomAggregation.
const RoomsAggregation = "rooms"

// UnfilteredRoom is the room argument that selects the empty-room bucket.
const UnfilteredRoom = "-"

// DateLayout is the accepted date format (no zone).
const DateLayout = "2006-01-02T15:04:05"

// FavouritesLimit caps the favourites query.
const FavouritesLimit = 100

const roomBucketLimit = 1000

// Query is one fully-substituted search body plus its per-call options.
// Build through the New* constructors; the zero value is not sendable.
type Query struct {
	kind           Kind
	body           map[string]any
	size           *int
	sourceIncludes []string
	params         map[string]string
}

// NewMatchAll matches every document, or every document in language if non-empty.
func NewMatchAll(language string) Query {
	if language == "" {
		return newQuery(MatchAll, map[string]any{
			"query": map[string]any{"match_all": map[string]any{}},
		}, nil)
	}
	return newQuery(MatchAll, map[string]any{
		"query": match(FieldLanguage, language),
	}, map[string]string{"language": language})
}

// NewDateRange selects documents whose field is at or after from.
// field must be created or last_modified.
func NewDateRange(field string, from time.Time) (Query, error) {
	if field != FieldCreated && field != FieldLastModified {
		return Query{}, fmt.Errorf("date range field must be %q or %q, got %q", FieldCreated, FieldLastModified, field)
	}
	v := from.Format(DateLayout)
	return newQuery(DateRange, map[string]any{
		"query": map[string]any{
			"range": map[string]any{field: map[string]any{"gte": v}},
		},
	}, map[string]string{"from": v}), nil
}

// NewByKey selects the document with the given key.
func NewByKey(key string) (Query, error) {
	if key == "" {
		return Query{}, fmt.Errorf("key is required")
	}
	return newQuery(ByKey, map[string]any{
		"query": term(FieldKey, key),
	}, map[string]string{"key": key}), nil
}

// NewByID selects the document with the given id.
func NewByID(id string) (Query, error) {
	if id == "" {
		return Query{}, fmt.Errorf("id is required")
	}
	return newQuery(ByID, map[string]any{
		"query": match(FieldID, id),
	}, map[string]string{"id": id}), nil
}

// NewByRoom selects documents with an object in room.
// UnfilteredRoom selects the same query as the empty room.
func NewByRoom(room string) Query {
	if room == UnfilteredRoom {
		room = ""
	}
	return newQuery(ByRoom, map[string]any{
		"query": term(FieldLocation, room),
	}, map[string]string{"room": room})
}

// NewFavouritesExists selects documents carrying a favourites rank.
func NewFavouritesExists() Query {
	return newQuery(FavouritesExists, map[string]any{
		"query": map[string]any{"exists": map[string]any{"field": FieldFavouritesRank}},
	}, nil).WithSize(FavouritesLimit).WithSource(FieldKey, FieldFavouritesRank)
}

// NewMostRecent returns the single most recently modified document in language.
func NewMostRecent(language string) (Query, error) {
	if language == "" {
		return Query{}, fmt.Errorf("language is required")
	}
	return newQuery(MostRecent, map[string]any{
		"query": match(FieldLanguage, language),
		"sort": []any{
			map[string]any{FieldLastModified: map[string]any{"order": "desc"}},
		},
	}, map[string]string{"language": language}).WithSize(1).WithSource(FieldLastModified), nil
}

// NewRoomAggregation buckets documents by object location.
func NewRoomAggregation() Query {
	return newQuery(RoomAggregation, map[string]any{
		"aggs": map[string]any{
			RoomsAggregation: map[string]any{
				"terms": map[string]any{"field": FieldLocation, "size": roomBucketLimit},
			},
		},
	}, nil).WithSize(0)
}

func newQuery(kind Kind, body map[string]any, params map[string]string) Query {
	if params == nil {
		params = map[string]string{}
	}
	return Query{kind: kind, body: body, params: params}
}

func match(field, value string) map[string]any {
	return map[string]any{"match": map[string]any{field: value}}
}

func term(field, value string) map[string]any {
	return map[string]any{"term": map[string]any{field: value}}
}

// WithSize returns a copy capped at n hits.
func (q Query) WithSize(n int) Query {
	q.size = &n
	return q
}

// WithSource returns a copy projecting only fields.
func (q Query) WithSource(fields ...string) Query {
	q.sourceIncludes = slices.Clone(fields)
	return q
}

// Kind returns the template kind.
func (q Query) Kind() Kind { return q.kind }

// Size returns the hit cap, nil for the engine default.
func (q Query) Size() *int { return q.size }

// SourceIncludes returns the projected fields.
func (q Query) SourceIncludes() []string { return slices.Clone(q.sourceIncludes) }

// Params returns the substituted values keyed by parameter name.
func (q Query) Params() map[string]string {
	out := make(map[string]string, len(q.params))
	for k, v := range q.params {
		out[k] = v
	}
	return out
}

// Body serializes the query body.
func (q Query) Body() ([]byte, error) {
	if q.kind == "" || q.body == nil {
		return nil, fmt.Errorf("query: empty template")
	}
	b, err := json.Marshal(q.body)
	if err != nil {
		return nil, fmt.Errorf("query: marshal %s: %w", q.kind, err)
	}
	return b, nil
}
