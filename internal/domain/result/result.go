package result

import (
	"encoding/json"
	"fmt"

	"github.com/naturalis/museumapp-api/internal/engine"
)

// RoomsNote travels with every room aggregation.
const RoomsNote = "doc_count is the number of species with at least one object in the room, " +
	"not the number of objects in the room"

// List is a bare list of stored documents.
type List []json.RawMessage

// Counted is a list of stored documents with its length.
type Counted struct {
	Size  int               `json:"size"`
	Items []json.RawMessage `json:"items"`
}

// Aggregation is a verbatim terms-aggregation bucket list plus the caveat note.
type Aggregation struct {
	Items json.RawMessage `json:"items"`
	Note  string          `json:"note"`
}

// LastModified carries the most recent last_modified value, null when the index is empty.
type LastModified struct {
	LastModified any `json:"last_modified"`
}

// ReduceList extracts each hit's stored document. The result is never nil.
func ReduceList(resp *engine.SearchResponse) List {
	if resp == nil {
		return List{}
	}
	out := make(List, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		src := h.Source
		if len(src) == 0 {
			src = json.RawMessage("null")
		}
		out = append(out, src)
	}
	return out
}

// ReduceCounted extracts each hit's stored document and counts them.
func ReduceCounted(resp *engine.SearchResponse) Counted {
	items := ReduceList(resp)
	return Counted{Size: len(items), Items: items}
}

// ReduceAggregation extracts the bucket list of the named terms aggregation.
func ReduceAggregation(resp *engine.SearchResponse, name string) (Aggregation, error) {
	if resp == nil {
		return Aggregation{}, fmt.Errorf("aggregation %q: empty response", name)
	}
	raw, ok := resp.Aggregations[name]
	if !ok {
		return Aggregation{}, fmt.Errorf("aggregation %q missing from response", name)
	}
	var agg struct {
		Buckets json.RawMessage `json:"buckets"`
	}
	if err := json.Unmarshal(raw, &agg); err != nil {
		return Aggregation{}, fmt.Errorf("aggregation %q: %w", name, err)
	}
	if len(agg.Buckets) == 0 || string(agg.Buckets) == "null" {
		agg.Buckets = json.RawMessage("[]")
	}
	return Aggregation{Items: agg.Buckets, Note: RoomsNote}, nil
}

// ReduceLastModified reads last_modified from the first hit.
func ReduceLastModified(resp *engine.SearchResponse) (LastModified, error) {
	if resp == nil || len(resp.Hits.Hits) == 0 {
		return LastModified{}, nil
	}
	var doc struct {
		LastModified any `json:"last_modified"`
	}
	if err := json.Unmarshal(resp.Hits.Hits[0].Source, &doc); err != nil {
		return LastModified{}, fmt.Errorf("decode last_modified: %w", err)
	}
	return LastModified{LastModified: doc.LastModified}, nil
}
