package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/naturalis/museumapp-api/internal/engine"
)

// Compile-time check: Store implements engine.Store.
var _ engine.Store = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch store.
type Config struct {
	Scheme   string // http (default) or https
	Host     string
	Port     int
	Username string
	Password string
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Address returns the base URL of the cluster.
func (c Config) Address() string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Store implements engine.Store via go-elasticsearch.
type Store struct {
	es *elasticsearch.Client
}

// NewStore creates an Elasticsearch store. No request is made until first use.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("port is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Address()},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{es: es}, nil
}

// Ping calls the cluster info endpoint.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.es.Info(s.es.Info.WithContext(ctx))
	if err := checkResponse(engine.OpInfo, res, err); err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// WaitForReady polls Ping until the engine responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for elasticsearch: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Search runs a query body against index.
func (s *Store) Search(
	ctx context.Context, index string, body []byte, opts engine.SearchOptions,
) (*engine.SearchResponse, error) {
	o := []func(*esapi.SearchRequest){
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(index),
		s.es.Search.WithBody(bytes.NewReader(body)),
	}
	if opts.Size != nil {
		o = append(o, s.es.Search.WithSize(*opts.Size))
	}
	if len(opts.SourceIncludes) > 0 {
		o = append(o, s.es.Search.WithSourceIncludes(opts.SourceIncludes...))
	}
	if opts.Timeout > 0 {
		o = append(o, s.es.Search.WithTimeout(opts.Timeout))
	}

	res, err := s.es.Search(o...)
	if err := checkResponse(engine.OpSearch, res, err); err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var sr engine.SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, &engine.Error{Op: engine.OpSearch, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &sr, nil
}

// Index writes one document under id.
func (s *Store) Index(ctx context.Context, index, id string, body []byte, opts engine.IndexOptions) error {
	o := []func(*esapi.IndexRequest){
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(id),
	}
	if opts.CreateOnly {
		o = append(o, s.es.Index.WithOpType("create"))
	}
	if opts.Refresh {
		o = append(o, s.es.Index.WithRefresh("true"))
	}

	res, err := s.es.Index(index, bytes.NewReader(body), o...)
	if err := checkResponse(engine.OpIndex, res, err); err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// Get returns the stored _source of a document.
func (s *Store) Get(ctx context.Context, index, id string) ([]byte, error) {
	res, err := s.es.Get(index, id, s.es.Get.WithContext(ctx))
	if err := checkResponse(engine.OpGet, res, err); err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var doc struct {
		Found  bool            `json:"found"`
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, &engine.Error{Op: engine.OpGet, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !doc.Found {
		return nil, &engine.Error{Op: engine.OpGet, Err: engine.ErrNotFound}
	}
	return doc.Source, nil
}

// Delete removes one document by id.
func (s *Store) Delete(ctx context.Context, index, id string, refresh bool) error {
	o := []func(*esapi.DeleteRequest){s.es.Delete.WithContext(ctx)}
	if refresh {
		o = append(o, s.es.Delete.WithRefresh("true"))
	}

	res, err := s.es.Delete(index, id, o...)
	if err := checkResponse(engine.OpDelete, res, err); err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// DeleteByQuery removes all documents matching body and returns the deleted count.
func (s *Store) DeleteByQuery(ctx context.Context, index string, body []byte, refresh bool) (int, error) {
	res, err := s.es.DeleteByQuery(
		[]string{index},
		bytes.NewReader(body),
		s.es.DeleteByQuery.WithContext(ctx),
		s.es.DeleteByQuery.WithRefresh(refresh),
	)
	if err := checkResponse(engine.OpDeleteByQuery, res, err); err != nil {
		return 0, err
	}
	defer res.Body.Close()

	var out struct {
		Deleted int `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, &engine.Error{Op: engine.OpDeleteByQuery, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out.Deleted, nil
}

// CreateIndex creates index with the given mapping document.
func (s *Store) CreateIndex(ctx context.Context, index string, mapping []byte) error {
	res, err := s.es.Indices.Create(
		index,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(bytes.NewReader(mapping)),
	)
	if err := checkResponse(engine.OpCreateIndex, res, err); err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// DeleteIndex drops index.
func (s *Store) DeleteIndex(ctx context.Context, index string) error {
	res, err := s.es.Indices.Delete([]string{index}, s.es.Indices.Delete.WithContext(ctx))
	if err := checkResponse(engine.OpDeleteIndex, res, err); err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// checkResponse maps transport failures and error statuses to engine sentinels.
// On error the response body is consumed and closed.
func checkResponse(op string, res *esapi.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return &engine.Error{Op: op, Err: err}
		}
		return &engine.Error{Op: op, Err: fmt.Errorf("%w: %w", engine.ErrUnavailable, err)}
	}
	if !res.IsError() {
		return nil
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	reason := errorReason(body)

	var sentinel error
	switch {
	case res.StatusCode == http.StatusNotFound:
		sentinel = engine.ErrNotFound
	case res.StatusCode == http.StatusConflict:
		sentinel = engine.ErrConflict
	case res.StatusCode >= 500:
		sentinel = engine.ErrUnavailable
	default:
		sentinel = engine.ErrBadRequest
	}
	return &engine.Error{Op: op, Err: fmt.Errorf("%w: [%s] %s", sentinel, res.Status(), reason)}
}

// errorReason extracts error.reason from an engine error body, falling back to the raw body.
func errorReason(body []byte) string {
	var e struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Reason != "" {
		return e.Error.Type + ": " + e.Error.Reason
	}
	return string(body)
}
