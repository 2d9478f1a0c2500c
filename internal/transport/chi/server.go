package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/naturalis/museumapp-api/internal/domain"
	"github.com/naturalis/museumapp-api/internal/engine"
	"github.com/naturalis/museumapp-api/internal/usagelog"
	cataloguc "github.com/naturalis/museumapp-api/internal/usecase/catalog"
	healthuc "github.com/naturalis/museumapp-api/internal/usecase/health"
)

// Banner is the body of GET /api/.
var Banner = map[string]string{"you've stumbled upon": "naturalis museumapp pipeline api"}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// LastUpdatedParams are the query parameters of GET /api/last-updated.
type LastUpdatedParams struct {
	Language *string `form:"language,omitempty" json:"language,omitempty"`
}

// DocumentsParams are the query parameters of GET /api/documents.
type DocumentsParams struct {
	Key      *string `form:"key,omitempty" json:"key,omitempty"`
	Language *string `form:"language,omitempty" json:"language,omitempty"`
	Room     *string `form:"room,omitempty" json:"room,omitempty"`
}

// UnitIDsParams are the query parameters of GET /api/v1/ids.
type UnitIDsParams struct {
	From *string `form:"from,omitempty" json:"from,omitempty"`
}

// LegacyDocumentsParams are the query parameters of GET /api/v1/documents.
type LegacyDocumentsParams struct {
	From *string `form:"from,omitempty" json:"from,omitempty"`
	ID   *string `form:"id,omitempty" json:"id,omitempty"`
}

// Server serves the catalog endpoints.
type Server struct {
	catalog *cataloguc.Service
	health  *healthuc.Service
	usage   *usagelog.Logger
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	catalog *cataloguc.Service,
	health *healthuc.Service,
	usage *usagelog.Logger,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{catalog: catalog, health: health, usage: usage, logger: logger}
}

// Root handles GET /api/.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Banner)
}

// LastUpdated handles GET /api/last-updated.
func (s *Server) LastUpdated(w http.ResponseWriter, r *http.Request) {
	var params LastUpdatedParams
	if err := bindQuery(r, "language", &params.Language); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.catalog.LastUpdated(r.Context(), deref(params.Language))
	s.respond(w, r, res, err)
}

// Documents handles GET /api/documents.
func (s *Server) Documents(w http.ResponseWriter, r *http.Request) {
	var params DocumentsParams
	if err := bindQuery(r, "key", &params.Key); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := bindQuery(r, "language", &params.Language); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := bindQuery(r, "room", &params.Room); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.catalog.Documents(r.Context(), cataloguc.DocumentsRequest{
		Key:      deref(params.Key),
		Language: deref(params.Language),
		Room:     deref(params.Room),
	})
	s.respond(w, r, res, err)
}

// Favourites handles GET /api/favourites.
func (s *Server) Favourites(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.Favourites(r.Context())
	s.respond(w, r, res, err)
}

// Rooms handles GET /api/rooms.
func (s *Server) Rooms(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.Rooms(r.Context())
	s.respond(w, r, res, err)
}

// UnitIDs handles GET /api/v1/ids.
func (s *Server) UnitIDs(w http.ResponseWriter, r *http.Request) {
	var params UnitIDsParams
	if err := bindQuery(r, "from", &params.From); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.catalog.UnitIDs(r.Context(), deref(params.From))
	s.respond(w, r, res, err)
}

// LegacyDocuments handles GET /api/v1/documents.
func (s *Server) LegacyDocuments(w http.ResponseWriter, r *http.Request) {
	var params LegacyDocumentsParams
	if err := bindQuery(r, "from", &params.From); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := bindQuery(r, "id", &params.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.catalog.LegacyDocuments(r.Context(), cataloguc.LegacyDocumentsRequest{
		From: deref(params.From),
		ID:   deref(params.ID),
	})
	s.respond(w, r, res, err)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// respond writes a handler outcome. Failures keep status 200 and carry an error key.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, res cataloguc.Result, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.usage.Usage(r, res.Params, res.Hits)
	writeJSON(w, http.StatusOK, res.Body)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.usage.Error(r, err.Error())
	msg := clientMessage(err)
	if msg == "internal error" {
		s.logger.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, ErrorResponse{Error: msg})
}

// clientMessage returns the message a caller sees without exposing engine internals.
func clientMessage(err error) string {
	var bindErr *bindError
	switch {
	case errors.As(err, &bindErr):
		return bindErr.Error()
	case errors.Is(err, domain.ErrValidation):
		return err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "search timed out"
	case errors.Is(err, engine.ErrUnavailable):
		return "search engine unavailable"
	case errors.Is(err, engine.ErrBadRequest):
		return "search rejected by engine"
	case errors.Is(err, engine.ErrNotFound):
		return "index not found"
	default:
		return "internal error"
	}
}

type bindError struct {
	param string
	err   error
}

func (e *bindError) Error() string { return "invalid parameter " + e.param + ": " + e.err.Error() }

func (e *bindError) Unwrap() error { return e.err }

func bindQuery(r *http.Request, name string, dest **string) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return &bindError{param: name, err: err}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
