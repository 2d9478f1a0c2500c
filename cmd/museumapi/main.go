package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/naturalis/museumapp-api/internal/auth"
	"github.com/naturalis/museumapp-api/internal/config"
	"github.com/naturalis/museumapp-api/internal/domain"
	"github.com/naturalis/museumapp-api/internal/engine"
	"github.com/naturalis/museumapp-api/internal/engine/elastic"
	logpkg "github.com/naturalis/museumapp-api/internal/logger"
	"github.com/naturalis/museumapp-api/internal/metrics"
	searchrepo "github.com/naturalis/museumapp-api/internal/repository/search"
	statusrepo "github.com/naturalis/museumapp-api/internal/repository/status"
	chiTransport "github.com/naturalis/museumapp-api/internal/transport/chi"
	"github.com/naturalis/museumapp-api/internal/usagelog"
	"github.com/naturalis/museumapp-api/internal/usecase/availability"
	cataloguc "github.com/naturalis/museumapp-api/internal/usecase/catalog"
	healthuc "github.com/naturalis/museumapp-api/internal/usecase/health"
	"github.com/naturalis/museumapp-api/internal/version"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic("failed to load .env: " + err.Error())
	}

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{Level: cfg.Logging.Level, File: cfg.Logging.File})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting museumapp API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("es_host", cfg.Elasticsearch.Host),
		zap.Int("es_port", cfg.Elasticsearch.Port),
		zap.String("es_index", cfg.Elasticsearch.Index),
	)

	metrics.RegisterEngineMetrics()

	// Missing settings and an unreachable engine make the service answer
	// "service unavailable"; the process keeps running.
	var unconfigured []string
	for _, name := range cfg.MissingRequired() {
		logger.Error("Required setting missing", zap.String("setting", name))
		unconfigured = append(unconfigured, name+" missing")
	}

	var store engine.Store
	esStore, err := elastic.NewStore(elastic.Config{
		Scheme:   cfg.Elasticsearch.Scheme,
		Host:     cfg.Elasticsearch.Host,
		Port:     cfg.Elasticsearch.Port,
		Username: cfg.Elasticsearch.Username,
		Password: cfg.Elasticsearch.Password,
	})
	if err != nil {
		logger.Error("Failed to create Elasticsearch client", zap.Error(err))
		unconfigured = append(unconfigured, "elasticsearch client: "+err.Error())
		store = downStore{}
	} else {
		store = esStore
		ctx := context.Background()
		readiness := time.Duration(cfg.Elasticsearch.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Error("Elasticsearch unreachable", zap.Error(err))
			unconfigured = append(unconfigured, "elasticsearch unreachable")
		} else {
			logger.Info("Connected to Elasticsearch")
		}
	}

	// Pass nil interfaces (not typed nil pointers) when the control index is not configured.
	var (
		gateStatus   availability.StatusReader
		healthStatus healthuc.StatusReader
	)
	if cfg.Elasticsearch.ControlIndex != "" {
		st := statusrepo.New(store, cfg.Elasticsearch.ControlIndex)
		gateStatus, healthStatus = st, st
	} else {
		logger.Warn("Control index not configured, documents status is not polled")
	}

	gateOpts := []availability.Option{
		availability.WithProbeTimeout(time.Duration(cfg.Search.TimeoutSec) * time.Second),
	}
	if !cfg.Availability.IsPolling() {
		gateOpts = append(gateOpts, availability.WithoutStatusPolling())
	}
	gate := availability.New(gateStatus, store, logger.Named("gate"), gateOpts...)
	if len(unconfigured) > 0 {
		gate.MarkUnconfigured(strings.Join(unconfigured, "; "))
	}

	creds := auth.NewAdapter(auth.Credential{
		Username: cfg.Auth.User,
		Password: cfg.Auth.Password,
		UserID:   cfg.Auth.UserID,
	})
	tokenSecret := cfg.Auth.TokenSecret
	if tokenSecret == "" {
		// The gate rejects every request before auth while the secret is missing.
		tokenSecret = uuid.NewString()
	}
	tokens, err := auth.NewTokens(tokenSecret, time.Duration(cfg.Auth.TokenTTLSec)*time.Second)
	if err != nil {
		logger.Fatal("Failed to create token codec", zap.Error(err))
	}
	if !cfg.Auth.IsEnabled() {
		logger.Warn("Authentication disabled")
	}

	searchRepo := searchrepo.New(store, cfg.Elasticsearch.Index).
		WithTimeout(time.Duration(cfg.Search.TimeoutSec) * time.Second)
	catalogSvc := cataloguc.New(searchRepo, domain.NewLanguages(cfg.Catalog.Languages...))
	healthSvc := healthuc.New(store, healthStatus, gate)
	usage := usagelog.New(logger)

	server := chiTransport.NewServer(catalogSvc, healthSvc, usage, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	chiTransport.Routes{
		Server:     server,
		Gate:       chiTransport.GateMiddleware(gate, usage),
		Auth:       chiTransport.JWTMiddleware(tokens, creds, cfg.Auth.IsEnabled()),
		Login:      chiTransport.LoginHandler(creds, tokens),
		LoginLimit: chiTransport.NewRateLimiter(cfg.Auth.LoginPerSecond, cfg.Auth.LoginBurst).Middleware,
	}.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// downStore stands in for the engine when no client could be built.
// Every call fails with engine.ErrUnavailable.
type downStore struct{}

func (downStore) down(op string) error { return &engine.Error{Op: op, Err: engine.ErrUnavailable} }

func (d downStore) Ping(context.Context) error { return d.down(engine.OpInfo) }

func (d downStore) WaitForReady(context.Context, time.Duration) error { return d.down(engine.OpInfo) }

func (d downStore) Search(context.Context, string, []byte, engine.SearchOptions) (*engine.SearchResponse, error) {
	return nil, d.down(engine.OpSearch)
}

func (d downStore) Index(context.Context, string, string, []byte, engine.IndexOptions) error {
	return d.down(engine.OpIndex)
}

func (d downStore) Get(context.Context, string, string) ([]byte, error) {
	return nil, d.down(engine.OpGet)
}

func (d downStore) Delete(context.Context, string, string, bool) error {
	return d.down(engine.OpDelete)
}

func (d downStore) DeleteByQuery(context.Context, string, []byte, bool) (int, error) {
	return 0, d.down(engine.OpDeleteByQuery)
}

func (d downStore) CreateIndex(context.Context, string, []byte) error {
	return d.down(engine.OpCreateIndex)
}

func (d downStore) DeleteIndex(context.Context, string) error { return d.down(engine.OpDeleteIndex) }

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{Error: "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
