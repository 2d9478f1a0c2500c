package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes wires the HTTP surface onto a router.
type Routes struct {
	Server *Server
	// Gate runs before auth on every /api route and on login.
	Gate func(http.Handler) http.Handler
	// Auth guards the data routes.
	Auth func(http.Handler) http.Handler
	// Login serves POST /auth.
	Login http.Handler
	// LoginLimit throttles POST /auth.
	LoginLimit func(http.Handler) http.Handler
}

// Mount registers every route on r. /health and /metrics bypass gate and auth.
func (rt Routes) Mount(r chi.Router) {
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	s := rt.Server
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Group(func(r chi.Router) {
		r.Use(rt.Gate)

		r.With(rt.LoginLimit).Post("/auth", rt.Login.ServeHTTP)

		r.Route("/api", func(r chi.Router) {
			r.Get("/", s.Root)

			r.Group(func(r chi.Router) {
				r.Use(rt.Auth)

				r.Get("/last-updated", s.LastUpdated)
				r.Get("/documents", s.Documents)
				r.Get("/favourites", s.Favourites)
				r.Get("/rooms", s.Rooms)

				r.Route("/v1", func(r chi.Router) {
					r.Get("/ids", s.UnitIDs)
					r.Get("/documents", s.LegacyDocuments)
				})
			})
		})
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found: "+r.URL.Path)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed on "+r.URL.Path)
}
