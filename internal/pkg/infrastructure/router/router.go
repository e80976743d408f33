package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"github.com/rs/cors"
)

// SessionHeader identifies a dashboard session. Trend series and equipment
// toggles are kept per session.
const SessionHeader string = "X-Session-ID"

// New returns a router that lets browsers on allowedOrigins, or on any
// origin when none are given, read and write dashboard state. Sessions
// travel in SessionHeader rather than in cookies, so credentials are not
// allowed.
func New(serviceName string, allowedOrigins ...string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID", SessionHeader},
		ExposedHeaders: []string{SessionHeader},
		MaxAge:         int((10 * time.Minute).Seconds()),
	}).Handler)

	r.Use(middleware.Recoverer)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))

	return r
}
