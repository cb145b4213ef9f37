package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/mrexodia/pangram-webui/internal/api/middleware"
	"github.com/mrexodia/pangram-webui/internal/api/response"
)

// Dependencies holds all handler dependencies for the router.
type Dependencies struct {
	HealthHandler  http.HandlerFunc
	AnalyzeHandler http.HandlerFunc
	ListHistory    http.HandlerFunc
	GetAnalysis    http.HandlerFunc
	StatsHandler   http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	r.Post("/api/v1/analyze", orNotImplemented(deps.AnalyzeHandler))
	r.Get("/api/v1/history", orNotImplemented(deps.ListHistory))
	r.Get("/api/v1/history/{analysisID}", orNotImplemented(deps.GetAnalysis))
	r.Get("/api/v1/stats", orNotImplemented(deps.StatsHandler))

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
