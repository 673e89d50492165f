package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// apiTimeout guards the JSON routes only; the stream endpoints are
// long-lived and must not be cut off by it.
func apiTimeout(d time.Duration) func(http.Handler) http.Handler {
	return middleware.Timeout(d)
}

var defaultAPITimeout = 15 * time.Second
