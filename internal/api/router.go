package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"upsell-widget-engine/internal/observability"
)

func Router(h *Handler, adminNonce string) http.Handler {
	r := chi.NewRouter()

	r.Use(observability.Measure)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.With(RequireNonce(adminNonce)).Post("/admin-ajax", h.AdminAjax)
	r.Get("/v1/campaigns/{id}/preview", h.Preview)
	r.Get("/v1/render", h.RenderPage)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.MetricsHandler())
	return r
}

// RequireNonce rejects admin requests whose "nonce" form field does not
// match the configured token. An empty configured token disables the check
// (local development).
func RequireNonce(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected != "" {
				got := r.PostFormValue("nonce")
				if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
					writeError(w, http.StatusForbidden, "security check failed")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
