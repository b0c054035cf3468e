package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter wires the storefront routes. The server acts with the signed-in
// user's token, so browsers may only reach it from the same origin or from
// one of allowedOrigins. Requests without an Origin header (curl, the CLI)
// are not affected.
func NewRouter(handler *Handler, allowedOrigins ...string) http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)
	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	handler.RegisterRoutes(r)

	guarded := originGuard(allowedOrigins, handler.logger)(r)
	if len(allowedOrigins) == 0 {
		return guarded
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(guarded)
}

// originGuard rejects browser requests coming from an origin that is neither
// the server itself nor allowlisted.
func originGuard(allowed []string, log *slog.Logger) func(http.Handler) http.Handler {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[origin] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || set[origin] || sameOrigin(origin, r.Host) {
				next.ServeHTTP(w, r)
				return
			}
			log.Warn("foreign origin rejected", "origin", origin, "method", r.Method, "path", r.URL.Path)
			http.Error(w, "origin not allowed", http.StatusForbidden)
		})
	}
}

func sameOrigin(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Host == host
}

// StartServer serves until ctx is cancelled, then drains for up to ten seconds.
func StartServer(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("storefront server shutting down")
	return srv.Shutdown(shutdownCtx)
}
