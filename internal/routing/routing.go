package routing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"twitterconnect/internal/metrics"
	"twitterconnect/pkg/handlers"
	"twitterconnect/pkg/middleware"
	"twitterconnect/pkg/session"
)

const shutdownTimeout = 10 * time.Second

// NewRouter wraps the routes in the access log outside of mux, so 404 and 405
// answers are logged and counted too.
func NewRouter(h *handlers.TwitterHandler, verifier session.Verifier, gatherer prometheus.Gatherer, rec metrics.Recorder, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Panic(logger))

	InitRoutes(r, h, verifier, logger)

	r.Handle("/metrics", metrics.Handler(gatherer)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handlers.Health).Methods(http.MethodGet)

	return middleware.AccessLog(logger, rec)(r)
}

// InitRoutes must run before any other route is added to r: the gated
// subrouter's catch-all prefix clears a method mismatch recorded by an earlier
// route, which turns a 405 into a 404.
func InitRoutes(r *mux.Router, h *handlers.TwitterHandler, verifier session.Verifier, logger *slog.Logger) {
	sessRouter := r.PathPrefix("").Subrouter()
	sessRouter.Use(middleware.CheckJWT(verifier, logger))

	/* handshake routers */
	r.HandleFunc("/request_oauth", h.RequestOAuth).Methods(http.MethodPost).Name("request_oauth")
	r.HandleFunc("/connect", h.Connect).Methods(http.MethodPost).Name("connect")

	/* session routers */
	sessRouter.HandleFunc("/tweets", h.Tweets).Methods(http.MethodGet).Name("tweets")
	sessRouter.HandleFunc("/disconnect", h.Disconnect).Methods(http.MethodPost).Name("disconnect")
}

// StartServer serves until ctx is cancelled, then drains in-flight requests.
func StartServer(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is running", "addr", addr)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
