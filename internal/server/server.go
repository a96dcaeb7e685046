// Package server assembles the HTTP surface: routes, guards, and request
// logging.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/troindx/oxidize/internal/handler"
	"github.com/troindx/oxidize/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

// Router wires the handlers behind their guards. Registration is the only
// open route; reads need a valid session and mutations additionally
// require the token subject to own the target resource.
func Router(
	logger *zerolog.Logger,
	guard *middleware.Guard,
	users *handler.UserHTTPHandler,
	verifications *handler.VerificationHTTPHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(hlog.NewHandler(*logger))
	r.Use(hlog.AccessHandler(func(req *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(req).Info().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", status).
			Dur("duration", duration).
			Msg("request")
	}))

	r.Post("/users", users.Register)

	r.Group(func(r chi.Router) {
		r.Use(guard.RequireSession)
		r.Get("/users/{id}", users.Get)
		r.Get("/mail/verifications/start-verification", verifications.Start)
		r.Get("/mail/verifications/{id}/verify/{secret}", verifications.Finish)
	})

	r.Group(func(r chi.Router) {
		r.Use(guard.RequireOwnership)
		r.Put("/users/{id}", users.Update)
		r.Delete("/users/{id}", users.Delete)
	})

	return r
}

// Run serves the handler on addr until the context is canceled, then shuts
// down gracefully. Listener failures are returned to the caller rather
// than terminating the process, so deferred cleanup still runs.
func Run(ctx context.Context, logger *zerolog.Logger, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: h,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
