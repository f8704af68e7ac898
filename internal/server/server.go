// Package server exposes the signature pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz         liveness probe, answers "ok"
//	POST /v1/signatures   body is a JSON trace, response is the SVG document
//
// Stroke options come from the query string (title, penWidth, penColour).
// Clients that send Accept-Encoding: gzip, or ask for ?format=svgz, receive
// the compressed document with Content-Encoding: gzip. ?format=png and
// ?format=pdf select the raster and print exports.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sigsvg/pkg/pipeline"
	"github.com/matzehuels/sigsvg/pkg/signature"
)

const (
	// MaxBodyBytes caps the size of an uploaded trace.
	MaxBodyBytes = 1 << 20

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server serves signature renders backed by a pipeline runner.
type Server struct {
	runner   *pipeline.Runner
	defaults signature.Config
	logger   *log.Logger
}

// New creates a server. defaults is the stroke configuration that query
// parameters are merged over.
func New(runner *pipeline.Runner, defaults signature.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, defaults: defaults, logger: logger}
}

// Router returns the HTTP handler with all routes and middleware registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/signatures", s.handleRender)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}
