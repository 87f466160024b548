// Package server exposes a conversion registry over HTTP for debugging.
//
// All endpoints are read only. Type expressions are passed as the "from" and
// "to" query parameters and parsed with the engine's catalog:
//
//	GET /healthz                        build and registry info
//	GET /types                          catalog names and the types they denote
//	GET /find?from=int&to=string        the resolved converter
//	GET /convert?from=&to=int&value=..  convert a literal HCL expression
//	GET /tree?from=int&to=string        the explored conversion tree as JSON
//	GET /graph.dot?from=int&to=string   the tree as Graphviz DOT
//	GET /graph.svg?from=int&to=string   the tree rendered to SVG
//	GET /stats                          registry counters
//
// Errors are JSON objects carrying the error code of [errors.Error].
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/convgraph/internal/engine"
	"github.com/matzehuels/convgraph/pkg/cache"
)

const shutdownTimeout = 5 * time.Second

// Server serves the debug API of one engine.
type Server struct {
	engine *engine.Engine
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
	router chi.Router
}

// New returns a server for e. Rendered SVGs are stored in c, which may be a
// [cache.NullCache].
func New(e *engine.Engine, c cache.Cache, logger *log.Logger) *Server {
	s := &Server{
		engine: e,
		cache:  cache.Observed(c, "render"),
		keyer:  cache.NewDefaultKeyer(),
		logger: logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/types", s.handleTypes)
	r.Get("/find", s.handleFind)
	r.Get("/convert", s.handleConvert)
	r.Get("/tree", s.handleTree)
	r.Get("/graph.dot", s.handleDOT)
	r.Get("/graph.svg", s.handleSVG)
	r.Get("/stats", s.handleStats)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound(r.URL.Path))
	})
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("debug server listening", "addr", "http://"+addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down debug server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("debug server shutdown failed", "err", err)
		return err
	}
	return nil
}
