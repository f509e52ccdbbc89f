// Package httpapi exposes a read-only debug surface over the engine:
// basis/vectorset/recommendation enumeration and basic metadata, for
// operators to poke at a running process. It is explicitly NOT the
// client wire protocol (out of scope for this repository) — every route
// here only calls engine ops that already have a blocking
// request/response shape (blist, vlist, bget, rlist), wrapped to make a
// callback synchronous.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/simbase-engine/simbase/engine"
	"github.com/simbase-engine/simbase/errs"
	"github.com/simbase-engine/simbase/logging"
)

// Server wraps an *engine.Engine with the read-only debug routes.
type Server struct {
	eng *engine.Engine
	mux *chi.Mux
}

// New builds a Server routed over eng.
func New(eng *engine.Engine) *Server {
	s := &Server{eng: eng, mux: chi.NewRouter()}
	s.mux.Use(middleware.RequestID)
	s.mux.Use(middleware.RealIP)
	s.mux.Use(middleware.Logger)
	s.mux.Use(middleware.Recoverer)
	s.mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	s.mux.Get("/debug/bases", s.handleBases)
	s.mux.Get("/debug/bases/{bkey}", s.handleBasis)
	s.mux.Get("/debug/bases/{bkey}/vectorsets", s.handleVectorSets)
	s.mux.Get("/debug/vectorsets/{vkey}/recommendations", s.handleRecommendations)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// await turns one engine.Callback[T] invocation into a blocking call,
// since every route here maps 1:1 onto a single dispatcher op.
func await[T any](submit func(engine.Callback[T])) (T, error) {
	var zero T
	resCh := make(chan T, 1)
	errCh := make(chan error, 1)
	submit(func(res T, err error) {
		if err != nil {
			errCh <- err
			return
		}
		resCh <- res
	})
	select {
	case res := <-resCh:
		return res, nil
	case err := <-errCh:
		return zero, err
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.UnknownEntry:
		status = http.StatusNotFound
	case errs.InvalidKeyFormat, errs.InvalidId, errs.KindMismatch:
		status = http.StatusBadRequest
	case errs.Rejected:
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)
	writeJSON(w, map[string]string{"error": err.Error()})
}

func (s *Server) handleBases(w http.ResponseWriter, r *http.Request) {
	bases, err := await[[]string](s.eng.BList)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, bases)
}

func (s *Server) handleBasis(w http.ResponseWriter, r *http.Request) {
	bkey := chi.URLParam(r, "bkey")
	coords, err := await[[]string](func(cb engine.Callback[[]string]) { s.eng.BGet(bkey, cb) })
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"bkey": bkey, "coords": coords})
}

func (s *Server) handleVectorSets(w http.ResponseWriter, r *http.Request) {
	bkey := chi.URLParam(r, "bkey")
	vkeys, err := await[[]string](func(cb engine.Callback[[]string]) { s.eng.VList(bkey, cb) })
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, vkeys)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	vkey := chi.URLParam(r, "vkey")
	targets, err := await[[]string](func(cb engine.Callback[[]string]) { s.eng.RList(vkey, cb) })
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, targets)
}

// ListenAndServe starts an http.Server with sane timeouts, shutting
// down cleanly when ctx is canceled.
func ListenAndServe(ctx context.Context, addr string, eng *engine.Engine) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           New(eng),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log := logging.Scoped("httpapi")
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		log.Info("shutting down debug http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
