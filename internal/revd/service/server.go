// Package service exposes the store over a small JSON HTTP API. It is thin
// glue: handlers decode parameters, call into the storage package and map
// its errors onto status codes.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"gitlab.com/revstore/revd/internal/log"
	"gitlab.com/revstore/revd/internal/revd/storage"
)

// Server serves the revd HTTP API on top of a single store.
type Server struct {
	store     *storage.Store
	logger    log.Logger
	httpSrv   *http.Server
	boundAddr string
}

// NewServer creates a server for the given store.
func NewServer(store *storage.Store, logger log.Logger) *Server {
	return &Server{
		store:  store,
		logger: logger,
	}
}

// Handler returns the HTTP handler serving the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/fs/list", s.handleList)
	mux.HandleFunc("/api/fs/read", s.handleRead)
	mux.HandleFunc("/api/fs/save", s.handleWrite)
	mux.HandleFunc("/api/fs/write", s.handleWrite)
	mux.HandleFunc("/api/fs/rename", s.handleRename)
	mux.HandleFunc("/api/fs/delete", s.handleDelete)
	mux.HandleFunc("/api/fs/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/revisions", s.handleRevisions)
	mux.HandleFunc("/api/revisions/file", s.handleRevisionFile)

	return s.requestLogger(mux)
}

// Start begins serving the API on addr and blocks until the context is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.boundAddr = listener.Addr().String()

	s.httpSrv = &http.Server{Handler: s.Handler()}

	s.logger.WithField("address", s.boundAddr).Info("starting API listener")

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Error("shutting down API listener")
		}
	}()

	if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}

// BoundAddr returns the address the server bound to. Only valid after Start.
func (s *Server) BoundAddr() string { return s.boundAddr }

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("encoding response")
	}
}

// respondError maps storage errors onto HTTP status codes. Client-caused
// failures keep their message; everything else is reported as a plain 500 to
// avoid leaking filesystem detail.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrPathEscapesRoot), errors.Is(err, storage.ErrInvalidArchive):
		status = http.StatusBadRequest
	case errors.Is(err, fs.ErrPermission):
		status = http.StatusForbidden
	}

	s.logger.WithError(err).WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	}).Warn("request failed")

	if status == http.StatusInternalServerError {
		http.Error(w, http.StatusText(status), status)
		return
	}

	http.Error(w, err.Error(), status)
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, request any) bool {
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
