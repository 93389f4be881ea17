package service

import (
	"net/http"
	"strconv"
)

func (s *Server) handleRevisions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListRevisions(w, r)
	case http.MethodPost:
		s.handleCreateRevision(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListRevisions(w http.ResponseWriter, r *http.Request) {
	revisions, err := s.store.ListRevisions()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, struct {
		Latest int   `json:"latest"`
		List   []int `json:"list"`
	}{
		Latest: revisions[len(revisions)-1],
		List:   revisions,
	})
}

func (s *Server) handleCreateRevision(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ZipB64 string `json:"zip_b64"`
	}
	if !s.decodeRequest(w, r, &request) {
		return
	}

	revision, err := s.store.ImportArchive(r.Context(), request.ZipB64)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]int{"id": revision})
}

func (s *Server) handleRevisionFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	revision, err := strconv.Atoi(r.URL.Query().Get("rev"))
	if err != nil {
		http.Error(w, "invalid revision", http.StatusBadRequest)
		return
	}

	content, err := s.store.ReadRevisionFile(revision, r.URL.Query().Get("path"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(content))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
