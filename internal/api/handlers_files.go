package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleFile serves a stored output by name.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path, err := s.files.Path(chi.URLParam(r, "name"))
	if err != nil {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}
