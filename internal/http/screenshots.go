package http

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/cliptray/cliptray/internal/screenshot"
	"github.com/cliptray/cliptray/pkg/protocol"
)

// handleScreenshot streams a stored screenshot by file name.
func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	if s.shots == nil {
		writeJSON(w, http.StatusNotFound, protocol.NewErrorResponse(protocol.ErrNotFound, "screenshots not available"))
		return
	}

	name := r.PathValue("filename")
	path, err := s.shots.Path(name)
	if err != nil {
		if errors.Is(err, screenshot.ErrInvalidName) {
			slog.Warn("security.screenshot_name_rejected", "name", name)
		}
		writeJSON(w, http.StatusBadRequest, protocol.NewErrorResponse(protocol.ErrInvalidRequest, "invalid file name"))
		return
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, protocol.NewErrorResponse(protocol.ErrNotFound, "screenshot not found"))
			return
		}
		slog.Error("screenshot open failed", "name", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, protocol.NewErrorResponse(protocol.ErrInternal, "read failed"))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeJSON(w, http.StatusNotFound, protocol.NewErrorResponse(protocol.ErrNotFound, "screenshot not found"))
		return
	}
	w.Header().Set("Cache-Control", "private, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
