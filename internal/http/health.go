package http

import (
	"net/http"

	"github.com/cliptray/cliptray/pkg/protocol"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	clips, sections := s.lib.Counts()
	writeJSON(w, http.StatusOK, protocol.HealthResponse{
		OK:       true,
		Version:  protocol.ProtocolVersion,
		Clips:    clips,
		Sections: sections,
	})
}
