package server

import (
	"net/http"

	"github.com/jmylchreest/pixelpad/internal/settings"
)

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSettingsList(w http.ResponseWriter, _ *http.Request) {
	files, err := settings.List(s.cfg.SettingsDir)
	if err != nil {
		s.logger.Error("failed to list settings", "dir", s.cfg.SettingsDir, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"files": files})
}
