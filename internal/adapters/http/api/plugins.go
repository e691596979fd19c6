package api

import (
	"net/http"

	"github.com/sves-daq/backend/pkg/logger"
)

type pluginFailure struct {
	Success    bool   `json:"success"`
	PluginName string `json:"pluginName"`
	Error      string `json:"error"`
}

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.ListPlugins(r.Context()))
}

func (s *Server) handleRunPlugin(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	run, err := s.deps.RunPlugin(r.Context(), name)
	if err != nil {
		s.pluginFailed(w, r, name, "execute plugin", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleConfigurePlugin(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	body, err := decodeObject(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	out, err := s.deps.ConfigurePlugin(r.Context(), name, body["config"])
	if err != nil {
		s.pluginFailed(w, r, name, "configure plugin", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) pluginFailed(w http.ResponseWriter, r *http.Request, name, action string, err error) {
	s.logger.Error(r.Context(), "plugin request failed",
		logger.String("plugin", name),
		logger.String("action", action),
		logger.Error(err))
	msg := err.Error()
	if msg == "" {
		msg = "Failed to " + action
	}
	writeJSON(w, http.StatusInternalServerError, pluginFailure{PluginName: name, Error: msg})
}
