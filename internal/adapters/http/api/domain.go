package api

import (
	"net/http"

	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/internal/domain/types"
)

func (s *Server) handleDomain(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := s.deps.DomainView(r.Context(), r.PathValue("domain"), types.DomainFilter{
		TestID:    q.Get("testId"),
		VehicleID: q.Get("vehicleId"),
		ProgramID: q.Get("programId"),
	})
	writeJSON(w, http.StatusOK, view)
}

// handleStreams never fails: a bad limit or a store error is an empty list.
func (s *Server) handleStreams(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 0, s.maxListLimit)
	if err != nil {
		writeJSON(w, http.StatusOK, []model.Document{})
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Streams(r.Context(), r.PathValue("domain"), r.URL.Query().Get("testId"), limit))
}
