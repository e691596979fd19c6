package api

import (
	"net/http"

	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/internal/domain/types"
)

const defaultTestDataLimit = 100

func (s *Server) handleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	doc, err := s.deps.DashboardMetrics(r.Context())
	if err != nil {
		s.fail(w, r, "api.dashboardMetrics", "fetch dashboard metrics", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListTestData(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultTestDataLimit, s.maxListLimit)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	docs, err := s.deps.ListTestData(r.Context(), r.URL.Query().Get("domain"), limit)
	if err != nil {
		s.fail(w, r, "api.listTestData", "fetch test data", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleCreateTestData(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if !truthy(body["testName"]) || !truthy(body["domain"]) {
		writeBadRequest(w, "Missing required fields: testName, domain")
		return
	}
	id, err := s.deps.CreateTestData(r.Context(), model.Document(body))
	if err != nil {
		s.fail(w, r, "api.createTestData", "create test data", err)
		return
	}
	writeJSON(w, http.StatusCreated, types.Created{ID: id, Message: "Test data created successfully"})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.Analytics(r.Context(), r.URL.Query().Get("domain"))
	if err != nil {
		s.fail(w, r, "api.analytics", "fetch analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListCompliance(w http.ResponseWriter, r *http.Request) {
	docs, err := s.deps.ListCompliance(r.Context())
	if err != nil {
		s.fail(w, r, "api.listCompliance", "fetch compliance data", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleCreateCompliance(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if !truthy(body["standard"]) || !truthy(body["testName"]) {
		writeBadRequest(w, "Missing required fields: standard, testName")
		return
	}
	id, status, err := s.deps.CreateCompliance(r.Context(), model.Document(body))
	if err != nil {
		s.fail(w, r, "api.createCompliance", "create compliance record", err)
		return
	}
	writeJSON(w, http.StatusCreated, types.Created{
		ID:      id,
		Status:  status,
		Message: "Compliance record created successfully",
	})
}

func (s *Server) handleListKPIs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	docs, err := s.deps.ListKPIs(r.Context(), types.KPIFilter{
		Domain:    q.Get("domain"),
		Level:     q.Get("level"),
		TestID:    q.Get("testId"),
		ProgramID: q.Get("programId"),
		VehicleID: q.Get("vehicleId"),
	})
	if err != nil {
		s.fail(w, r, "api.listKPIs", "fetch KPIs", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleExecutiveKPIs(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.ExecutiveKPIs(r.Context(), r.URL.Query().Get("programId"))
	if err != nil {
		s.fail(w, r, "api.executiveKPIs", "fetch executive KPIs", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
