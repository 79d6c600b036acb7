package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/zhuiying-client/internal/models"
	"github.com/zhuiying-client/internal/types"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// pagingParams reads page and pageSize, falling back to defaults
func pagingParams(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = defaultPage
	}
	size, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	return page, min(size, maxPageSize)
}

// handleListTrackers handles GET /api/tracker/list
func (s *Server) handleListTrackers(w http.ResponseWriter, r *http.Request) {
	page, size := pagingParams(r)
	out, err := s.backend.ListTrackers(userIDFrom(r.Context()), page, size)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

// handleGetTracker handles GET /api/tracker/{id}
func (s *Server) handleGetTracker(w http.ResponseWriter, r *http.Request) {
	out, err := s.backend.GetTracker(userIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

// handleCreateTracker handles POST /api/tracker
func (s *Server) handleCreateTracker(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTrackerRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	out, err := s.backend.CreateTracker(userIDFrom(r.Context()), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

// handleUpdateTracker handles PUT /api/tracker/{id}
func (s *Server) handleUpdateTracker(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTrackerRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	req.ID = mux.Vars(r)["id"]
	out, err := s.backend.UpdateTracker(userIDFrom(r.Context()), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

// handleDeleteTracker handles DELETE /api/tracker/{id}
func (s *Server) handleDeleteTracker(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteTracker(userIDFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, models.SuccessResult{Success: true})
}

func (s *Server) handleStartTracker(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, types.StatusActive)
}

func (s *Server) handleStopTracker(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, types.StatusStopped)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, status types.TrackerStatus) {
	out, err := s.backend.SetStatus(userIDFrom(r.Context()), mux.Vars(r)["id"], status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

// handleTrackerStatus handles GET /api/tracker/{id}/status
func (s *Server) handleTrackerStatus(w http.ResponseWriter, r *http.Request) {
	out, err := s.backend.TrackerStatus(userIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, out)
}

func (s *Server) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	s.batch(w, r, func(userID string, ids []string) error {
		return s.backend.DeleteTrackers(userID, ids)
	})
}

func (s *Server) handleBatchStart(w http.ResponseWriter, r *http.Request) {
	s.batch(w, r, func(userID string, ids []string) error {
		return s.backend.SetStatuses(userID, ids, types.StatusActive)
	})
}

func (s *Server) handleBatchStop(w http.ResponseWriter, r *http.Request) {
	s.batch(w, r, func(userID string, ids []string) error {
		return s.backend.SetStatuses(userID, ids, types.StatusStopped)
	})
}

func (s *Server) batch(w http.ResponseWriter, r *http.Request, apply func(userID string, ids []string) error) {
	var req models.IDsRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := apply(userIDFrom(r.Context()), req.IDs); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, models.SuccessResult{Success: true})
}

// handleParseURL handles POST /api/tracker/parse-url
func (s *Server) handleParseURL(w http.ResponseWriter, r *http.Request) {
	var req models.URLRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	respondOK(w, s.backend.ParseURL(req.URL))
}
