package server

import (
	"net/http"

	"github.com/claude/gymsplit/internal/models"
)

type routineRequest struct {
	DaysPerWeek int                          `json:"days_per_week" validate:"required,min=1,max=7"`
	Days        map[int][]models.MuscleGroup `json:"days" validate:"required"`
}

type selectionRequest struct {
	IsSelected *bool `json:"is_selected" validate:"required"`
}

type completeRequest struct {
	Exercises []models.Performance `json:"exercises" validate:"omitempty,dive"`
}

type sessionLogsRequest struct {
	SessionIDs []int `json:"session_ids" validate:"omitempty,dive,gt=0"`
}

type selectionsResponse struct {
	UserID      int   `json:"user_id"`
	ExerciseIDs []int `json:"exercise_ids"`
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	routine, err := s.engine.Routine(r.Context(), userID)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handleSaveRoutine(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var req routineRequest
	if !s.decode(w, r, &req) {
		return
	}
	routine := models.Routine{UserID: userID, DaysPerWeek: req.DaysPerWeek, Days: req.Days}
	if err := s.engine.SaveRoutine(r.Context(), routine); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := s.engine.DeleteRoutine(r.Context(), userID); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	state, err := s.engine.State(r.Context(), userID)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	day, ok := queryInt(w, r, "day")
	if !ok {
		return
	}
	generated, err := s.engine.Generate(r.Context(), userID, day)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generated)
}

func (s *Server) handleListSelections(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	ids, err := s.engine.Selected(r.Context(), userID)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, selectionsResponse{UserID: userID, ExerciseIDs: ids})
}

func (s *Server) handleToggleSelection(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	exerciseID, ok := pathID(w, r, "exerciseID")
	if !ok {
		return
	}
	selected, err := s.engine.Toggle(r.Context(), userID, exerciseID)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exercise_id": exerciseID, "is_selected": selected})
}

func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	exerciseID, ok := pathID(w, r, "exerciseID")
	if !ok {
		return
	}
	var req selectionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.SetSelection(r.Context(), userID, exerciseID, *req.IsSelected); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exercise_id": exerciseID, "is_selected": *req.IsSelected})
}

func (s *Server) handleClearSelections(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	day, ok := queryInt(w, r, "day")
	if !ok {
		return
	}
	cleared, err := s.engine.Clear(r.Context(), userID, day)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var req completeRequest
	if !s.decodeOptional(w, r, &req) {
		return
	}
	completed, err := s.engine.Complete(r.Context(), userID, req.Exercises)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, completed)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	sessions, err := s.engine.ListSessions(r.Context(), userID, limit)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSessionLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var req sessionLogsRequest
	if !s.decode(w, r, &req) {
		return
	}
	logs, err := s.engine.LogsForSessions(r.Context(), userID, req.SessionIDs)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if logs == nil {
		logs = []models.LogEntry{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleRecentLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	logs, err := s.engine.RecentLogs(r.Context(), userID, limit)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if logs == nil {
		logs = []models.LogEntry{}
	}
	writeJSON(w, http.StatusOK, logs)
}
