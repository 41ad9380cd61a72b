package server

import (
	"net/http"

	"github.com/claude/gymsplit/internal/models"
)

// userParam resolves {userID} and checks the account exists.
func (s *Server) userParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return 0, false
	}
	if _, err := s.store.GetUser(r.Context(), userID); err != nil {
		s.writeEngineError(w, r, err)
		return 0, false
	}
	return userID, true
}

func (s *Server) handleDefaultExercises(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.store.ListDefaultExercises(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, defaults)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userParam(w, r)
	if !ok {
		return
	}
	exercises, err := s.store.ListExercises(r.Context(), userID)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if exercises == nil {
		exercises = []models.Exercise{}
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userParam(w, r)
	if !ok {
		return
	}
	var in models.ExerciseInput
	if !s.decode(w, r, &in) {
		return
	}
	ex, err := s.store.CreateExercise(r.Context(), userID, in)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userParam(w, r)
	if !ok {
		return
	}
	exerciseID, ok := pathID(w, r, "exerciseID")
	if !ok {
		return
	}
	var in models.ExerciseInput
	if !s.decode(w, r, &in) {
		return
	}
	ex, err := s.store.UpdateExercise(r.Context(), userID, exerciseID, in)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userParam(w, r)
	if !ok {
		return
	}
	exerciseID, ok := pathID(w, r, "exerciseID")
	if !ok {
		return
	}
	if err := s.store.DeleteExercise(r.Context(), userID, exerciseID); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
