package server

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

type registerRequest struct {
	Email          string  `json:"email" validate:"required,email,max=100"`
	Password       string  `json:"password" validate:"required,min=8,max=72"`
	FirstName      *string `json:"first_name" validate:"omitempty,max=50"`
	LastName       *string `json:"last_name" validate:"omitempty,max=50"`
	UnitPreference string  `json:"unit_preference" validate:"omitempty,oneof=metric imperial"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Message string `json:"message"`
	UserID  int    `json:"user_id"`
	Email   string `json:"email"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	user, err := s.store.RegisterUser(r.Context(), models.NewUser{
		Email:          req.Email,
		PasswordHash:   string(hash),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		UnitPreference: req.UnitPreference,
	})
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	s.log.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, workout.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !user.IsActive {
		writeError(w, http.StatusForbidden, "account is inactive")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "login successful",
		UserID:  user.ID,
		Email:   user.Email,
	})
}

func (s *Server) bcryptCost() int {
	if s.opts.BcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return s.opts.BcryptCost
}
