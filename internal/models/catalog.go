package models

import (
	"errors"
	"time"
)

// ErrEmailTaken is returned when registering an email that already has an
// account.
var ErrEmailTaken = errors.New("email already registered")

// User is an account owning a catalog, a routine and a workout history.
type User struct {
	ID             int       `json:"user_id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	FirstName      *string   `json:"first_name,omitempty"`
	LastName       *string   `json:"last_name,omitempty"`
	UnitPreference string    `json:"unit_preference"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser holds the fields needed to register an account. PasswordHash is
// already hashed.
type NewUser struct {
	Email          string
	PasswordHash   string
	FirstName      *string
	LastName       *string
	UnitPreference string
}

// DefaultExercise is a template row copied into every new user's catalog.
type DefaultExercise struct {
	ID          int         `json:"default_exercise_id"`
	Name        string      `json:"exercise_name"`
	MuscleGroup MuscleGroup `json:"exercise_muscle_group"`
	Link        *string     `json:"exercise_link,omitempty"`
}

// Exercise is one entry of a user's catalog. TimesPerformed is only ever
// changed by completing a workout.
type Exercise struct {
	ID             int         `json:"exercise_id"`
	UserID         int         `json:"user_id"`
	Name           string      `json:"exercise_name"`
	MuscleGroup    MuscleGroup `json:"exercise_muscle_group"`
	CurrentWeight  *float64    `json:"exercise_user_current_weight"`
	IsInRoutine    bool        `json:"exercise_is_in_routine"`
	TimesPerformed int         `json:"exercise_times_performed"`
	Link           *string     `json:"exercise_link,omitempty"`
	Comments       *string     `json:"comments,omitempty"`
	CreatedAt      time.Time   `json:"exercise_created_at"`
	UpdatedAt      time.Time   `json:"exercise_updated_at"`
}

// MaxWeight is the upper bound of a working weight; the schema CHECKs the
// same 0..MaxWeight range.
const MaxWeight = 300.0

// ExerciseInput carries the user-editable fields of an Exercise.
type ExerciseInput struct {
	Name          string      `json:"exercise_name" validate:"required,max=50"`
	MuscleGroup   MuscleGroup `json:"exercise_muscle_group" validate:"required"`
	CurrentWeight *float64    `json:"exercise_user_current_weight" validate:"omitempty,gte=0,lte=300"`
	IsInRoutine   *bool       `json:"exercise_is_in_routine"`
	Link          *string     `json:"exercise_link" validate:"omitempty,max=500"`
	Comments      *string     `json:"comments" validate:"omitempty,max=300"`
}

// Routine is a user's weekly split: DaysPerWeek numbered days, each mapped to
// the muscle groups trained that day.
type Routine struct {
	UserID      int                   `json:"user_id"`
	DaysPerWeek int                   `json:"days_per_week"`
	Days        map[int][]MuscleGroup `json:"days"`
}
