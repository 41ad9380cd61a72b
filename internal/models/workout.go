package models

import "time"

// ProgressionState points at the routine day a user is due to perform next.
type ProgressionState struct {
	UserID           int        `json:"user_id"`
	CurrentDayNumber int        `json:"current_day_number"`
	LastWorkoutDate  *time.Time `json:"last_workout_date"`
}

// Selection is a staged, not yet committed pick for the next workout.
type Selection struct {
	UserID     int       `json:"user_id"`
	ExerciseID int       `json:"exercise_id"`
	IsSelected bool      `json:"is_selected"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Session is one completed workout. SessionOrder counts up from 1 per user.
type Session struct {
	ID               int       `json:"session_id"`
	UserID           int       `json:"user_id"`
	SessionOrder     int       `json:"session_order"`
	RoutineDayNumber int       `json:"routine_day_number"`
	WorkoutDate      time.Time `json:"workout_date"`
}

// LogEntry records one exercise performed within a Session. WeightUsed is a
// snapshot taken at commit time. ExerciseID becomes nil if the exercise is
// later removed from the catalog; ExerciseName keeps the entry readable.
type LogEntry struct {
	ID               int       `json:"log_id"`
	SessionID        int       `json:"session_id"`
	UserID           int       `json:"user_id"`
	ExerciseID       *int      `json:"exercise_id"`
	ExerciseName     string    `json:"exercise_name"`
	RoutineDayNumber int       `json:"routine_day_number"`
	SetsCompleted    int       `json:"sets_completed"`
	RepsCompleted    int       `json:"reps_completed"`
	WeightUsed       *float64  `json:"weight_used"`
	WorkoutDate      time.Time `json:"workout_date"`
}

// Performance is what the user reports for one exercise when completing a
// workout. Zero values mean "not reported".
type Performance struct {
	ExerciseID    int      `json:"exercise_id" validate:"required,gt=0"`
	SetsCompleted int      `json:"sets_completed" validate:"gte=0"`
	RepsCompleted int      `json:"reps_completed" validate:"gte=0"`
	WeightUsed    *float64 `json:"weight_used" validate:"omitempty,gte=0,lte=300"`
}

// GeneratedWorkout is the result of generating a day's candidate set.
type GeneratedWorkout struct {
	DayNumber   int   `json:"day_number"`
	ExerciseIDs []int `json:"exercise_ids"`
}

// CompletedWorkout is the result of committing the staged selection.
type CompletedWorkout struct {
	Session Session    `json:"session"`
	Logs    []LogEntry `json:"logs"`
	NextDay int        `json:"next_day"`
}
