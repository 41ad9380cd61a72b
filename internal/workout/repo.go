package workout

import (
	"context"

	"github.com/claude/gymsplit/internal/models"
)

// Repo is the storage surface the engine runs against. Every call made
// through one Repo belongs to the same transaction.
type Repo interface {
	UserExists(ctx context.Context, userID int) (bool, error)

	// Exercise catalog.
	GetExercise(ctx context.Context, userID, exerciseID int) (*models.Exercise, error)
	ExerciseOwner(ctx context.Context, exerciseID int) (int, error)
	ListExercisesByMuscleGroup(ctx context.Context, userID int, group models.MuscleGroup) ([]models.Exercise, error)
	ExerciseIDsByMuscleGroups(ctx context.Context, userID int, groups []models.MuscleGroup) ([]int, error)
	IncrementTimesPerformed(ctx context.Context, userID, exerciseID int) (int, error)
	SetCurrentWeight(ctx context.Context, userID, exerciseID int, weight float64) error

	// Routine definition. DaysPerWeek is 0 and GetRoutine nil when the user
	// has no routine.
	MuscleGroupsForDay(ctx context.Context, userID, day int) ([]models.MuscleGroup, error)
	DaysPerWeek(ctx context.Context, userID int) (int, error)
	GetRoutine(ctx context.Context, userID int) (*models.Routine, error)
	ReplaceRoutine(ctx context.Context, routine models.Routine) error
	DeleteRoutine(ctx context.Context, userID int) (bool, error)

	// Selection store.
	SetSelection(ctx context.Context, userID, exerciseID int, selected bool) error
	ToggleSelection(ctx context.Context, userID, exerciseID int) (bool, error)
	SelectedExerciseIDs(ctx context.Context, userID int) ([]int, error)
	DeselectExercises(ctx context.Context, userID int, exerciseIDs []int) (int, error)
	DeselectAll(ctx context.Context, userID int) (int, error)

	// Progression state. GetState returns nil when the user has none yet.
	// LockState creates the day-1 row when absent and holds it until the
	// transaction ends.
	GetState(ctx context.Context, userID int) (*models.ProgressionState, error)
	LockState(ctx context.Context, userID int) (*models.ProgressionState, error)
	SaveState(ctx context.Context, state models.ProgressionState) error

	// Session and log history.
	MaxSessionOrder(ctx context.Context, userID int) (int, error)
	InsertSession(ctx context.Context, s models.Session) (int, error)
	InsertLogEntry(ctx context.Context, e models.LogEntry) (int, error)
	ListSessions(ctx context.Context, userID, limit int) ([]models.Session, error)
	SessionOwners(ctx context.Context, sessionIDs []int) (map[int]int, error)
	LogsForSessions(ctx context.Context, userID int, sessionIDs []int) ([]models.LogEntry, error)
	RecentLogs(ctx context.Context, userID, limit int) ([]models.LogEntry, error)
}

// Store runs fn inside a single transaction. A non-nil error from fn rolls
// everything back.
type Store interface {
	InTx(ctx context.Context, fn func(Repo) error) error
}
