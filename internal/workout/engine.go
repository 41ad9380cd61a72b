// Package workout implements the workout progression engine: which routine
// day a user is on, the balanced selection of that day's exercises, the
// staging set the user edits, and the atomic commit of a finished workout
// into session history.
package workout

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultPicksPerGroup   = 4
	DefaultHistoryLimit    = 10
	DefaultMaxHistoryLimit = 100
	DefaultRecentLogsLimit = 30
	MaxDayNumber           = 7
)

// Config tunes the engine. Zero values fall back to the defaults above; Now
// is the clock used to date sessions and defaults to time.Now. Recorder
// receives engine events and may be nil.
type Config struct {
	PicksPerGroup   int
	HistoryLimit    int
	MaxHistoryLimit int
	Now             func() time.Time
	Recorder        Recorder
}

// Recorder observes successful engine operations. The metrics package
// provides the production implementation.
type Recorder interface {
	WorkoutGenerated(day, exercises int)
	WorkoutCompleted(day, exercises int)
	SelectionToggled(selected bool)
}

type nopRecorder struct{}

func (nopRecorder) WorkoutGenerated(int, int) {}
func (nopRecorder) WorkoutCompleted(int, int) {}
func (nopRecorder) SelectionToggled(bool) {}

// Engine is safe for concurrent use. Per-user ordering of completions is
// enforced by the Store (row lock on the progression state).
type Engine struct {
	store Store
	cfg   Config
	log   *slog.Logger
}

// New creates an Engine backed by store.
func New(store Store, cfg Config, log *slog.Logger) *Engine {
	if cfg.PicksPerGroup <= 0 {
		cfg.PicksPerGroup = DefaultPicksPerGroup
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.MaxHistoryLimit <= 0 {
		cfg.MaxHistoryLimit = DefaultMaxHistoryLimit
	}
	if cfg.HistoryLimit > cfg.MaxHistoryLimit {
		cfg.HistoryLimit = cfg.MaxHistoryLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: store, cfg: cfg, log: log}
}

// run executes fn in one transaction and maps failures to engine error kinds.
func (e *Engine) run(ctx context.Context, op string, fn func(Repo) error) error {
	return classify(op, e.store.InTx(ctx, fn))
}

// today returns the current calendar date at midnight UTC.
func (e *Engine) today() time.Time {
	now := e.cfg.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func requireUser(ctx context.Context, r Repo, userID int) error {
	if userID <= 0 {
		return notFoundf("user %d", userID)
	}
	ok, err := r.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return notFoundf("user %d", userID)
	}
	return nil
}

// requireOwnExercise distinguishes a missing exercise from someone else's.
func requireOwnExercise(ctx context.Context, r Repo, userID, exerciseID int) error {
	owner, err := r.ExerciseOwner(ctx, exerciseID)
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrUnauthorized
	}
	return nil
}

func validDay(day int) error {
	if day < 1 || day > MaxDayNumber {
		return invalidf("day number %d outside 1..%d", day, MaxDayNumber)
	}
	return nil
}
