package workout_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

// TestCompleteCycle walks a three-day routine: each completion appends the
// next session order and advances the day, wrapping after day three.
func TestCompleteCycle(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Chest), day(models.Back), day(models.Legs))

	wantDays := []int{1, 2, 3, 1}
	for i, want := range wantDays {
		gen, err := f.engine.Generate(f.ctx, u, 0)
		require.NoError(t, err)
		assert.Equal(t, want, gen.DayNumber)

		done, err := f.engine.Complete(f.ctx, u, nil)
		require.NoError(t, err)
		assert.Equal(t, i+1, done.Session.SessionOrder)
		assert.Equal(t, want, done.Session.RoutineDayNumber)
		assert.Equal(t, want%3+1, done.NextDay)
		assert.Len(t, done.Logs, 4)

		state, err := f.engine.State(f.ctx, u)
		require.NoError(t, err)
		assert.Equal(t, done.NextDay, state.CurrentDayNumber)
		require.NotNil(t, state.LastWorkoutDate)
		assert.Equal(t, "2026-03-10", state.LastWorkoutDate.Format("2006-01-02"))
	}
}

// TestCompleteSnapshotsCatalog verifies counters go up by one, logs carry the
// pre-commit weight and name, and later edits leave history untouched.
func TestCompleteSnapshotsCatalog(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Biceps))
	biceps := f.group(u, models.Biceps)
	f.setWeight(biceps[0].ID, 12.5)
	f.setTimesPerformed(biceps[1].ID, 3)

	_, err := f.engine.Generate(f.ctx, u, 1)
	require.NoError(t, err)
	done, err := f.engine.Complete(f.ctx, u, nil)
	require.NoError(t, err)
	require.Len(t, done.Logs, 4)

	byExercise := map[int]models.LogEntry{}
	for _, l := range done.Logs {
		require.NotNil(t, l.ExerciseID)
		byExercise[*l.ExerciseID] = l
		assert.Equal(t, done.Session.ID, l.SessionID)
		assert.Equal(t, u, l.UserID)
		assert.Equal(t, done.Session.WorkoutDate, l.WorkoutDate)
	}
	first := byExercise[biceps[0].ID]
	require.NotNil(t, first.WeightUsed)
	assert.Equal(t, 12.5, *first.WeightUsed)
	assert.Equal(t, biceps[0].Name, first.ExerciseName)
	assert.Nil(t, byExercise[biceps[1].ID].WeightUsed)

	assert.Equal(t, 1, f.exercise(u, biceps[0].ID).TimesPerformed)
	assert.Equal(t, 4, f.exercise(u, biceps[1].ID).TimesPerformed)

	f.setWeight(biceps[0].ID, 40)
	logs, err := f.engine.LogsForSessions(f.ctx, u, []int{done.Session.ID})
	require.NoError(t, err)
	for _, l := range logs {
		if *l.ExerciseID == biceps[0].ID {
			assert.Equal(t, 12.5, *l.WeightUsed)
		}
	}
}

// TestCompleteWithPerformances verifies reported sets, reps and weight are
// logged and a new weight becomes the working weight.
func TestCompleteWithPerformances(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Calves))
	calves := f.group(u, models.Calves)
	f.setWeight(calves[1].ID, 50)

	_, err := f.engine.Generate(f.ctx, u, 1)
	require.NoError(t, err)

	weight := 60.0
	done, err := f.engine.Complete(f.ctx, u, []models.Performance{
		{ExerciseID: calves[0].ID, SetsCompleted: 3, RepsCompleted: 12, WeightUsed: &weight},
		{ExerciseID: calves[1].ID, SetsCompleted: 4, RepsCompleted: 10},
	})
	require.NoError(t, err)
	require.Len(t, done.Logs, 2)

	assert.Equal(t, 3, done.Logs[0].SetsCompleted)
	assert.Equal(t, 12, done.Logs[0].RepsCompleted)
	assert.Equal(t, 60.0, *done.Logs[0].WeightUsed)
	assert.Equal(t, 50.0, *done.Logs[1].WeightUsed)

	ex := f.exercise(u, calves[0].ID)
	require.NotNil(t, ex.CurrentWeight)
	assert.Equal(t, 60.0, *ex.CurrentWeight)
}

// TestCompleteEmpty verifies completing nothing fails without side effects.
func TestCompleteEmpty(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Chest))
	before, err := f.db.ListExercises(f.ctx, u)
	require.NoError(t, err)

	_, err = f.engine.Complete(f.ctx, u, nil)
	require.ErrorIs(t, err, workout.ErrEmptyWorkout)

	after, err := f.db.ListExercises(f.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Zero(t, f.count(`SELECT COUNT(*) FROM workout_sessions`))
	assert.Zero(t, f.count(`SELECT COUNT(*) FROM workout_logs`))

	state, err := f.engine.State(f.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentDayNumber)
	assert.Nil(t, state.LastWorkoutDate)
}

// TestCompleteRejectsBadPerformances verifies invalid reports abort the
// completion before anything is written.
func TestCompleteRejectsBadPerformances(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Abs))
	abs := f.group(u, models.Abs)
	other := f.group(u, models.Legs)[0]

	_, err := f.engine.Generate(f.ctx, u, 1)
	require.NoError(t, err)

	tooHeavy, negative := 500.0, -5.0
	tests := []struct {
		name string
		perf []models.Performance
	}{
		{"not selected", []models.Performance{{ExerciseID: other.ID}}},
		{"duplicate", []models.Performance{{ExerciseID: abs[0].ID}, {ExerciseID: abs[0].ID}}},
		{"negative reps", []models.Performance{{ExerciseID: abs[0].ID, RepsCompleted: -1}}},
		{"zero id", []models.Performance{{}}},
		{"weight above range", []models.Performance{{ExerciseID: abs[0].ID, WeightUsed: &tooHeavy}}},
		{"negative weight", []models.Performance{{ExerciseID: abs[0].ID, WeightUsed: &negative}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Complete(f.ctx, u, tt.perf)
			assert.ErrorIs(t, err, workout.ErrInvalidInput)
			assert.False(t, workout.IsRetryable(err))
		})
	}
	assert.Zero(t, f.count(`SELECT COUNT(*) FROM workout_sessions`))
	assert.Equal(t, abs[0].CurrentWeight, f.exercise(u, abs[0].ID).CurrentWeight)

	selected, err := f.engine.Selected(f.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, ids(abs), selected)
}

// TestCompleteWithoutRoutine verifies staged exercises can be completed with
// no routine, leaving the user on day 1.
func TestCompleteWithoutRoutine(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com")
	ex := f.group(u, models.Shoulders)[0]
	require.NoError(t, f.engine.SetSelection(f.ctx, u, ex.ID, true))

	for order := 1; order <= 2; order++ {
		done, err := f.engine.Complete(f.ctx, u, nil)
		require.NoError(t, err)
		assert.Equal(t, order, done.Session.SessionOrder)
		assert.Equal(t, 1, done.Session.RoutineDayNumber)
		assert.Equal(t, 1, done.NextDay)
		require.NoError(t, f.engine.SetSelection(f.ctx, u, ex.ID, true))
	}
}

// TestCompleteProgressionFormula verifies the day after N completions is
// ((initial-1+N) mod days)+1 for every routine length.
func TestCompleteProgressionFormula(t *testing.T) {
	f := newFixture(t)
	for days := 1; days <= 7; days++ {
		routine := make([][]models.MuscleGroup, days)
		for d := range routine {
			routine[d] = day(models.Calves)
		}
		u := f.user(string(rune('a'+days))+"@example.com", routine...)
		ex := f.group(u, models.Calves)[0]

		for n := 1; n <= 9; n++ {
			require.NoError(t, f.engine.SetSelection(f.ctx, u, ex.ID, true))
			_, err := f.engine.Complete(f.ctx, u, nil)
			require.NoError(t, err)

			state, err := f.engine.State(f.ctx, u)
			require.NoError(t, err)
			assert.Equal(t, n%days+1, state.CurrentDayNumber, "days=%d n=%d", days, n)
		}
	}
}

// TestShrinkingRoutineWrapsDay verifies a current day beyond a shortened
// routine wraps around on save.
func TestShrinkingRoutineWrapsDay(t *testing.T) {
	f := newFixture(t)
	five := make([][]models.MuscleGroup, 5)
	for d := range five {
		five[d] = day(models.Abs)
	}
	u := f.user("a@example.com", five...)
	ex := f.group(u, models.Abs)[0]

	for i := 0; i < 4; i++ {
		require.NoError(t, f.engine.SetSelection(f.ctx, u, ex.ID, true))
		_, err := f.engine.Complete(f.ctx, u, nil)
		require.NoError(t, err)
	}
	state, err := f.engine.State(f.ctx, u)
	require.NoError(t, err)
	require.Equal(t, 5, state.CurrentDayNumber)

	f.saveRoutine(u, day(models.Abs), day(models.Legs), day(models.Back))
	state, err = f.engine.State(f.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentDayNumber)
}

// TestConcurrentCompletions verifies racing completions of one staged
// workout commit exactly once.
func TestConcurrentCompletions(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Chest), day(models.Back))

	const rounds, contenders = 3, 5
	for round := 0; round < rounds; round++ {
		_, err := f.engine.Generate(f.ctx, u, 0)
		require.NoError(t, err)

		var (
			g         errgroup.Group
			mu        sync.Mutex
			succeeded int
		)
		for i := 0; i < contenders; i++ {
			g.Go(func() error {
				_, err := f.engine.Complete(f.ctx, u, nil)
				if errors.Is(err, workout.ErrEmptyWorkout) {
					return nil
				}
				if err != nil {
					return err
				}
				mu.Lock()
				succeeded++
				mu.Unlock()
				return nil
			})
		}
		require.NoError(t, g.Wait())
		assert.Equal(t, 1, succeeded)
	}

	sessions, err := f.engine.ListSessions(f.ctx, u, 0)
	require.NoError(t, err)
	require.Len(t, sessions, rounds)
	for i, s := range sessions {
		assert.Equal(t, rounds-i, s.SessionOrder)
	}
	state, err := f.engine.State(f.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentDayNumber)
}

// faultyStore fails the second counter increment of a completion.
type faultyStore struct {
	workout.Store
}

var errDiskFull = errors.New("disk full")

func (s faultyStore) InTx(ctx context.Context, fn func(workout.Repo) error) error {
	return s.Store.InTx(ctx, func(r workout.Repo) error {
		return fn(&faultyRepo{Repo: r})
	})
}

type faultyRepo struct {
	workout.Repo
	increments int
}

func (r *faultyRepo) IncrementTimesPerformed(ctx context.Context, userID, exerciseID int) (int, error) {
	r.increments++
	if r.increments == 2 {
		return 0, errDiskFull
	}
	return r.Repo.IncrementTimesPerformed(ctx, userID, exerciseID)
}

// TestCompleteRollsBackOnStorageFault verifies a failure midway leaves no
// session, log, counter or state change behind.
func TestCompleteRollsBackOnStorageFault(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Triceps), day(models.Legs))
	_, err := f.engine.Generate(f.ctx, u, 1)
	require.NoError(t, err)
	before, err := f.db.ListExercises(f.ctx, u)
	require.NoError(t, err)

	broken := newEngine(faultyStore{Store: f.db}, workout.Config{})
	_, err = broken.Complete(f.ctx, u, nil)
	require.ErrorIs(t, err, workout.ErrStorage)
	require.ErrorIs(t, err, errDiskFull)
	assert.True(t, workout.IsRetryable(err))

	after, err := f.db.ListExercises(f.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Zero(t, f.count(`SELECT COUNT(*) FROM workout_sessions`))
	assert.Zero(t, f.count(`SELECT COUNT(*) FROM workout_logs`))

	selected, err := f.engine.Selected(f.ctx, u)
	require.NoError(t, err)
	assert.Len(t, selected, 4)
	state, err := f.engine.State(f.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentDayNumber)

	done, err := f.engine.Complete(f.ctx, u, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, done.Session.SessionOrder)
}

// TestCompleteCancelledContext verifies an abandoned request commits nothing.
func TestCompleteCancelledContext(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Chest))
	_, err := f.engine.Generate(f.ctx, u, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(f.ctx)
	cancel()
	_, err = f.engine.Complete(ctx, u, nil)
	require.Error(t, err)
	assert.False(t, workout.IsRetryable(err))
	assert.Zero(t, f.count(`SELECT COUNT(*) FROM workout_sessions`))
}
