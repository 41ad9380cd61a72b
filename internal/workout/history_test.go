package workout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

func (f *fixture) completeN(userID, n int) []models.CompletedWorkout {
	f.t.Helper()
	var out []models.CompletedWorkout
	for i := 0; i < n; i++ {
		_, err := f.engine.Generate(f.ctx, userID, 0)
		require.NoError(f.t, err)
		done, err := f.engine.Complete(f.ctx, userID, nil)
		require.NoError(f.t, err)
		out = append(out, *done)
	}
	return out
}

// TestListSessionsLimit verifies the bound and the newest-first order.
func TestListSessionsLimit(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Calves), day(models.Abs))
	f.completeN(u, 12)

	sessions, err := f.engine.ListSessions(f.ctx, u, 5)
	require.NoError(t, err)
	require.Len(t, sessions, 5)
	for i, s := range sessions {
		assert.Equal(t, 12-i, s.SessionOrder)
	}

	sessions, err = f.engine.ListSessions(f.ctx, u, 0)
	require.NoError(t, err)
	assert.Len(t, sessions, workout.DefaultHistoryLimit)

	capped := newEngine(f.db, workout.Config{MaxHistoryLimit: 3})
	sessions, err = capped.ListSessions(f.ctx, u, 50)
	require.NoError(t, err)
	assert.Len(t, sessions, 3)
}

// TestListSessionsEmpty verifies a user without history gets an empty list.
func TestListSessionsEmpty(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com")

	sessions, err := f.engine.ListSessions(f.ctx, u, 5)
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)

	_, err = f.engine.ListSessions(f.ctx, u+1, 5)
	assert.ErrorIs(t, err, workout.ErrNotFound)
}

// TestLogsForSessionsAuthorization verifies logs are only ever returned for
// the caller's own sessions.
func TestLogsForSessionsAuthorization(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com", day(models.Calves))
	bob := f.user("bob@example.com", day(models.Abs))
	aliceDone := f.completeN(alice, 2)
	bobDone := f.completeN(bob, 1)

	logs, err := f.engine.LogsForSessions(f.ctx, alice,
		[]int{aliceDone[0].Session.ID, aliceDone[1].Session.ID, aliceDone[0].Session.ID})
	require.NoError(t, err)
	assert.Len(t, logs, 4)
	for _, l := range logs {
		assert.Equal(t, alice, l.UserID)
	}

	_, err = f.engine.LogsForSessions(f.ctx, alice, []int{aliceDone[0].Session.ID, bobDone[0].Session.ID})
	assert.ErrorIs(t, err, workout.ErrUnauthorized)

	_, err = f.engine.LogsForSessions(f.ctx, alice, []int{424242})
	assert.ErrorIs(t, err, workout.ErrNotFound)

	logs, err = f.engine.LogsForSessions(f.ctx, alice, nil)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

// TestRecentLogs verifies the latest entries come first across sessions.
func TestRecentLogs(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Calves), day(models.Abs))
	done := f.completeN(u, 2)

	logs, err := f.engine.RecentLogs(f.ctx, u, 0)
	require.NoError(t, err)
	require.Len(t, logs, 5)
	assert.Equal(t, done[1].Logs[len(done[1].Logs)-1].ID, logs[0].ID)

	logs, err = f.engine.RecentLogs(f.ctx, u, 2)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

// TestStateDefaults verifies a fresh user is on day 1 with no last workout,
// and unknown users are not found.
func TestStateDefaults(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com")

	state, err := f.engine.State(f.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, models.ProgressionState{UserID: u, CurrentDayNumber: 1}, *state)

	_, err = f.engine.State(f.ctx, 0)
	assert.ErrorIs(t, err, workout.ErrNotFound)
	_, err = f.engine.State(f.ctx, u+1)
	assert.ErrorIs(t, err, workout.ErrNotFound)
}

// TestRoutineLifecycle verifies save, read and delete through the engine.
func TestRoutineLifecycle(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com")

	_, err := f.engine.Routine(f.ctx, u)
	require.ErrorIs(t, err, workout.ErrNotFound)

	f.saveRoutine(u, day(models.Chest, models.Triceps), day(models.Back))
	r, err := f.engine.Routine(f.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, 2, r.DaysPerWeek)
	assert.Equal(t, []models.MuscleGroup{models.Chest, models.Triceps}, r.Days[1])

	err = f.engine.SaveRoutine(f.ctx, models.Routine{UserID: u, DaysPerWeek: 2,
		Days: map[int][]models.MuscleGroup{1: {models.Chest}}})
	assert.ErrorIs(t, err, workout.ErrInvalidInput)

	require.NoError(t, f.engine.DeleteRoutine(f.ctx, u))
	assert.ErrorIs(t, f.engine.DeleteRoutine(f.ctx, u), workout.ErrNotFound)
}
