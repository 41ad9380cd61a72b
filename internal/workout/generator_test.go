package workout_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

// TestGeneratePicksLeastPerformed verifies four picks per group, each
// performed no more often than any exercise left out.
func TestGeneratePicksLeastPerformed(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Back))
	back := f.group(u, models.Back)
	require.Len(t, back, 5)

	// Make the lowest id the most performed, and tie two others.
	f.setTimesPerformed(back[0].ID, 9)
	f.setTimesPerformed(back[1].ID, 2)
	f.setTimesPerformed(back[2].ID, 2)

	gen, err := f.engine.Generate(f.ctx, u, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.DayNumber)
	assert.Equal(t, []int{back[1].ID, back[2].ID, back[3].ID, back[4].ID}, gen.ExerciseIDs)

	selected, err := f.engine.Selected(f.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, gen.ExerciseIDs, selected)
}

// TestGenerateTieBreakByID verifies equal counters resolve to lower ids.
func TestGenerateTieBreakByID(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Legs))
	legs := f.group(u, models.Legs)
	require.Len(t, legs, 5)

	gen, err := f.engine.Generate(f.ctx, u, 1)
	require.NoError(t, err)
	assert.Equal(t, ids(legs[:4]), gen.ExerciseIDs)
}

// TestGenerateSmallGroup verifies a group with fewer than four exercises
// contributes all of them.
func TestGenerateSmallGroup(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Calves, models.Abs))

	gen, err := f.engine.Generate(f.ctx, u, 1)
	require.NoError(t, err)
	want := append(ids(f.group(u, models.Calves)), ids(f.group(u, models.Abs))...)
	assert.ElementsMatch(t, want, gen.ExerciseIDs)
	assert.Len(t, gen.ExerciseIDs, 5)
	assert.IsIncreasing(t, gen.ExerciseIDs)
}

// TestGenerateIdempotent verifies repeated generation with an unchanged
// catalog yields the same set.
func TestGenerateIdempotent(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Chest, models.Triceps, models.Shoulders))

	first, err := f.engine.Generate(f.ctx, u, 1)
	require.NoError(t, err)
	second, err := f.engine.Generate(f.ctx, u, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first.ExerciseIDs, 12)
}

// TestGenerateSkipsExercisesOutOfRoutine verifies the in-routine flag
// excludes an exercise from generation.
func TestGenerateSkipsExercisesOutOfRoutine(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Biceps))
	biceps := f.group(u, models.Biceps)

	off := false
	_, err := f.db.UpdateExercise(f.ctx, u, biceps[0].ID, models.ExerciseInput{
		Name:        biceps[0].Name,
		MuscleGroup: models.Biceps,
		IsInRoutine: &off,
	})
	require.NoError(t, err)

	gen, err := f.engine.Generate(f.ctx, u, 1)
	require.NoError(t, err)
	assert.Equal(t, ids(biceps[1:]), gen.ExerciseIDs)
}

// TestGenerateKeepsOtherSelections verifies generation never clears picks it
// did not make.
func TestGenerateKeepsOtherSelections(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Calves))
	glute := f.group(u, models.Glutes)[0]

	on, err := f.engine.Toggle(f.ctx, u, glute.ID)
	require.NoError(t, err)
	require.True(t, on)

	gen, err := f.engine.Generate(f.ctx, u, 1)
	require.NoError(t, err)

	selected, err := f.engine.Selected(f.ctx, u)
	require.NoError(t, err)
	assert.ElementsMatch(t, append(gen.ExerciseIDs, glute.ID), selected)
}

// TestGenerateCurrentDay verifies day 0 targets the user's current day.
func TestGenerateCurrentDay(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Calves), day(models.Abs))

	gen, err := f.engine.Generate(f.ctx, u, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.DayNumber)

	_, err = f.engine.Complete(f.ctx, u, nil)
	require.NoError(t, err)

	gen, err = f.engine.Generate(f.ctx, u, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.DayNumber)
	assert.Equal(t, ids(f.group(u, models.Abs)), gen.ExerciseIDs)
}

// TestGenerateNoRoutine verifies a day without muscle groups fails with the
// offending day and stages nothing.
func TestGenerateNoRoutine(t *testing.T) {
	f := newFixture(t)
	noRoutine := f.user("none@example.com")
	twoDays := f.user("two@example.com", day(models.Chest), day(models.Back))

	for _, tc := range []struct {
		user, day int
	}{
		{noRoutine, 1},
		{noRoutine, 0},
		{twoDays, 3},
	} {
		_, err := f.engine.Generate(f.ctx, tc.user, tc.day)
		require.ErrorIs(t, err, workout.ErrNoRoutineConfigured)
		var nr *workout.NoRoutineError
		require.True(t, errors.As(err, &nr))
		want := tc.day
		if want == 0 {
			want = 1
		}
		assert.Equal(t, want, nr.Day)
	}

	selected, err := f.engine.Selected(f.ctx, noRoutine)
	require.NoError(t, err)
	assert.Empty(t, selected)
}

// TestGenerateInvalidInput verifies out-of-range days and unknown users.
func TestGenerateInvalidInput(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Chest))

	_, err := f.engine.Generate(f.ctx, u, 8)
	assert.ErrorIs(t, err, workout.ErrInvalidInput)
	_, err = f.engine.Generate(f.ctx, u, -1)
	assert.ErrorIs(t, err, workout.ErrInvalidInput)
	_, err = f.engine.Generate(f.ctx, u+100, 1)
	assert.ErrorIs(t, err, workout.ErrNotFound)
}

// TestGeneratePicksPerGroupConfigurable verifies the per-group pick count
// follows the engine config.
func TestGeneratePicksPerGroupConfigurable(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", day(models.Back, models.Legs))
	e := newEngine(f.db, workout.Config{PicksPerGroup: 2})

	gen, err := e.Generate(f.ctx, u, 1)
	require.NoError(t, err)
	assert.Len(t, gen.ExerciseIDs, 4)
}
