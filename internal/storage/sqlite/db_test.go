package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func registerTestUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()
	u, err := db.RegisterUser(context.Background(), models.NewUser{Email: email, PasswordHash: "x"})
	require.NoError(t, err)
	return u
}

// TestOpenSeedsDefaultCatalog verifies migrations run and seed the template catalog.
func TestOpenSeedsDefaultCatalog(t *testing.T) {
	db := openTestDB(t)

	defaults, err := db.ListDefaultExercises(context.Background())
	require.NoError(t, err)
	assert.Len(t, defaults, 34)
	for _, d := range defaults {
		assert.True(t, d.MuscleGroup.Valid(), "default %q has group %q", d.Name, d.MuscleGroup)
	}
}

// TestOpenFileReopen verifies a file database can be reopened without
// re-applying migrations.
func TestOpenFileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gymsplit.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	require.NoError(t, err)
	registerTestUser(t, db, "a@example.com")
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	u, err := db.GetUserByEmail(ctx, "A@example.com")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
}

// TestRegisterUserCopiesDefaults verifies every new user gets their own copy
// of the template catalog.
func TestRegisterUserCopiesDefaults(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a := registerTestUser(t, db, "a@example.com")
	b := registerTestUser(t, db, "b@example.com")

	exA, err := db.ListExercises(ctx, a.ID)
	require.NoError(t, err)
	exB, err := db.ListExercises(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, exA, 34)
	require.Len(t, exB, 34)
	for _, ex := range exA {
		assert.Equal(t, a.ID, ex.UserID)
		assert.True(t, ex.IsInRoutine)
		assert.Zero(t, ex.TimesPerformed)
	}
	assert.NotEqual(t, exA[0].ID, exB[0].ID)
}

// TestRegisterUserDuplicateEmail verifies emails are unique regardless of case.
func TestRegisterUserDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	registerTestUser(t, db, "a@example.com")

	_, err := db.RegisterUser(context.Background(), models.NewUser{Email: " A@Example.com ", PasswordHash: "y"})
	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

// TestGetUserNotFound verifies missing users map to the engine's not found kind.
func TestGetUserNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, workout.ErrNotFound)
}

// TestExerciseCRUD verifies create, update and delete including ownership checks.
func TestExerciseCRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	owner := registerTestUser(t, db, "owner@example.com")
	other := registerTestUser(t, db, "other@example.com")

	weight := 20.0
	ex, err := db.CreateExercise(ctx, owner.ID, models.ExerciseInput{
		Name:          "Cable Curl",
		MuscleGroup:   models.Biceps,
		CurrentWeight: &weight,
	})
	require.NoError(t, err)
	assert.Equal(t, "Cable Curl", ex.Name)
	assert.True(t, ex.IsInRoutine)
	require.NotNil(t, ex.CurrentWeight)
	assert.Equal(t, 20.0, *ex.CurrentWeight)

	off := false
	updated, err := db.UpdateExercise(ctx, owner.ID, ex.ID, models.ExerciseInput{
		Name:        "Cable Curl (rope)",
		MuscleGroup: models.Biceps,
		IsInRoutine: &off,
	})
	require.NoError(t, err)
	assert.Equal(t, "Cable Curl (rope)", updated.Name)
	assert.False(t, updated.IsInRoutine)
	assert.Nil(t, updated.CurrentWeight)

	_, err = db.UpdateExercise(ctx, other.ID, ex.ID, models.ExerciseInput{Name: "x", MuscleGroup: models.Abs})
	assert.ErrorIs(t, err, workout.ErrUnauthorized)
	assert.ErrorIs(t, db.DeleteExercise(ctx, other.ID, ex.ID), workout.ErrUnauthorized)

	require.NoError(t, db.DeleteExercise(ctx, owner.ID, ex.ID))
	assert.ErrorIs(t, db.DeleteExercise(ctx, owner.ID, ex.ID), workout.ErrNotFound)
}

// TestToggleSelection verifies the first toggle selects and the next one
// deselects.
func TestToggleSelection(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := registerTestUser(t, db, "a@example.com")
	exercises, err := db.ListExercises(ctx, u.ID)
	require.NoError(t, err)
	id := exercises[0].ID

	var states []bool
	err = db.InTx(ctx, func(r workout.Repo) error {
		for i := 0; i < 3; i++ {
			on, err := r.ToggleSelection(ctx, u.ID, id)
			if err != nil {
				return err
			}
			states = append(states, on)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, states)
}

// TestInTxRollsBack verifies nothing written inside a failed transaction survives.
func TestInTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := registerTestUser(t, db, "a@example.com")
	exercises, err := db.ListExercises(ctx, u.ID)
	require.NoError(t, err)
	id := exercises[0].ID

	boom := errors.New("boom")
	err = db.InTx(ctx, func(r workout.Repo) error {
		if _, err := r.IncrementTimesPerformed(ctx, u.ID, id); err != nil {
			return err
		}
		if err := r.SetSelection(ctx, u.ID, id, true); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = db.InTx(ctx, func(r workout.Repo) error {
		ex, err := r.GetExercise(ctx, u.ID, id)
		if err != nil {
			return err
		}
		assert.Zero(t, ex.TimesPerformed)
		selected, err := r.SelectedExerciseIDs(ctx, u.ID)
		assert.Empty(t, selected)
		return err
	})
	require.NoError(t, err)
}

// TestRoutineRoundTrip verifies a saved routine reads back day by day and
// that replacing it drops the old days.
func TestRoutineRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := registerTestUser(t, db, "a@example.com")

	first := models.Routine{UserID: u.ID, DaysPerWeek: 3, Days: map[int][]models.MuscleGroup{
		1: {models.Chest, models.Triceps},
		2: {models.Back, models.Biceps},
		3: {models.Legs},
	}}
	second := models.Routine{UserID: u.ID, DaysPerWeek: 2, Days: map[int][]models.MuscleGroup{
		1: {models.Shoulders},
		2: {models.Abs, models.Calves},
	}}

	err := db.InTx(ctx, func(r workout.Repo) error {
		if err := r.ReplaceRoutine(ctx, first); err != nil {
			return err
		}
		if err := r.ReplaceRoutine(ctx, second); err != nil {
			return err
		}
		got, err := r.GetRoutine(ctx, u.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, &second, got)

		groups, err := r.MuscleGroupsForDay(ctx, u.ID, 3)
		assert.Empty(t, groups)
		return err
	})
	require.NoError(t, err)

	err = db.InTx(ctx, func(r workout.Repo) error {
		deleted, err := r.DeleteRoutine(ctx, u.ID)
		if err != nil {
			return err
		}
		assert.True(t, deleted)
		days, err := r.DaysPerWeek(ctx, u.ID)
		assert.Zero(t, days)
		return err
	})
	require.NoError(t, err)
}

// TestSessionOrderUnique verifies the schema rejects a duplicate session
// order for the same user.
func TestSessionOrderUnique(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := registerTestUser(t, db, "a@example.com")

	s := models.Session{UserID: u.ID, SessionOrder: 1, RoutineDayNumber: 1}
	err := db.InTx(ctx, func(r workout.Repo) error {
		if _, err := r.InsertSession(ctx, s); err != nil {
			return err
		}
		_, err := r.InsertSession(ctx, s)
		return err
	})
	assert.Error(t, err)
}

// TestSessionOrderAcrossHandles verifies two handles on one file, as two
// processes would hold, serialize their transactions instead of colliding
// on the session order.
func TestSessionOrderAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { first.Close() })
	u := registerTestUser(t, first, "a@example.com")

	second, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	const perHandle = 10
	var g errgroup.Group
	for _, db := range []*DB{first, second} {
		g.Go(func() error {
			for i := 0; i < perHandle; i++ {
				err := db.InTx(ctx, func(r workout.Repo) error {
					last, err := r.MaxSessionOrder(ctx, u.ID)
					if err != nil {
						return err
					}
					_, err = r.InsertSession(ctx, models.Session{UserID: u.ID, SessionOrder: last + 1, RoutineDayNumber: 1})
					return err
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var sessions []models.Session
	require.NoError(t, first.InTx(ctx, func(r workout.Repo) error {
		var err error
		sessions, err = r.ListSessions(ctx, u.ID, 100)
		return err
	}))
	require.Len(t, sessions, 2*perHandle)
	for i, s := range sessions {
		assert.Equal(t, 2*perHandle-i, s.SessionOrder)
	}
}
