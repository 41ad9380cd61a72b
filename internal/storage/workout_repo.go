package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

const exerciseColumns = `id, user_id, name, muscle_group, current_weight::float8, is_in_routine,
	times_performed, link, comments, created_at, updated_at`

func (s *queries) UserExists(ctx context.Context, userID int) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user %d: %w", userID, err)
	}
	return exists, nil
}

func scanExercise(row pgx.Row) (*models.Exercise, error) {
	var (
		ex    models.Exercise
		group string
	)
	if err := row.Scan(&ex.ID, &ex.UserID, &ex.Name, &group, &ex.CurrentWeight, &ex.IsInRoutine,
		&ex.TimesPerformed, &ex.Link, &ex.Comments, &ex.CreatedAt, &ex.UpdatedAt); err != nil {
		return nil, err
	}
	ex.MuscleGroup = models.MuscleGroup(group)
	return &ex, nil
}

func (s *queries) GetExercise(ctx context.Context, userID, exerciseID int) (*models.Exercise, error) {
	ex, err := scanExercise(s.q.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1 AND user_id = $2`,
		exerciseID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("exercise %d: %w", exerciseID, workout.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting exercise %d: %w", exerciseID, err)
	}
	return ex, nil
}

func (s *queries) ExerciseOwner(ctx context.Context, exerciseID int) (int, error) {
	var owner int
	err := s.q.QueryRow(ctx,
		`SELECT user_id FROM exercises WHERE id = $1`, exerciseID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("exercise %d: %w", exerciseID, workout.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("getting owner of exercise %d: %w", exerciseID, err)
	}
	return owner, nil
}

func (s *queries) ListExercisesByMuscleGroup(ctx context.Context, userID int, group models.MuscleGroup) ([]models.Exercise, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+exerciseColumns+`
		FROM exercises
		WHERE user_id = $1 AND muscle_group = $2
		ORDER BY times_performed, id`, userID, string(group))
	if err != nil {
		return nil, fmt.Errorf("listing %s exercises: %w", group, err)
	}
	return collectExercises(rows)
}

func collectExercises(rows pgx.Rows) ([]models.Exercise, error) {
	defer rows.Close()
	var result []models.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, *ex)
	}
	return result, rows.Err()
}

func (s *queries) ExerciseIDsByMuscleGroups(ctx context.Context, userID int, groups []models.MuscleGroup) ([]int, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = string(g)
	}
	rows, err := s.q.Query(ctx,
		`SELECT id FROM exercises WHERE user_id = $1 AND muscle_group = ANY($2) ORDER BY id`,
		userID, names)
	if err != nil {
		return nil, fmt.Errorf("listing exercise ids by group: %w", err)
	}
	return collectInts(rows)
}

func collectInts(rows pgx.Rows) ([]int, error) {
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("scanning ids: %w", err)
	}
	return ids, nil
}

// IncrementTimesPerformed bumps the counter in a single statement so
// concurrent completions never lose an increment.
func (s *queries) IncrementTimesPerformed(ctx context.Context, userID, exerciseID int) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, `
		UPDATE exercises
		SET times_performed = times_performed + 1, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING times_performed`, exerciseID, userID).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("exercise %d: %w", exerciseID, workout.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing exercise %d: %w", exerciseID, err)
	}
	return n, nil
}

func (s *queries) SetCurrentWeight(ctx context.Context, userID, exerciseID int, weight float64) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE exercises SET current_weight = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3`, weight, exerciseID, userID)
	if err != nil {
		return fmt.Errorf("setting weight of exercise %d: %w", exerciseID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("exercise %d: %w", exerciseID, workout.ErrNotFound)
	}
	return nil
}

func (s *queries) MuscleGroupsForDay(ctx context.Context, userID, day int) ([]models.MuscleGroup, error) {
	rows, err := s.q.Query(ctx, `
		SELECT muscle_group FROM routine_muscles_per_day
		WHERE user_id = $1 AND day_number = $2
		ORDER BY id`, userID, day)
	if err != nil {
		return nil, fmt.Errorf("listing muscle groups for day %d: %w", day, err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning muscle groups: %w", err)
	}
	groups := make([]models.MuscleGroup, len(names))
	for i, n := range names {
		groups[i] = models.MuscleGroup(n)
	}
	return groups, nil
}

func (s *queries) DaysPerWeek(ctx context.Context, userID int) (int, error) {
	var days int
	err := s.q.QueryRow(ctx,
		`SELECT days_per_week FROM routines WHERE user_id = $1`, userID).Scan(&days)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting days per week: %w", err)
	}
	return days, nil
}

func (s *queries) GetRoutine(ctx context.Context, userID int) (*models.Routine, error) {
	days, err := s.DaysPerWeek(ctx, userID)
	if err != nil || days == 0 {
		return nil, err
	}

	rows, err := s.q.Query(ctx, `
		SELECT day_number, muscle_group FROM routine_muscles_per_day
		WHERE user_id = $1
		ORDER BY day_number, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing routine days: %w", err)
	}
	defer rows.Close()

	routine := &models.Routine{UserID: userID, DaysPerWeek: days, Days: map[int][]models.MuscleGroup{}}
	for rows.Next() {
		var (
			day   int
			group string
		)
		if err := rows.Scan(&day, &group); err != nil {
			return nil, fmt.Errorf("scanning routine day: %w", err)
		}
		routine.Days[day] = append(routine.Days[day], models.MuscleGroup(group))
	}
	return routine, rows.Err()
}

func (s *queries) ReplaceRoutine(ctx context.Context, r models.Routine) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO routines (user_id, days_per_week) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
			SET days_per_week = EXCLUDED.days_per_week, updated_at = NOW()`,
		r.UserID, r.DaysPerWeek)
	if err != nil {
		return fmt.Errorf("saving routine: %w", err)
	}
	if _, err := s.q.Exec(ctx,
		`DELETE FROM routine_muscles_per_day WHERE user_id = $1`, r.UserID); err != nil {
		return fmt.Errorf("clearing routine days: %w", err)
	}
	for day := 1; day <= r.DaysPerWeek; day++ {
		for _, g := range r.Days[day] {
			if _, err := s.q.Exec(ctx, `
				INSERT INTO routine_muscles_per_day (user_id, day_number, muscle_group)
				VALUES ($1, $2, $3)`, r.UserID, day, string(g)); err != nil {
				return fmt.Errorf("saving day %d: %w", day, err)
			}
		}
	}
	return nil
}

func (s *queries) DeleteRoutine(ctx context.Context, userID int) (bool, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM routines WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("deleting routine: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *queries) SetSelection(ctx context.Context, userID, exerciseID int, selected bool) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO next_workout_selections (user_id, exercise_id, is_selected)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, exercise_id) DO UPDATE
			SET is_selected = EXCLUDED.is_selected, updated_at = NOW()`,
		userID, exerciseID, selected)
	if err != nil {
		return fmt.Errorf("setting selection for exercise %d: %w", exerciseID, err)
	}
	return nil
}

func (s *queries) ToggleSelection(ctx context.Context, userID, exerciseID int) (bool, error) {
	var selected bool
	err := s.q.QueryRow(ctx, `
		INSERT INTO next_workout_selections (user_id, exercise_id, is_selected)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (user_id, exercise_id) DO UPDATE
			SET is_selected = NOT next_workout_selections.is_selected, updated_at = NOW()
		RETURNING is_selected`, userID, exerciseID).Scan(&selected)
	if err != nil {
		return false, fmt.Errorf("toggling exercise %d: %w", exerciseID, err)
	}
	return selected, nil
}

func (s *queries) SelectedExerciseIDs(ctx context.Context, userID int) ([]int, error) {
	rows, err := s.q.Query(ctx, `
		SELECT exercise_id FROM next_workout_selections
		WHERE user_id = $1 AND is_selected
		ORDER BY exercise_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing selections: %w", err)
	}
	return collectInts(rows)
}

func (s *queries) DeselectExercises(ctx context.Context, userID int, exerciseIDs []int) (int, error) {
	if len(exerciseIDs) == 0 {
		return 0, nil
	}
	tag, err := s.q.Exec(ctx, `
		UPDATE next_workout_selections SET is_selected = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_selected AND exercise_id = ANY($2)`, userID, exerciseIDs)
	if err != nil {
		return 0, fmt.Errorf("clearing selections: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *queries) DeselectAll(ctx context.Context, userID int) (int, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE next_workout_selections SET is_selected = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_selected`, userID)
	if err != nil {
		return 0, fmt.Errorf("clearing all selections: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *queries) GetState(ctx context.Context, userID int) (*models.ProgressionState, error) {
	st := models.ProgressionState{UserID: userID}
	err := s.q.QueryRow(ctx, `
		SELECT current_day_number, last_workout_date
		FROM workout_state WHERE user_id = $1`, userID).Scan(&st.CurrentDayNumber, &st.LastWorkoutDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting workout state: %w", err)
	}
	return &st, nil
}

// LockState makes sure the state row exists and holds a row lock on it until
// the transaction ends.
func (s *queries) LockState(ctx context.Context, userID int) (*models.ProgressionState, error) {
	if _, err := s.q.Exec(ctx,
		`INSERT INTO workout_state (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID); err != nil {
		return nil, fmt.Errorf("creating workout state: %w", err)
	}
	st := models.ProgressionState{UserID: userID}
	err := s.q.QueryRow(ctx, `
		SELECT current_day_number, last_workout_date
		FROM workout_state WHERE user_id = $1
		FOR UPDATE`, userID).Scan(&st.CurrentDayNumber, &st.LastWorkoutDate)
	if err != nil {
		return nil, fmt.Errorf("locking workout state: %w", err)
	}
	return &st, nil
}

func (s *queries) SaveState(ctx context.Context, st models.ProgressionState) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO workout_state (user_id, current_day_number, last_workout_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
			SET current_day_number = EXCLUDED.current_day_number,
				last_workout_date = EXCLUDED.last_workout_date,
				updated_at = NOW()`,
		st.UserID, st.CurrentDayNumber, st.LastWorkoutDate)
	if err != nil {
		return fmt.Errorf("saving workout state: %w", err)
	}
	return nil
}

func (s *queries) MaxSessionOrder(ctx context.Context, userID int) (int, error) {
	var n int
	err := s.q.QueryRow(ctx,
		`SELECT COALESCE(MAX(session_order), 0) FROM workout_sessions WHERE user_id = $1`,
		userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("getting max session order: %w", err)
	}
	return n, nil
}
