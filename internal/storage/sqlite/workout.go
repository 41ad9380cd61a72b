package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

const exerciseColumns = `id, user_id, name, muscle_group, current_weight, is_in_routine,
	times_performed, link, comments, created_at, updated_at`

func (s *queries) UserExists(ctx context.Context, userID int) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user %d: %w", userID, err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExercise(row rowScanner) (*models.Exercise, error) {
	var (
		ex               models.Exercise
		group            string
		weight           sql.NullFloat64
		link, comments   sql.NullString
		created, updated string
	)
	if err := row.Scan(&ex.ID, &ex.UserID, &ex.Name, &group, &weight, &ex.IsInRoutine,
		&ex.TimesPerformed, &link, &comments, &created, &updated); err != nil {
		return nil, err
	}
	ex.MuscleGroup = models.MuscleGroup(group)
	if weight.Valid {
		ex.CurrentWeight = &weight.Float64
	}
	if link.Valid {
		ex.Link = &link.String
	}
	if comments.Valid {
		ex.Comments = &comments.String
	}
	var err error
	if ex.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if ex.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return nil, err
	}
	return &ex, nil
}

func (s *queries) GetExercise(ctx context.Context, userID, exerciseID int) (*models.Exercise, error) {
	ex, err := scanExercise(s.q.QueryRowContext(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = ? AND user_id = ?`,
		exerciseID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("exercise %d: %w", exerciseID, workout.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting exercise %d: %w", exerciseID, err)
	}
	return ex, nil
}

func (s *queries) ExerciseOwner(ctx context.Context, exerciseID int) (int, error) {
	var owner int
	err := s.q.QueryRowContext(ctx,
		`SELECT user_id FROM exercises WHERE id = ?`, exerciseID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("exercise %d: %w", exerciseID, workout.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("getting owner of exercise %d: %w", exerciseID, err)
	}
	return owner, nil
}

func (s *queries) ListExercisesByMuscleGroup(ctx context.Context, userID int, group models.MuscleGroup) ([]models.Exercise, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+exerciseColumns+`
		FROM exercises
		WHERE user_id = ? AND muscle_group = ?
		ORDER BY times_performed, id`, userID, string(group))
	if err != nil {
		return nil, fmt.Errorf("listing %s exercises: %w", group, err)
	}
	return collectExercises(rows)
}

func collectExercises(rows *sql.Rows) ([]models.Exercise, error) {
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
	args := []any{userID}
	for _, g := range groups {
		args = append(args, string(g))
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT id FROM exercises WHERE user_id = ? AND muscle_group IN (`+inClause(len(groups))+`) ORDER BY id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("listing exercise ids by group: %w", err)
	}
	return collectInts(rows)
}

func collectInts(rows *sql.Rows) ([]int, error) {
	defer rows.Close()
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *queries) IncrementTimesPerformed(ctx context.Context, userID, exerciseID int) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		UPDATE exercises
		SET times_performed = times_performed + 1,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ? AND user_id = ?
		RETURNING times_performed`, exerciseID, userID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("exercise %d: %w", exerciseID, workout.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing exercise %d: %w", exerciseID, err)
	}
	return n, nil
}

func (s *queries) SetCurrentWeight(ctx context.Context, userID, exerciseID int, weight float64) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE exercises
		SET current_weight = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ? AND user_id = ?`, weight, exerciseID, userID)
	if err != nil {
		return fmt.Errorf("setting weight of exercise %d: %w", exerciseID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("exercise %d: %w", exerciseID, workout.ErrNotFound)
	}
	return nil
}

func (s *queries) MuscleGroupsForDay(ctx context.Context, userID, day int) ([]models.MuscleGroup, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT muscle_group FROM routine_muscles_per_day
		WHERE user_id = ? AND day_number = ?
		ORDER BY id`, userID, day)
	if err != nil {
		return nil, fmt.Errorf("listing muscle groups for day %d: %w", day, err)
	}
	defer rows.Close()

	var groups []models.MuscleGroup
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scanning muscle group: %w", err)
		}
		groups = append(groups, models.MuscleGroup(g))
	}
	return groups, rows.Err()
}

func (s *queries) DaysPerWeek(ctx context.Context, userID int) (int, error) {
	var days int
	err := s.q.QueryRowContext(ctx,
		`SELECT days_per_week FROM routines WHERE user_id = ?`, userID).Scan(&days)
	if errors.Is(err, sql.ErrNoRows) {
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

	rows, err := s.q.QueryContext(ctx, `
		SELECT day_number, muscle_group FROM routine_muscles_per_day
		WHERE user_id = ?
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
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO routines (user_id, days_per_week) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE
			SET days_per_week = excluded.days_per_week,
				updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`,
		r.UserID, r.DaysPerWeek)
	if err != nil {
		return fmt.Errorf("saving routine: %w", err)
	}
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM routine_muscles_per_day WHERE user_id = ?`, r.UserID); err != nil {
		return fmt.Errorf("clearing routine days: %w", err)
	}
	for day := 1; day <= r.DaysPerWeek; day++ {
		for _, g := range r.Days[day] {
			if _, err := s.q.ExecContext(ctx, `
				INSERT INTO routine_muscles_per_day (user_id, day_number, muscle_group)
				VALUES (?, ?, ?)`, r.UserID, day, string(g)); err != nil {
				return fmt.Errorf("saving day %d: %w", day, err)
			}
		}
	}
	return nil
}

func (s *queries) DeleteRoutine(ctx context.Context, userID int) (bool, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM routines WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("deleting routine: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting routine: %w", err)
	}
	return n > 0, nil
}

func (s *queries) SetSelection(ctx context.Context, userID, exerciseID int, selected bool) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO next_workout_selections (user_id, exercise_id, is_selected)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, exercise_id) DO UPDATE
			SET is_selected = excluded.is_selected,
				updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`,
		userID, exerciseID, selected)
	if err != nil {
		return fmt.Errorf("setting selection for exercise %d: %w", exerciseID, err)
	}
	return nil
}

func (s *queries) ToggleSelection(ctx context.Context, userID, exerciseID int) (bool, error) {
	var selected bool
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO next_workout_selections (user_id, exercise_id, is_selected)
		VALUES (?, ?, 1)
		ON CONFLICT (user_id, exercise_id) DO UPDATE
			SET is_selected = NOT next_workout_selections.is_selected,
				updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		RETURNING is_selected`, userID, exerciseID).Scan(&selected)
	if err != nil {
		return false, fmt.Errorf("toggling exercise %d: %w", exerciseID, err)
	}
	return selected, nil
}

func (s *queries) SelectedExerciseIDs(ctx context.Context, userID int) ([]int, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT exercise_id FROM next_workout_selections
		WHERE user_id = ? AND is_selected = 1
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
	res, err := s.q.ExecContext(ctx, `
		UPDATE next_workout_selections
		SET is_selected = 0, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE user_id = ? AND is_selected = 1 AND exercise_id IN (`+inClause(len(exerciseIDs))+`)`,
		intArgs([]any{userID}, exerciseIDs)...)
	if err != nil {
		return 0, fmt.Errorf("clearing selections: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *queries) DeselectAll(ctx context.Context, userID int) (int, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE next_workout_selections
		SET is_selected = 0, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE user_id = ? AND is_selected = 1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clearing all selections: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *queries) GetState(ctx context.Context, userID int) (*models.ProgressionState, error) {
	st := models.ProgressionState{UserID: userID}
	var last sql.NullString
	err := s.q.QueryRowContext(ctx, `
		SELECT current_day_number, last_workout_date
		FROM workout_state WHERE user_id = ?`, userID).Scan(&st.CurrentDayNumber, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting workout state: %w", err)
	}
	if st.LastWorkoutDate, err = parseNullDate(last); err != nil {
		return nil, err
	}
	return &st, nil
}

// LockState relies on the single connection for exclusion within a process
// and on the immediate write lock taken at BEGIN across processes sharing the
// file. The insert only makes sure the row exists.
func (s *queries) LockState(ctx context.Context, userID int) (*models.ProgressionState, error) {
	if _, err := s.q.ExecContext(ctx,
		`INSERT INTO workout_state (user_id) VALUES (?) ON CONFLICT (user_id) DO NOTHING`,
		userID); err != nil {
		return nil, fmt.Errorf("creating workout state: %w", err)
	}
	return s.GetState(ctx, userID)
}

func (s *queries) SaveState(ctx context.Context, st models.ProgressionState) error {
	var last any
	if st.LastWorkoutDate != nil {
		last = formatDate(*st.LastWorkoutDate)
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO workout_state (user_id, current_day_number, last_workout_date)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
			SET current_day_number = excluded.current_day_number,
				last_workout_date = excluded.last_workout_date,
				updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`,
		st.UserID, st.CurrentDayNumber, last)
	if err != nil {
		return fmt.Errorf("saving workout state: %w", err)
	}
	return nil
}

func (s *queries) MaxSessionOrder(ctx context.Context, userID int) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(session_order), 0) FROM workout_sessions WHERE user_id = ?`,
		userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("getting max session order: %w", err)
	}
	return n, nil
}

func (s *queries) InsertSession(ctx context.Context, sess models.Session) (int, error) {
	var id int
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO workout_sessions (user_id, session_order, routine_day_number, workout_date)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		sess.UserID, sess.SessionOrder, sess.RoutineDayNumber, formatDate(sess.WorkoutDate)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}
	return id, nil
}

func (s *queries) InsertLogEntry(ctx context.Context, e models.LogEntry) (int, error) {
	var id int
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO workout_logs (session_id, user_id, exercise_id, exercise_name,
			routine_day_number, sets_completed, reps_completed, weight_used, workout_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		e.SessionID, e.UserID, nullInt(e.ExerciseID), e.ExerciseName, e.RoutineDayNumber,
		e.SetsCompleted, e.RepsCompleted, nullFloat(e.WeightUsed), formatDate(e.WorkoutDate)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting log entry: %w", err)
	}
	return id, nil
}

func (s *queries) ListSessions(ctx context.Context, userID, limit int) ([]models.Session, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, user_id, session_order, routine_day_number, workout_date
		FROM workout_sessions
		WHERE user_id = ?
		ORDER BY session_order DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var result []models.Session
	for rows.Next() {
		var (
			sess models.Session
			date string
		)
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.SessionOrder, &sess.RoutineDayNumber, &date); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if sess.WorkoutDate, err = parseDate(date); err != nil {
			return nil, err
		}
		result = append(result, sess)
	}
	return result, rows.Err()
}

func (s *queries) SessionOwners(ctx context.Context, sessionIDs []int) (map[int]int, error) {
	owners := make(map[int]int, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return owners, nil
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, user_id FROM workout_sessions WHERE id IN (`+inClause(len(sessionIDs))+`)`,
		intArgs(nil, sessionIDs)...)
	if err != nil {
		return nil, fmt.Errorf("getting session owners: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, owner int
		if err := rows.Scan(&id, &owner); err != nil {
			return nil, fmt.Errorf("scanning session owner: %w", err)
		}
		owners[id] = owner
	}
	return owners, rows.Err()
}

const logColumns = `id, session_id, user_id, exercise_id, exercise_name, routine_day_number,
	sets_completed, reps_completed, weight_used, workout_date`

func (s *queries) LogsForSessions(ctx context.Context, userID int, sessionIDs []int) ([]models.LogEntry, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+logColumns+`
		FROM workout_logs
		WHERE user_id = ? AND session_id IN (`+inClause(len(sessionIDs))+`)
		ORDER BY session_id DESC, id`,
		intArgs([]any{userID}, sessionIDs)...)
	if err != nil {
		return nil, fmt.Errorf("listing session logs: %w", err)
	}
	return collectLogs(rows)
}

func (s *queries) RecentLogs(ctx context.Context, userID, limit int) ([]models.LogEntry, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+logColumns+`
		FROM workout_logs
		WHERE user_id = ?
		ORDER BY workout_date DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent logs: %w", err)
	}
	return collectLogs(rows)
}

func collectLogs(rows *sql.Rows) ([]models.LogEntry, error) {
	defer rows.Close()
	var result []models.LogEntry
	for rows.Next() {
		var (
			e          models.LogEntry
			exerciseID sql.NullInt64
			weight     sql.NullFloat64
			date       string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.UserID, &exerciseID, &e.ExerciseName,
			&e.RoutineDayNumber, &e.SetsCompleted, &e.RepsCompleted, &weight, &date); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		if exerciseID.Valid {
			id := int(exerciseID.Int64)
			e.ExerciseID = &id
		}
		if weight.Valid {
			e.WeightUsed = &weight.Float64
		}
		var err error
		if e.WorkoutDate, err = parseDate(date); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
