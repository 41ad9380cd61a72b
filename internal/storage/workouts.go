package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/gymsplit/internal/models"
)

// InsertSession appends a session. UNIQUE (user_id, session_order) rejects a
// second session claiming the same order.
func (s *queries) InsertSession(ctx context.Context, sess models.Session) (int, error) {
	var id int
	err := s.q.QueryRow(ctx, `
		INSERT INTO workout_sessions (user_id, session_order, routine_day_number, workout_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		sess.UserID, sess.SessionOrder, sess.RoutineDayNumber, sess.WorkoutDate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}
	return id, nil
}

func (s *queries) InsertLogEntry(ctx context.Context, e models.LogEntry) (int, error) {
	var id int
	err := s.q.QueryRow(ctx, `
		INSERT INTO workout_logs (session_id, user_id, exercise_id, exercise_name,
			routine_day_number, sets_completed, reps_completed, weight_used, workout_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		e.SessionID, e.UserID, e.ExerciseID, e.ExerciseName, e.RoutineDayNumber,
		e.SetsCompleted, e.RepsCompleted, e.WeightUsed, e.WorkoutDate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting log entry: %w", err)
	}
	return id, nil
}

// ListSessions returns the user's sessions, newest first.
func (s *queries) ListSessions(ctx context.Context, userID, limit int) ([]models.Session, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, user_id, session_order, routine_day_number, workout_date
		FROM workout_sessions
		WHERE user_id = $1
		ORDER BY session_order DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.Session
	for rows.Next() {
		var sess models.Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.SessionOrder,
			&sess.RoutineDayNumber, &sess.WorkoutDate); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
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
	rows, err := s.q.Query(ctx,
		`SELECT id, user_id FROM workout_sessions WHERE id = ANY($1)`, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("querying session owners: %w", err)
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
	sets_completed, reps_completed, weight_used::float8, workout_date`

func (s *queries) LogsForSessions(ctx context.Context, userID int, sessionIDs []int) ([]models.LogEntry, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	rows, err := s.q.Query(ctx, `
		SELECT `+logColumns+`
		FROM workout_logs
		WHERE user_id = $1 AND session_id = ANY($2)
		ORDER BY session_id DESC, id`, userID, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("querying session logs: %w", err)
	}
	return collectLogs(rows)
}

func (s *queries) RecentLogs(ctx context.Context, userID, limit int) ([]models.LogEntry, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+logColumns+`
		FROM workout_logs
		WHERE user_id = $1
		ORDER BY workout_date DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent logs: %w", err)
	}
	return collectLogs(rows)
}

func collectLogs(rows pgx.Rows) ([]models.LogEntry, error) {
	defer rows.Close()
	var result []models.LogEntry
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.UserID, &e.ExerciseID, &e.ExerciseName,
			&e.RoutineDayNumber, &e.SetsCompleted, &e.RepsCompleted, &e.WeightUsed, &e.WorkoutDate); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
