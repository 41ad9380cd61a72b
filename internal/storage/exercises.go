package storage

import (
	"context"
	"fmt"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

// ListDefaultExercises returns the template catalog.
func (db *DB) ListDefaultExercises(ctx context.Context) ([]models.DefaultExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, muscle_group, link FROM default_exercises ORDER BY muscle_group, name`)
	if err != nil {
		return nil, fmt.Errorf("querying default exercises: %w", err)
	}
	defer rows.Close()

	var result []models.DefaultExercise
	for rows.Next() {
		var (
			d     models.DefaultExercise
			group string
		)
		if err := rows.Scan(&d.ID, &d.Name, &group, &d.Link); err != nil {
			return nil, fmt.Errorf("scanning default exercise: %w", err)
		}
		d.MuscleGroup = models.MuscleGroup(group)
		result = append(result, d)
	}
	return result, rows.Err()
}

// ListExercises returns the user's whole catalog grouped by muscle group.
func (db *DB) ListExercises(ctx context.Context, userID int) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+exerciseColumns+`
		FROM exercises
		WHERE user_id = $1
		ORDER BY muscle_group, name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	return collectExercises(rows)
}

// CreateExercise adds an exercise to the user's catalog.
func (db *DB) CreateExercise(ctx context.Context, userID int, in models.ExerciseInput) (*models.Exercise, error) {
	inRoutine := true
	if in.IsInRoutine != nil {
		inRoutine = *in.IsInRoutine
	}
	ex, err := scanExercise(db.Pool.QueryRow(ctx, `
		INSERT INTO exercises (user_id, name, muscle_group, current_weight, is_in_routine, link, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+exerciseColumns,
		userID, in.Name, string(in.MuscleGroup), in.CurrentWeight, inRoutine, in.Link, in.Comments))
	if err != nil {
		return nil, fmt.Errorf("creating exercise: %w", err)
	}
	return ex, nil
}

// UpdateExercise replaces the editable fields of one of the user's
// exercises. A nil IsInRoutine keeps the current flag.
func (db *DB) UpdateExercise(ctx context.Context, userID, exerciseID int, in models.ExerciseInput) (*models.Exercise, error) {
	var ex *models.Exercise
	err := db.inTx(ctx, func(q *queries) error {
		if err := q.requireOwner(ctx, userID, exerciseID); err != nil {
			return err
		}
		var err error
		ex, err = scanExercise(q.q.QueryRow(ctx, `
			UPDATE exercises
			SET name = $1, muscle_group = $2, current_weight = $3,
				is_in_routine = COALESCE($4, is_in_routine),
				link = $5, comments = $6, updated_at = NOW()
			WHERE id = $7 AND user_id = $8
			RETURNING `+exerciseColumns,
			in.Name, string(in.MuscleGroup), in.CurrentWeight, in.IsInRoutine,
			in.Link, in.Comments, exerciseID, userID))
		if err != nil {
			return fmt.Errorf("updating exercise %d: %w", exerciseID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ex, nil
}

// DeleteExercise removes one of the user's exercises. Its selection goes with
// it; history keeps the name snapshot.
func (db *DB) DeleteExercise(ctx context.Context, userID, exerciseID int) error {
	return db.inTx(ctx, func(q *queries) error {
		if err := q.requireOwner(ctx, userID, exerciseID); err != nil {
			return err
		}
		if _, err := q.q.Exec(ctx,
			`DELETE FROM exercises WHERE id = $1 AND user_id = $2`, exerciseID, userID); err != nil {
			return fmt.Errorf("deleting exercise %d: %w", exerciseID, err)
		}
		return nil
	})
}

func (s *queries) requireOwner(ctx context.Context, userID, exerciseID int) error {
	owner, err := s.ExerciseOwner(ctx, exerciseID)
	if err != nil {
		return err
	}
	if owner != userID {
		return workout.ErrUnauthorized
	}
	return nil
}
