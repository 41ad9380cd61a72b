package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

const userColumns = `id, email, password_hash, first_name, last_name, unit_preference, is_active, created_at`

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// RegisterUser creates the account and copies the default exercise catalog
// into it in one transaction.
func (db *DB) RegisterUser(ctx context.Context, u models.NewUser) (*models.User, error) {
	var user *models.User
	err := db.inTx(ctx, func(q *queries) error {
		var err error
		user, err = q.createUser(ctx, u)
		if err != nil {
			return err
		}
		_, err = q.copyDefaultExercises(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *queries) createUser(ctx context.Context, u models.NewUser) (*models.User, error) {
	unit := u.UnitPreference
	if unit == "" {
		unit = "metric"
	}
	user, err := scanUser(s.q.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, unit_preference)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash,
		nullString(u.FirstName), nullString(u.LastName), unit))
	if isUniqueViolation(err) {
		return nil, models.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *queries) copyDefaultExercises(ctx context.Context, userID int) (int, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO exercises (user_id, name, muscle_group, link)
		SELECT ?, name, muscle_group, link FROM default_exercises ORDER BY id`, userID)
	if err != nil {
		return 0, fmt.Errorf("copying default exercises: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u           models.User
		first, last sql.NullString
		created     string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &first, &last,
		&u.UnitPreference, &u.IsActive, &created); err != nil {
		return nil, err
	}
	if first.Valid {
		u.FirstName = &first.String
	}
	if last.Valid {
		u.LastName = &last.String
	}
	var err error
	if u.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns the user with the given id.
func (db *DB) GetUser(ctx context.Context, userID int) (*models.User, error) {
	u, err := scanUser(db.Conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, workout.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", userID, err)
	}
	return u, nil
}

// GetUserByEmail looks a user up by email, case-insensitively.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(db.Conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", email, workout.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListDefaultExercises returns the template catalog.
func (db *DB) ListDefaultExercises(ctx context.Context) ([]models.DefaultExercise, error) {
	rows, err := db.Conn.QueryContext(ctx,
		`SELECT id, name, muscle_group, link FROM default_exercises ORDER BY muscle_group, name`)
	if err != nil {
		return nil, fmt.Errorf("listing default exercises: %w", err)
	}
	defer rows.Close()

	var result []models.DefaultExercise
	for rows.Next() {
		var (
			d     models.DefaultExercise
			group string
			link  sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Name, &group, &link); err != nil {
			return nil, fmt.Errorf("scanning default exercise: %w", err)
		}
		d.MuscleGroup = models.MuscleGroup(group)
		if link.Valid {
			d.Link = &link.String
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// ListExercises returns the user's whole catalog grouped by muscle group.
func (db *DB) ListExercises(ctx context.Context, userID int) ([]models.Exercise, error) {
	rows, err := db.Conn.QueryContext(ctx, `
		SELECT `+exerciseColumns+`
		FROM exercises
		WHERE user_id = ?
		ORDER BY muscle_group, name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	return collectExercises(rows)
}

// CreateExercise adds an exercise to the user's catalog.
func (db *DB) CreateExercise(ctx context.Context, userID int, in models.ExerciseInput) (*models.Exercise, error) {
	inRoutine := true
	if in.IsInRoutine != nil {
		inRoutine = *in.IsInRoutine
	}
	ex, err := scanExercise(db.Conn.QueryRowContext(ctx, `
		INSERT INTO exercises (user_id, name, muscle_group, current_weight, is_in_routine, link, comments)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+exerciseColumns,
		userID, in.Name, string(in.MuscleGroup), nullFloat(in.CurrentWeight), inRoutine,
		nullString(in.Link), nullString(in.Comments)))
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
		var inRoutine any
		if in.IsInRoutine != nil {
			inRoutine = *in.IsInRoutine
		}
		var err error
		ex, err = scanExercise(q.q.QueryRowContext(ctx, `
			UPDATE exercises
			SET name = ?, muscle_group = ?, current_weight = ?,
				is_in_routine = COALESCE(?, is_in_routine),
				link = ?, comments = ?,
				updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
			WHERE id = ? AND user_id = ?
			RETURNING `+exerciseColumns,
			in.Name, string(in.MuscleGroup), nullFloat(in.CurrentWeight), inRoutine,
			nullString(in.Link), nullString(in.Comments), exerciseID, userID))
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
		if _, err := q.q.ExecContext(ctx,
			`DELETE FROM exercises WHERE id = ? AND user_id = ?`, exerciseID, userID); err != nil {
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
