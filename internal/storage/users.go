package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

const userColumns = `id, email, password_hash, first_name, last_name, unit_preference, is_active, created_at`

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
	user, err := scanUser(s.q.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, unit_preference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, u.FirstName, u.LastName, unit))
	if isUniqueViolation(err) {
		return nil, models.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *queries) copyDefaultExercises(ctx context.Context, userID int) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		INSERT INTO exercises (user_id, name, muscle_group, link)
		SELECT $1, name, muscle_group, link FROM default_exercises ORDER BY id`, userID)
	if err != nil {
		return 0, fmt.Errorf("copying default exercises: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.UnitPreference, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns the user with the given id.
func (db *DB) GetUser(ctx context.Context, userID int) (*models.User, error) {
	u, err := scanUser(db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, workout.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", userID, err)
	}
	return u, nil
}

// GetUserByEmail looks a user up by email, case-insensitively.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", email, workout.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}
