package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/gymsplit/internal/config"
	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/storage/sqlite"
	"github.com/claude/gymsplit/internal/workout"
)

// Backend is the store surface both drivers provide.
type Backend interface {
	workout.Store
	Ping(ctx context.Context) error
	RegisterUser(ctx context.Context, u models.NewUser) (*models.User, error)
	GetUser(ctx context.Context, userID int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListDefaultExercises(ctx context.Context) ([]models.DefaultExercise, error)
	ListExercises(ctx context.Context, userID int) ([]models.Exercise, error)
	CreateExercise(ctx context.Context, userID int, in models.ExerciseInput) (*models.Exercise, error)
	UpdateExercise(ctx context.Context, userID, exerciseID int, in models.ExerciseInput) (*models.Exercise, error)
	DeleteExercise(ctx context.Context, userID, exerciseID int) error
}

var (
	_ Backend = (*DB)(nil)
	_ Backend = (*sqlite.DB)(nil)
)

// Open migrates and connects the database selected by cfg.Driver. The
// returned func releases it.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (Backend, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sqlite database opened", "path", cfg.Path)
		return db, func() {
			if err := db.Close(); err != nil {
				log.Warn("closing sqlite database", "error", err)
			}
		}, nil

	case config.DriverPostgres, "":
		dsn := cfg.DSN()
		if err := RunMigrations(dsn); err != nil {
			return nil, nil, fmt.Errorf("migrating postgres: %w", err)
		}
		log.Info("migrations applied")
		db, err := New(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database connected", "host", cfg.Host, "name", cfg.Name)
		return db, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
