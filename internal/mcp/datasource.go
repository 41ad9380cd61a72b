package mcp

import (
	"context"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

// DataSource abstracts the workout engine for MCP tools. Both *workout.Engine
// (local store) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	State(ctx context.Context, userID int) (*models.ProgressionState, error)
	Generate(ctx context.Context, userID, day int) (*models.GeneratedWorkout, error)
	Toggle(ctx context.Context, userID, exerciseID int) (bool, error)
	Selected(ctx context.Context, userID int) ([]int, error)
	Clear(ctx context.Context, userID, day int) (int, error)
	Complete(ctx context.Context, userID int, performances []models.Performance) (*models.CompletedWorkout, error)
	ListSessions(ctx context.Context, userID, limit int) ([]models.Session, error)
	LogsForSessions(ctx context.Context, userID int, sessionIDs []int) ([]models.LogEntry, error)
}

// Compile-time check: *workout.Engine satisfies DataSource.
var _ DataSource = (*workout.Engine)(nil)
