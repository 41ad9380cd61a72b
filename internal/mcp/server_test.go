package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/storage/sqlite"
	"github.com/claude/gymsplit/internal/workout"
)

type toolFixture struct {
	t      *testing.T
	ctx    context.Context
	db     *sqlite.DB
	h      *handlers
	userID int
}

func newToolFixture(t *testing.T) *toolFixture {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := workout.New(db, workout.Config{
		Now: func() time.Time { return time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC) },
	}, log)

	u, err := db.RegisterUser(ctx, models.NewUser{Email: "mcp@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	require.NoError(t, engine.SaveRoutine(ctx, models.Routine{
		UserID:      u.ID,
		DaysPerWeek: 2,
		Days: map[int][]models.MuscleGroup{
			1: {models.Calves, models.Abs},
			2: {models.Glutes},
		},
	}))

	return &toolFixture{
		t:      t,
		ctx:    ctx,
		db:     db,
		h:      &handlers{ds: engine, userID: u.ID, log: log},
		userID: u.ID,
	}
}

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// call invokes a tool handler and decodes its JSON text into dst. It
// returns the raw result for error checks.
func (f *toolFixture) call(fn toolHandler, args map[string]any, dst any) *mcp.CallToolResult {
	f.t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := fn(f.ctx, req)
	require.NoError(f.t, err)
	require.NotNil(f.t, res)
	if dst != nil && !res.IsError {
		require.NoError(f.t, json.Unmarshal([]byte(resultText(f.t, res)), dst))
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

// TestWithUserIDOverridesDefault verifies the context user wins over the
// configured one.
func TestWithUserIDOverridesDefault(t *testing.T) {
	h := &handlers{userID: 7}
	assert.Equal(t, 7, h.user(context.Background()))
	assert.Equal(t, 42, h.user(WithUserID(context.Background(), 42)))
}

// TestToolsWorkoutCycle drives a full generate, adjust, complete and
// history round through the tool handlers.
func TestToolsWorkoutCycle(t *testing.T) {
	f := newToolFixture(t)

	var state models.ProgressionState
	f.call(f.h.getProgressionState, nil, &state)
	assert.Equal(t, 1, state.CurrentDayNumber)

	var generated models.GeneratedWorkout
	f.call(f.h.generateWorkout, nil, &generated)
	assert.Equal(t, 1, generated.DayNumber)
	require.Len(t, generated.ExerciseIDs, 5) // 2 calves + 3 abs

	var toggled struct {
		IsSelected bool `json:"is_selected"`
	}
	f.call(f.h.toggleSelection, map[string]any{"exercise_id": float64(generated.ExerciseIDs[0])}, &toggled)
	assert.False(t, toggled.IsSelected)

	var sel struct {
		ExerciseIDs []int `json:"exercise_ids"`
	}
	f.call(f.h.listSelections, nil, &sel)
	assert.Equal(t, generated.ExerciseIDs[1:], sel.ExerciseIDs)

	var done models.CompletedWorkout
	f.call(f.h.completeWorkout, map[string]any{
		"exercises": []any{
			map[string]any{"exercise_id": float64(sel.ExerciseIDs[0]), "sets_completed": float64(4), "reps_completed": float64(12)},
		},
	}, &done)
	assert.Equal(t, 2, done.NextDay)
	require.Len(t, done.Logs, 4)

	var sessions []models.Session
	f.call(f.h.listSessions, map[string]any{"limit": float64(5)}, &sessions)
	require.Len(t, sessions, 1)

	var logs []models.LogEntry
	f.call(f.h.getSessionLogs, map[string]any{"session_ids": []any{float64(sessions[0].ID)}}, &logs)
	assert.Len(t, logs, 4)

	f.call(f.h.getProgressionState, nil, &state)
	assert.Equal(t, 2, state.CurrentDayNumber)
}

// TestToolsClearSelections verifies day-scoped and full clears.
func TestToolsClearSelections(t *testing.T) {
	f := newToolFixture(t)

	f.call(f.h.generateWorkout, map[string]any{"day": float64(1)}, nil)
	f.call(f.h.generateWorkout, map[string]any{"day": float64(2)}, nil)

	var cleared map[string]int
	f.call(f.h.clearSelections, map[string]any{"day": float64(2)}, &cleared)
	assert.Equal(t, 3, cleared["cleared"])

	f.call(f.h.clearSelections, nil, &cleared)
	assert.Equal(t, 5, cleared["cleared"])
}

// TestToolErrors verifies engine errors surface as tool errors, not
// protocol errors.
func TestToolErrors(t *testing.T) {
	f := newToolFixture(t)

	res := f.call(f.h.completeWorkout, nil, nil)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "no exercises selected")

	res = f.call(f.h.toggleSelection, nil, nil)
	assert.True(t, res.IsError)

	res = f.call(f.h.toggleSelection, map[string]any{"exercise_id": float64(99999)}, nil)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")

	res = f.call(f.h.generateWorkout, map[string]any{"day": float64(9)}, nil)
	assert.True(t, res.IsError)

	res = f.call(f.h.getSessionLogs, nil, nil)
	assert.True(t, res.IsError)

	res = f.call(f.h.getSessionLogs, map[string]any{"session_ids": "nope"}, nil)
	assert.True(t, res.IsError)

	f.h.userID = 4242
	res = f.call(f.h.getProgressionState, nil, nil)
	assert.True(t, res.IsError)
}

// TestNextWorkoutResource verifies the resource reports the due day and the
// staged exercises.
func TestNextWorkoutResource(t *testing.T) {
	f := newToolFixture(t)
	var generated models.GeneratedWorkout
	f.call(f.h.generateWorkout, nil, &generated)

	var req mcp.ReadResourceRequest
	req.Params.URI = "gymsplit://next_workout"
	contents, err := f.h.nextWorkout(f.ctx, req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "gymsplit://next_workout", text.URI)

	var summary struct {
		DayNumber   int   `json:"day_number"`
		SelectedIDs []int `json:"selected_ids"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &summary))
	assert.Equal(t, 1, summary.DayNumber)
	assert.Equal(t, generated.ExerciseIDs, summary.SelectedIDs)
}

// TestNewBuildsServer verifies the server builds around a data source.
func TestNewBuildsServer(t *testing.T) {
	f := newToolFixture(t)
	require.NotNil(t, New(f.h.ds, f.userID, "test", f.h.log))
}
