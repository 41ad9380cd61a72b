package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

// --- Tool definitions ---

var toolGetProgressionState = mcp.NewTool("get_progression_state",
	mcp.WithDescription("Get the routine day due next and the date of the last completed workout."),
)

var toolGenerateWorkout = mcp.NewTool("generate_workout",
	mcp.WithDescription("Stage the least-performed exercises of each muscle group trained on a routine day. Adds to the current selection; never removes."),
	mcp.WithNumber("day", mcp.Description("Routine day number (1-7). Defaults to the day due next.")),
)

var toolToggleSelection = mcp.NewTool("toggle_selection",
	mcp.WithDescription("Flip whether an exercise is staged for the next workout. Returns the new state."),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise id from the user's catalog")),
)

var toolListSelections = mcp.NewTool("list_selections",
	mcp.WithDescription("List the exercise ids currently staged for the next workout."),
)

var toolClearSelections = mcp.NewTool("clear_selections",
	mcp.WithDescription("Unstage the exercises belonging to a routine day's muscle groups, or everything when no day is given."),
	mcp.WithNumber("day", mcp.Description("Routine day number (1-7). Omit to clear all selections.")),
)

var toolCompleteWorkout = mcp.NewTool("complete_workout",
	mcp.WithDescription("Commit the staged selection as a workout session: logs each exercise, bumps its performed counter, clears the selection and advances to the next routine day."),
	mcp.WithArray("exercises",
		mcp.Description("Optional per-exercise results. Every exercise_id must be currently staged."),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"exercise_id":    map[string]any{"type": "integer"},
				"sets_completed": map[string]any{"type": "integer"},
				"reps_completed": map[string]any{"type": "integer"},
				"weight_used":    map[string]any{"type": "number"},
			},
			"required": []string{"exercise_id"},
		}),
	),
)

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List the most recent completed workout sessions, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 10.")),
)

var toolGetSessionLogs = mcp.NewTool("get_session_logs",
	mcp.WithDescription("Get the exercise log entries recorded in the given sessions."),
	mcp.WithArray("session_ids", mcp.Required(),
		mcp.Description("Session ids as returned by list_sessions"),
		mcp.Items(map[string]any{"type": "integer"}),
	),
)

// --- Tool handlers ---

func (h *handlers) getProgressionState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := h.ds.State(ctx, h.user(ctx))
	if err != nil {
		return h.toolError("get_progression_state", err), nil
	}
	return jsonResult(state), nil
}

func (h *handlers) generateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	generated, err := h.ds.Generate(ctx, h.user(ctx), req.GetInt("day", 0))
	if err != nil {
		return h.toolError("generate_workout", err), nil
	}
	return jsonResult(generated), nil
}

func (h *handlers) toggleSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	selected, err := h.ds.Toggle(ctx, h.user(ctx), exerciseID)
	if err != nil {
		return h.toolError("toggle_selection", err), nil
	}
	return jsonResult(map[string]any{"exercise_id": exerciseID, "is_selected": selected}), nil
}

func (h *handlers) listSelections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := h.ds.Selected(ctx, h.user(ctx))
	if err != nil {
		return h.toolError("list_selections", err), nil
	}
	return jsonResult(map[string]any{"exercise_ids": ids}), nil
}

func (h *handlers) clearSelections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cleared, err := h.ds.Clear(ctx, h.user(ctx), req.GetInt("day", 0))
	if err != nil {
		return h.toolError("clear_selections", err), nil
	}
	return jsonResult(map[string]int{"cleared": cleared}), nil
}

func (h *handlers) completeWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var performances []models.Performance
	if _, err := decodeArg(req, "exercises", &performances); err != nil {
		return mcp.NewToolResultError("invalid exercises: " + err.Error()), nil
	}

	done, err := h.ds.Complete(ctx, h.user(ctx), performances)
	if err != nil {
		return h.toolError("complete_workout", err), nil
	}
	return jsonResult(done), nil
}

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.ds.ListSessions(ctx, h.user(ctx), req.GetInt("limit", 0))
	if err != nil {
		return h.toolError("list_sessions", err), nil
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return jsonResult(sessions), nil
}

func (h *handlers) getSessionLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var ids []int
	found, err := decodeArg(req, "session_ids", &ids)
	if err != nil {
		return mcp.NewToolResultError("invalid session_ids: " + err.Error()), nil
	}
	if !found {
		return mcp.NewToolResultError("session_ids parameter is required"), nil
	}

	logs, err := h.ds.LogsForSessions(ctx, h.user(ctx), ids)
	if err != nil {
		return h.toolError("get_session_logs", err), nil
	}
	if logs == nil {
		logs = []models.LogEntry{}
	}
	return jsonResult(logs), nil
}

// toolError reports err to the model. Storage faults are also logged.
func (h *handlers) toolError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, workout.ErrStorage) || !isDomainError(err) {
		h.log.Error("mcp "+tool, "error", err)
		return mcp.NewToolResultError("request failed: " + err.Error())
	}
	return mcp.NewToolResultError(err.Error())
}

func isDomainError(err error) bool {
	for _, kind := range []error{
		workout.ErrNoRoutineConfigured,
		workout.ErrEmptyWorkout,
		workout.ErrUnauthorized,
		workout.ErrNotFound,
		workout.ErrInvalidInput,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// decodeArg converts a structured argument into dst by way of JSON. It
// reports whether the argument was present.
func decodeArg(req mcp.CallToolRequest, name string, dst any) (bool, error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return false, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return true, err
	}
	return true, json.Unmarshal(data, dst)
}

func jsonResult(v any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed")
	}
	return result
}
