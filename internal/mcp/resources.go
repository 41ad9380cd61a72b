package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) nextWorkout(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := h.user(ctx)

	state, err := h.ds.State(ctx, uid)
	if err != nil {
		return nil, err
	}

	selected, err := h.ds.Selected(ctx, uid)
	if err != nil {
		return nil, err
	}

	summary := map[string]any{
		"day_number":        state.CurrentDayNumber,
		"last_workout_date": state.LastWorkoutDate,
		"selected_ids":      selected,
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
