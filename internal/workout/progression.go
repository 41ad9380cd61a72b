package workout

import (
	"context"

	"github.com/claude/gymsplit/internal/models"
)

// NextDay returns the routine day that follows current, wrapping to 1 after
// daysPerWeek. A missing routine (daysPerWeek < 1) always yields day 1.
func NextDay(current, daysPerWeek int) int {
	if daysPerWeek < 1 {
		return 1
	}
	next := current + 1
	if next > daysPerWeek || next < 1 {
		return 1
	}
	return next
}

// NormalizeDay maps a stored day onto 1..daysPerWeek. A day left beyond the
// range by a shrunken routine wraps around instead of being clamped, so a
// user on day 5 of a routine cut to 3 days continues on day 2.
func NormalizeDay(current, daysPerWeek int) int {
	if daysPerWeek < 1 || current < 1 {
		return 1
	}
	if current > daysPerWeek {
		return (current-1)%daysPerWeek + 1
	}
	return current
}

// State returns the user's progression state. Users who never saved a
// routine or completed a workout are on day 1 with no last workout.
func (e *Engine) State(ctx context.Context, userID int) (*models.ProgressionState, error) {
	var state *models.ProgressionState
	err := e.run(ctx, "get state", func(r Repo) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		var err error
		state, err = currentState(ctx, r, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// currentState reads the state without creating it and reconciles the day
// with the routine's current length.
func currentState(ctx context.Context, r Repo, userID int) (*models.ProgressionState, error) {
	st, err := r.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = &models.ProgressionState{UserID: userID, CurrentDayNumber: 1}
	}
	days, err := r.DaysPerWeek(ctx, userID)
	if err != nil {
		return nil, err
	}
	if days > 0 {
		st.CurrentDayNumber = NormalizeDay(st.CurrentDayNumber, days)
	}
	return st, nil
}
