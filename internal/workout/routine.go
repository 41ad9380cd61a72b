package workout

import (
	"context"

	"github.com/claude/gymsplit/internal/models"
)

// ValidateRoutine checks a routine before it is saved: 1..7 days, every
// day in range with at least one known muscle group, no day beyond range.
func ValidateRoutine(r models.Routine) error {
	if r.DaysPerWeek < 1 || r.DaysPerWeek > MaxDayNumber {
		return invalidf("days per week %d outside 1..%d", r.DaysPerWeek, MaxDayNumber)
	}
	for day, groups := range r.Days {
		if day < 1 || day > r.DaysPerWeek {
			return invalidf("day %d outside 1..%d", day, r.DaysPerWeek)
		}
		seen := make(map[models.MuscleGroup]bool, len(groups))
		for _, g := range groups {
			if !g.Valid() {
				return invalidf("unknown muscle group %q on day %d", g, day)
			}
			if seen[g] {
				return invalidf("muscle group %s listed twice on day %d", g, day)
			}
			seen[g] = true
		}
	}
	for day := 1; day <= r.DaysPerWeek; day++ {
		if len(r.Days[day]) == 0 {
			return invalidf("day %d has no muscle groups", day)
		}
	}
	return nil
}

// Routine returns the user's routine, or ErrNotFound when none is saved.
func (e *Engine) Routine(ctx context.Context, userID int) (*models.Routine, error) {
	var routine *models.Routine
	err := e.run(ctx, "get routine", func(r Repo) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		var err error
		routine, err = r.GetRoutine(ctx, userID)
		if err != nil {
			return err
		}
		if routine == nil {
			return notFoundf("routine for user %d", userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return routine, nil
}

// SaveRoutine replaces the user's routine wholesale. The progression state
// is created on first save, and a current day beyond a shortened routine
// wraps back into range.
func (e *Engine) SaveRoutine(ctx context.Context, routine models.Routine) error {
	if err := ValidateRoutine(routine); err != nil {
		return err
	}
	return e.run(ctx, "save routine", func(r Repo) error {
		if err := requireUser(ctx, r, routine.UserID); err != nil {
			return err
		}
		if err := r.ReplaceRoutine(ctx, routine); err != nil {
			return err
		}

		state, err := r.LockState(ctx, routine.UserID)
		if err != nil {
			return err
		}
		day := NormalizeDay(state.CurrentDayNumber, routine.DaysPerWeek)
		if day == state.CurrentDayNumber {
			return nil
		}
		e.log.Warn("current day out of range for new routine, wrapped",
			"user_id", routine.UserID,
			"from_day", state.CurrentDayNumber,
			"to_day", day,
		)
		state.CurrentDayNumber = day
		return r.SaveState(ctx, *state)
	})
}

// DeleteRoutine removes the user's routine. The progression state is kept.
func (e *Engine) DeleteRoutine(ctx context.Context, userID int) error {
	return e.run(ctx, "delete routine", func(r Repo) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		deleted, err := r.DeleteRoutine(ctx, userID)
		if err != nil {
			return err
		}
		if !deleted {
			return notFoundf("routine for user %d", userID)
		}
		return nil
	})
}
