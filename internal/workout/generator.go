package workout

import (
	"context"
	"sort"

	"github.com/claude/gymsplit/internal/models"
)

// Generate stages a balanced candidate workout for day. For every muscle
// group assigned to the day it selects the PicksPerGroup least performed
// in-routine exercises (ties broken by lower id). day 0 means the user's
// current routine day. Selections outside the picked set are left alone;
// call Clear first for a clean slate.
func (e *Engine) Generate(ctx context.Context, userID, day int) (*models.GeneratedWorkout, error) {
	if day != 0 {
		if err := validDay(day); err != nil {
			return nil, err
		}
	}

	result := &models.GeneratedWorkout{DayNumber: day}
	err := e.run(ctx, "generate workout", func(r Repo) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		if result.DayNumber == 0 {
			st, err := currentState(ctx, r, userID)
			if err != nil {
				return err
			}
			result.DayNumber = st.CurrentDayNumber
		}

		groups, err := r.MuscleGroupsForDay(ctx, userID, result.DayNumber)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return &NoRoutineError{Day: result.DayNumber}
		}

		ids := make([]int, 0, len(groups)*e.cfg.PicksPerGroup)
		for _, g := range groups {
			candidates, err := r.ListExercisesByMuscleGroup(ctx, userID, g)
			if err != nil {
				return err
			}
			for _, ex := range pickLeastPerformed(inRoutine(candidates), e.cfg.PicksPerGroup) {
				ids = append(ids, ex.ID)
			}
		}
		ids = uniqueSorted(ids)

		for _, id := range ids {
			if err := r.SetSelection(ctx, userID, id, true); err != nil {
				return err
			}
		}
		result.ExerciseIDs = ids
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.cfg.Recorder.WorkoutGenerated(result.DayNumber, len(result.ExerciseIDs))
	e.log.Info("workout generated",
		"user_id", userID,
		"day_number", result.DayNumber,
		"exercises", len(result.ExerciseIDs),
	)
	return result, nil
}

// pickLeastPerformed returns up to n exercises ordered by times performed,
// then id. The input slice is not modified.
func pickLeastPerformed(exercises []models.Exercise, n int) []models.Exercise {
	sorted := make([]models.Exercise, len(exercises))
	copy(sorted, exercises)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TimesPerformed != sorted[j].TimesPerformed {
			return sorted[i].TimesPerformed < sorted[j].TimesPerformed
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func inRoutine(exercises []models.Exercise) []models.Exercise {
	out := make([]models.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if ex.IsInRoutine {
			out = append(out, ex)
		}
	}
	return out
}

func uniqueSorted(ids []int) []int {
	sort.Ints(ids)
	out := ids[:0]
	for i, id := range ids {
		if i > 0 && id == ids[i-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}
