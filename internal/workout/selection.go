package workout

import (
	"context"
)

// Toggle flips the staged state of one of the user's exercises and returns
// the new state. An exercise never staged before becomes selected.
func (e *Engine) Toggle(ctx context.Context, userID, exerciseID int) (bool, error) {
	var selected bool
	err := e.run(ctx, "toggle selection", func(r Repo) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		if err := requireOwnExercise(ctx, r, userID, exerciseID); err != nil {
			return err
		}
		var err error
		selected, err = r.ToggleSelection(ctx, userID, exerciseID)
		return err
	})
	if err != nil {
		return false, err
	}
	e.cfg.Recorder.SelectionToggled(selected)
	return selected, nil
}

// SetSelection stages or unstages an exercise explicitly.
func (e *Engine) SetSelection(ctx context.Context, userID, exerciseID int, selected bool) error {
	return e.run(ctx, "set selection", func(r Repo) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		if err := requireOwnExercise(ctx, r, userID, exerciseID); err != nil {
			return err
		}
		return r.SetSelection(ctx, userID, exerciseID, selected)
	})
}

// Selected returns the ids of the currently staged exercises, ascending.
func (e *Engine) Selected(ctx context.Context, userID int) ([]int, error) {
	var ids []int
	err := e.run(ctx, "list selections", func(r Repo) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		var err error
		ids, err = r.SelectedExerciseIDs(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int{}
	}
	return ids, nil
}

// Clear unstages every exercise belonging to day's muscle groups and
// returns how many were cleared. Selections from other groups survive. day
// 0 clears the whole staging set; a day without muscle groups clears nothing.
func (e *Engine) Clear(ctx context.Context, userID, day int) (int, error) {
	if day != 0 {
		if err := validDay(day); err != nil {
			return 0, err
		}
	}

	var cleared int
	err := e.run(ctx, "clear selections", func(r Repo) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		var err error
		if day == 0 {
			cleared, err = r.DeselectAll(ctx, userID)
			return err
		}

		groups, err := r.MuscleGroupsForDay(ctx, userID, day)
		if err != nil || len(groups) == 0 {
			return err
		}
		ids, err := r.ExerciseIDsByMuscleGroups(ctx, userID, groups)
		if err != nil || len(ids) == 0 {
			return err
		}
		cleared, err = r.DeselectExercises(ctx, userID, ids)
		return err
	})
	return cleared, err
}
