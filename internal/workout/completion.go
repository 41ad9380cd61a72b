package workout

import (
	"context"

	"github.com/claude/gymsplit/internal/models"
)

// Complete commits the staged selections as a finished workout. In one
// transaction it appends a session numbered after the user's previous one,
// writes a log entry per selected exercise with the pre-commit weight,
// increments each exercise's counter, empties the staging set and advances
// the routine day.
//
// performances is optional. An entry records sets, reps and a new working
// weight for one selected exercise; entries for exercises that are not
// selected are rejected.
func (e *Engine) Complete(ctx context.Context, userID int, performances []models.Performance) (*models.CompletedWorkout, error) {
	byExercise := make(map[int]models.Performance, len(performances))
	for _, p := range performances {
		if p.ExerciseID <= 0 {
			return nil, invalidf("exercise id %d", p.ExerciseID)
		}
		if p.SetsCompleted < 0 || p.RepsCompleted < 0 {
			return nil, invalidf("negative sets or reps for exercise %d", p.ExerciseID)
		}
		if w := p.WeightUsed; w != nil && (*w < 0 || *w > models.MaxWeight) {
			return nil, invalidf("weight %g for exercise %d is outside 0..%g", *w, p.ExerciseID, models.MaxWeight)
		}
		if _, dup := byExercise[p.ExerciseID]; dup {
			return nil, invalidf("exercise %d reported twice", p.ExerciseID)
		}
		byExercise[p.ExerciseID] = p
	}

	var done *models.CompletedWorkout
	err := e.run(ctx, "complete workout", func(r Repo) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}

		// Held until commit; concurrent completions for this user queue here.
		state, err := r.LockState(ctx, userID)
		if err != nil {
			return err
		}

		selected, err := r.SelectedExerciseIDs(ctx, userID)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			return ErrEmptyWorkout
		}
		isSelected := make(map[int]bool, len(selected))
		for _, id := range selected {
			isSelected[id] = true
		}
		for id := range byExercise {
			if !isSelected[id] {
				return invalidf("exercise %d is not in the staged workout", id)
			}
		}

		days, err := r.DaysPerWeek(ctx, userID)
		if err != nil {
			return err
		}
		if days < 1 {
			e.log.Warn("completing workout without a routine, day stays at 1", "user_id", userID)
			days = 1
		}
		current := NormalizeDay(state.CurrentDayNumber, days)

		maxOrder, err := r.MaxSessionOrder(ctx, userID)
		if err != nil {
			return err
		}
		session := models.Session{
			UserID:           userID,
			SessionOrder:     maxOrder + 1,
			RoutineDayNumber: current,
			WorkoutDate:      e.today(),
		}
		session.ID, err = r.InsertSession(ctx, session)
		if err != nil {
			return err
		}

		logs := make([]models.LogEntry, 0, len(selected))
		for _, id := range selected {
			entry, err := e.logExercise(ctx, r, session, id, byExercise[id])
			if err != nil {
				return err
			}
			logs = append(logs, *entry)
		}

		if _, err := r.DeselectAll(ctx, userID); err != nil {
			return err
		}

		next := NextDay(current, days)
		lastDate := session.WorkoutDate
		if err := r.SaveState(ctx, models.ProgressionState{
			UserID:           userID,
			CurrentDayNumber: next,
			LastWorkoutDate:  &lastDate,
		}); err != nil {
			return err
		}

		done = &models.CompletedWorkout{Session: session, Logs: logs, NextDay: next}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.cfg.Recorder.WorkoutCompleted(done.Session.RoutineDayNumber, len(done.Logs))
	e.log.Info("workout completed",
		"user_id", userID,
		"session_id", done.Session.ID,
		"session_order", done.Session.SessionOrder,
		"day_number", done.Session.RoutineDayNumber,
		"exercises", len(done.Logs),
		"next_day", done.NextDay,
	)
	return done, nil
}

// logExercise snapshots one exercise into the session and bumps its counter.
func (e *Engine) logExercise(ctx context.Context, r Repo, s models.Session, exerciseID int, p models.Performance) (*models.LogEntry, error) {
	ex, err := r.GetExercise(ctx, s.UserID, exerciseID)
	if err != nil {
		return nil, err
	}

	weight := ex.CurrentWeight
	if p.WeightUsed != nil && *p.WeightUsed > 0 {
		w := *p.WeightUsed
		weight = &w
		if err := r.SetCurrentWeight(ctx, s.UserID, exerciseID, w); err != nil {
			return nil, err
		}
	}

	id := exerciseID
	entry := models.LogEntry{
		SessionID:        s.ID,
		UserID:           s.UserID,
		ExerciseID:       &id,
		ExerciseName:     ex.Name,
		RoutineDayNumber: s.RoutineDayNumber,
		SetsCompleted:    p.SetsCompleted,
		RepsCompleted:    p.RepsCompleted,
		WeightUsed:       weight,
		WorkoutDate:      s.WorkoutDate,
	}
	entry.ID, err = r.InsertLogEntry(ctx, entry)
	if err != nil {
		return nil, err
	}

	if _, err := r.IncrementTimesPerformed(ctx, s.UserID, exerciseID); err != nil {
		return nil, err
	}
	return &entry, nil
}
