package workout

import (
	"context"

	"github.com/claude/gymsplit/internal/models"
)

// ListSessions returns the user's most recent sessions, newest first. A
// non-positive limit means the configured default; limits above the
// configured maximum are capped.
func (e *Engine) ListSessions(ctx context.Context, userID, limit int) ([]models.Session, error) {
	limit = e.historyLimit(limit)
	var sessions []models.Session
	err := e.run(ctx, "list sessions", func(r Repo) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		var err error
		sessions, err = r.ListSessions(ctx, userID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// LogsForSessions returns every log entry of the given sessions. The whole
// request fails if any id is unknown or belongs to another user.
func (e *Engine) LogsForSessions(ctx context.Context, userID int, sessionIDs []int) ([]models.LogEntry, error) {
	ids := uniqueSorted(append([]int(nil), sessionIDs...))
	var logs []models.LogEntry
	err := e.run(ctx, "logs for sessions", func(r Repo) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		owners, err := r.SessionOwners(ctx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			owner, ok := owners[id]
			if !ok {
				return notFoundf("session %d", id)
			}
			if owner != userID {
				return ErrUnauthorized
			}
		}

		logs, err = r.LogsForSessions(ctx, userID, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.LogEntry{}
	}
	return logs, nil
}

// RecentLogs returns the user's latest log entries across all sessions.
func (e *Engine) RecentLogs(ctx context.Context, userID, limit int) ([]models.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLogsLimit
	}
	if limit > e.cfg.MaxHistoryLimit {
		limit = e.cfg.MaxHistoryLimit
	}
	var logs []models.LogEntry
	err := e.run(ctx, "recent logs", func(r Repo) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		var err error
		logs, err = r.RecentLogs(ctx, userID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.LogEntry{}
	}
	return logs, nil
}

func (e *Engine) historyLimit(limit int) int {
	if limit <= 0 {
		return e.cfg.HistoryLimit
	}
	if limit > e.cfg.MaxHistoryLimit {
		return e.cfg.MaxHistoryLimit
	}
	return limit
}
