package catalogimport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/claude/gymsplit/internal/models"
)

// Store is the catalog persistence the importer writes through.
type Store interface {
	GetUser(ctx context.Context, userID int) (*models.User, error)
	ListExercises(ctx context.Context, userID int) ([]models.Exercise, error)
	CreateExercise(ctx context.Context, userID int, in models.ExerciseInput) (*models.Exercise, error)
}

// Stats holds the outcome of an import.
type Stats struct {
	RowsRead   int        `json:"rows_read"`
	Imported   int        `json:"imported"`
	Duplicates int        `json:"duplicates"`
	Rejected   []RowError `json:"rejected,omitempty"`
}

// Importer adds parsed rows to one user's catalog. Exercises that already
// exist (same name, case-insensitive, and muscle group) are skipped so a
// file can be imported repeatedly.
type Importer struct {
	store  Store
	log    *slog.Logger
	dryRun bool
}

// New creates an Importer. In dry-run mode nothing is written.
func New(store Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun}
}

type catalogKey struct {
	name  string
	group models.MuscleGroup
}

func keyOf(name string, group models.MuscleGroup) catalogKey {
	return catalogKey{name: strings.ToLower(strings.TrimSpace(name)), group: group}
}

// Import parses r and writes its valid rows into userID's catalog.
func (imp *Importer) Import(ctx context.Context, r io.Reader, userID int) (*Stats, error) {
	if _, err := imp.store.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("looking up user %d: %w", userID, err)
	}

	rows, rejects, err := Parse(r)
	if err != nil {
		return nil, err
	}
	stats := &Stats{RowsRead: len(rows) + len(rejects), Rejected: rejects}
	for _, rej := range rejects {
		imp.log.Warn("row rejected", "line", rej.Line, "error", rej.Err)
	}

	existing, err := imp.store.ListExercises(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("listing catalog: %w", err)
	}
	seen := make(map[catalogKey]bool, len(existing)+len(rows))
	for _, ex := range existing {
		seen[keyOf(ex.Name, ex.MuscleGroup)] = true
	}

	for _, row := range rows {
		key := keyOf(row.Input.Name, row.Input.MuscleGroup)
		if seen[key] {
			stats.Duplicates++
			imp.log.Debug("exercise already in catalog", "line", row.Line, "name", row.Input.Name)
			continue
		}
		seen[key] = true

		if imp.dryRun {
			stats.Imported++
			continue
		}
		if _, err := imp.store.CreateExercise(ctx, userID, row.Input); err != nil {
			return stats, fmt.Errorf("line %d: creating %q: %w", row.Line, row.Input.Name, err)
		}
		stats.Imported++
	}
	return stats, nil
}
