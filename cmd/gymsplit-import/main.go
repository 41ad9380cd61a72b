package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/gymsplit/internal/catalogimport"
	"github.com/claude/gymsplit/internal/config"
	"github.com/claude/gymsplit/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to exercise CSV (required)")
	userID := flag.Int("user", 0, "user id whose catalog receives the exercises (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" || *userID <= 0 {
		fmt.Fprintf(os.Stderr, "Usage: gymsplit-import -config config.yaml -file exercises.csv -user ID [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Error("failed to open CSV", "path", *filePath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode, no data will be written to the database")
	}

	db, closeDB, err := storage.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	// Run import
	imp := catalogimport.New(db, log, *dryRun)
	stats, err := imp.Import(ctx, f, *userID)
	if err != nil {
		log.Error("import failed", "error", err)
		if stats != nil {
			printStats(log, stats)
		}
		closeDB()
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *catalogimport.Stats) {
	log.Info("import stats",
		"rows_read", stats.RowsRead,
		"imported", stats.Imported,
		"duplicates", stats.Duplicates,
		"rejected", len(stats.Rejected),
	)
	for _, rej := range stats.Rejected {
		log.Info("rejected row", "line", rej.Line, "error", rej.Err)
	}
}
