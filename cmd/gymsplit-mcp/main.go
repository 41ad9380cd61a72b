package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/gymsplit/internal/config"
	"github.com/claude/gymsplit/internal/mcp"
	"github.com/claude/gymsplit/internal/storage"
	"github.com/claude/gymsplit/internal/workout"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	serverURL := flag.String("server", "", "gymsplit server URL; when set, tools call the REST API instead of the database")
	apiKey := flag.String("api-key", os.Getenv("GYMSPLIT_AUTH_API_KEY"), "API key for -server")
	userID := flag.Int("user", 0, "user id to act for (defaults to mcp.user_id from config)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("gymsplit-mcp", Version)
		return
	}

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	uid := *userID

	if *serverURL != "" {
		if uid <= 0 {
			fmt.Fprintf(os.Stderr, "Error: -user is required with -server\n")
			os.Exit(1)
		}
		ds = mcp.NewHTTPClient(*serverURL, *apiKey)
		log.Info("remote mode", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		if uid <= 0 {
			uid = cfg.MCP.UserID
		}
		if uid <= 0 {
			fmt.Fprintf(os.Stderr, "Error: set mcp.user_id in config or pass -user\n")
			os.Exit(1)
		}

		db, closeDB, err := storage.Open(context.Background(), cfg.Database, log)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer closeDB()

		ds = workout.New(db, workout.Config{
			PicksPerGroup:   cfg.Engine.PicksPerGroup,
			HistoryLimit:    cfg.Engine.HistoryLimit,
			MaxHistoryLimit: cfg.Engine.MaxHistoryLimit,
		}, log)
		log.Info("local mode", "driver", cfg.Database.Driver)
	}

	s := mcp.New(ds, uid, Version, log)
	log.Info("gymsplit-mcp serving on stdio", "user_id", uid)
	if err := server.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
