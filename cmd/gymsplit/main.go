package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"tailscale.com/tsnet"

	"github.com/claude/gymsplit/internal/config"
	"github.com/claude/gymsplit/internal/metrics"
	"github.com/claude/gymsplit/internal/server"
	"github.com/claude/gymsplit/internal/storage"
	"github.com/claude/gymsplit/internal/workout"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("gymsplit starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Open the store; both drivers migrate on open
	ctx := context.Background()
	db, closeDB, err := storage.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer closeDB()

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Metrics
	var (
		mm       *metrics.Manager
		gatherer prometheus.Gatherer
	)
	engineCfg := workout.Config{
		PicksPerGroup:   cfg.Engine.PicksPerGroup,
		HistoryLimit:    cfg.Engine.HistoryLimit,
		MaxHistoryLimit: cfg.Engine.MaxHistoryLimit,
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		mm = metrics.NewManager("gymsplit", "server", reg)
		gatherer = reg
		engineCfg.Recorder = mm
		log.Info("metrics enabled", "path", cfg.Metrics.Path)
	}

	engine := workout.New(db, engineCfg, log)
	srv := server.New(db, engine, server.Options{
		APIKey:      cfg.Auth.APIKey,
		BcryptCost:  cfg.Auth.BcryptCost,
		Metrics:     mm,
		Gatherer:    gatherer,
		MetricsPath: cfg.Metrics.Path,
	}, log)

	// Listen on tsnet or plain TCP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "driver", cfg.Database.Driver)
	}

	httpSrv := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
