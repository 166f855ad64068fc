package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fixdesk/backend/internal/infrastructure/config"
	"github.com/fixdesk/backend/internal/infrastructure/logger"
	"github.com/fixdesk/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("driver", cfg.Database.Driver),
	)

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	switch command {
	case "up":
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}
		log.Info("Schema is up to date")

	case "status":
		status, err := persistence.MigrationStatus(db.DB)
		if err != nil {
			log.Fatal("Failed to read schema status", zap.Error(err))
		}
		missing := 0
		for _, s := range status {
			state := "ok"
			if !s.Exists {
				state = "missing"
				missing++
			}
			fmt.Printf("  %-28s %s\n", s.Table, state)
		}
		log.Info("Schema status", zap.Int("tables", len(status)), zap.Int("missing", missing))
		if missing > 0 {
			os.Exit(2)
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fixdesk schema tool

Usage:
  migrate [flags] <command>

Commands:
  up        Create or update every engine table
  status    List engine tables and whether they exist (exit 2 when any is missing)

Flags:
  -log-level string     Log level: debug, info, warn, error (default: info)

Connection settings come from config.toml and FIXDESK_DATABASE_* variables.`)
}
