package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/studentaid/disbursement/internal/config"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/postgres"
)

func main() {
	// Parse command line flags
	down := flag.Int("down", 0, "Roll back the given number of migrations instead of applying")
	version := flag.Bool("version", false, "Print the current schema version and exit")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("connecting to database", "host", cfg.Postgres.Host, "dbname", cfg.Postgres.DBName)

	migrator, err := postgres.NewMigrator(cfg, logger)
	if err != nil {
		logger.Fatalw("failed to create migrator", "error", err)
	}
	defer migrator.Close()

	switch {
	case *version:
		v, dirty, err := migrator.Version()
		if err != nil {
			logger.Fatalw("failed to read schema version", "error", err)
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return
	case *down > 0:
		logger.Infow("rolling back migrations", "steps", *down)
		err = migrator.Down(*down)
	default:
		logger.Info("running database migrations")
		err = migrator.Up()
	}
	if err != nil {
		logger.Fatalw("migration failed", "error", err)
	}

	fmt.Println("Migration process completed")
}
