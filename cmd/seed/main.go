package main

import (
	"os"

	"github.com/oggyb/tdee-service/internal/config"
	"github.com/oggyb/tdee-service/internal/db"
	"github.com/oggyb/tdee-service/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}
	if database == nil {
		log.Error("nothing to seed: persistence is disabled", "db_driver", cfg.DB.Driver)
		os.Exit(1)
	}

	if err := db.SeedTestData(database, log); err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	log.Info("Seeding completed.")
}
