// @title Spanish Learning API
// @version 1.0
// @description Curriculum, sentence generation and progress tracking for Spanish learners.

// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"log"

	"spanish_learning_backend/internal/app"
	"spanish_learning_backend/internal/config"
	"spanish_learning_backend/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "directory containing config.yaml")
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "run database migrations on start even in release mode")
	seedOnly := flag.Bool("seed", false, "migrate, seed the curriculum if empty and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly || *seedOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg, app.DefaultConfigFile(*configDir))
	defer logger.Log.Sync()

	if *migrateOnly {
		logger.Log.Info("Migrations applied, exiting")
		return
	}

	if *seedOnly {
		seeded, err := application.SeedCurriculum(context.Background())
		if err != nil {
			logger.Log.Fatal("Curriculum seeding failed", zap.Error(err))
		}
		logger.Log.Info("Curriculum seed finished", zap.Bool("seeded", seeded))
		return
	}

	application.Run()
}
