package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/pkg/logger"
)

func main() {
	var configPath string
	var reset bool

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to config.yaml")
	flagSet.BoolVar(&reset, "reset", false, "delete all users, projects, tasks and comments first")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatal(err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	db, err := models.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.SeedDemoData(db, reset); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	fmt.Println("Demo data ready:")
	fmt.Printf("  admin@example.com / %s (ADMIN)\n", models.DemoPassword)
	fmt.Printf("  member@example.com / %s (MEMBER)\n", models.DemoPassword)
}
