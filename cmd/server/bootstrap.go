package main

import (
	"time"

	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/handlers"
	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/services"
	"github.com/taskboard/backend/internal/utils"
	"github.com/taskboard/backend/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds the shared resources and handlers of the running server.
type appServices struct {
	db      *gorm.DB
	hub     *services.EventHub
	monitor *services.HubMonitor

	authHandler          *handlers.AuthHandler
	userHandler          *handlers.UserHandler
	projectHandler       *handlers.ProjectHandler
	projectMemberHandler *handlers.ProjectMemberHandler
	taskHandler          *handlers.TaskHandler
	commentHandler       *handlers.CommentHandler
	sseHandler           *handlers.SSEHandler
	wsHandler            *handlers.WSHandler
	healthHandler        *handlers.HealthHandler
	metricsHandler       *handlers.MetricsHandler
}

// bootstrap initializes the database, the event hub and every handler.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	db, err := models.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	if cfg.Seed.Demo {
		if err := models.SeedDemoData(db, false); err != nil {
			logger.Warn().Err(err).Msg("Failed to seed demo data")
		}
	}

	hub := services.NewEventHub()
	monitor, err := services.StartHubMonitor(hub, cfg.Events.MonitorSchedule)
	if err != nil {
		logger.Warn().Err(err).Str("schedule", cfg.Events.MonitorSchedule).Msg("Hub monitor disabled")
	}

	keepalive := time.Duration(cfg.Events.KeepaliveSeconds) * time.Second

	return &appServices{
		db:      db,
		hub:     hub,
		monitor: monitor,

		authHandler:          handlers.NewAuthHandler(db, cfg),
		userHandler:          handlers.NewUserHandler(db, cfg),
		projectHandler:       handlers.NewProjectHandler(db),
		projectMemberHandler: handlers.NewProjectMemberHandler(db),
		taskHandler:          handlers.NewTaskHandler(db, hub),
		commentHandler:       handlers.NewCommentHandler(db, hub),
		sseHandler:           handlers.NewSSEHandler(hub, keepalive),
		wsHandler:            handlers.NewWSHandler(hub, keepalive),
		healthHandler:        handlers.NewHealthHandler(db, hub, monitor),
		metricsHandler:       handlers.NewMetricsHandler(db, hub),
	}
}

// shutdown stops the monitor and ends every live stream.
func (s *appServices) shutdown() {
	s.monitor.Stop()
	s.hub.Close()
	logger.Info().Msg("Event streams closed")
}

func (s *appServices) closeDB() {
	sqlDB, err := s.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close database")
	}
}
