package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/pkg/logger"
)

func main() {
	var configPath string
	var initConfig bool

	flagSet := pflag.NewFlagSet("taskboard", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to config.yaml (env CONFIG_PATH)")
	flagSet.BoolVar(&initConfig, "init-config", false, "write the effective configuration to --config and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if initConfig {
		if err := cfg.Save(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger.Init(cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)

	svc := bootstrap(cfg)

	r := gin.New()
	registerRoutes(r, svc)

	server := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	startServer(server, time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second, svc)
}

// startServer serves until SIGINT/SIGTERM, then drains requests and stops the event streams.
func startServer(server *http.Server, shutdownTimeout time.Duration, svc *appServices) {
	logger.Info().Str("addr", server.Addr).Msg("Server starting")

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down server")

	// Streams only end when the hub closes, so close it before draining.
	svc.shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	svc.closeDB()
	logger.Info().Msg("Server stopped")
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `taskboard - task tracking API with live board updates.

Configuration is read from config.yaml (or --config), then .env and
environment variables such as SERVER_PORT, DB_DRIVER, DB_DSN and JWT_SECRET.

Usage:
  taskboard [flags]

Flags:
%s`, flagSet.FlagUsages())
}
