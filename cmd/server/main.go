package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/Loolib-sub000/internal/api"
	"github.com/frostdev-ops/Loolib-sub000/internal/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("ERROR: ", err)
		os.Exit(1)
	}

	setupLogging(cfg)
	displayConfig(cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, api.NewHandler(cfg))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("unable to serve: %s", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("error during shutdown: %s", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Validated by config.Load
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logrus.SetLevel(level)
}

func displayConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	logrus.Info("squash server settings:")
	logrus.Infof("  version: %s", config.VERSION)
	logrus.Infof("  port: %s", cfg.Port)
	logrus.Infof("  environment: %s", cfg.Environment)
	logrus.Infof("  log level: %s", cfg.LogLevel)
	logrus.Infof("  max file size: %d", cfg.MaxFileSize)
	logrus.Infof("  max output size: %d", cfg.MaxOutputSize)
	logrus.Infof("  default algorithm: %s", cfg.Algorithm)
	logrus.Infof("  default level: %d", cfg.Level)
	logrus.Infof("  default encoding: %s", cfg.Encoding)
}
