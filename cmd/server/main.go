package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/backoffice/internal/config"
	"github.com/diewo77/backoffice/internal/db"
	"github.com/diewo77/backoffice/internal/logging"
	"github.com/diewo77/backoffice/internal/server"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Seed the bootstrap admin and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.Setup(cfg.Logger)
	defer func() { _ = logger.Sync() }()

	conn, err := db.ConnectAndMigrate(cfg.Database)
	if err != nil {
		zap.S().Fatalw("database setup failed", "error", err)
	}
	if *migrateOnlyFlag {
		zap.S().Info("migrations completed; exiting as requested")
		return
	}
	if *seedOnlyFlag {
		if err := db.Seed(conn); err != nil {
			zap.S().Fatalw("seed failed", "error", err)
		}
		return
	}

	handler := server.New(conn, cfg)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zap.S().Infow("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalw("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.S().Errorw("shutdown error", "error", err)
	}
	zap.S().Info("server stopped")
}
