package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"fleet_expenses/internal/config"
	"fleet_expenses/internal/logger"
	"fleet_expenses/internal/middleware"
	"fleet_expenses/internal/repository"
	"fleet_expenses/internal/routes"
	"fleet_expenses/internal/services"
	"fleet_expenses/internal/storage"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// Initialize structured logging to file
	accessLog := logger.Setup(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	gin.SetMode(cfg.GinMode)

	if cfg.RunMigrations {
		if err := storage.RunMigrations(cfg.DSN()); err != nil {
			logrus.WithError(err).Fatal("migrations failed")
		}
	}

	// Connect to the database
	db, err := config.InitDB(cfg, logger.GormLogger())
	if err != nil {
		logrus.WithError(err).Fatal("database unavailable")
	}

	repo := repository.NewExpenseRepository(db)
	r := routes.SetupRouter(routes.Deps{
		Expenses:  services.NewExpenseService(repo),
		Sessions:  middleware.NewSessions(cfg.JWTSecret, cfg.SessionTTL),
		DB:        repo,
		AccessLog: accessLog,
	})

	// Wrap with CORS
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.EnableCORS(cfg.CORSOrigins, r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server running at %s", cfg.Addr())
		logrus.WithField("addr", cfg.Addr()).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logrus.Info("server stopped")
}
