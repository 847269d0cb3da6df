package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/faxai/faxai/config"
	"github.com/faxai/faxai/models"
	"github.com/faxai/faxai/routes"
	"github.com/faxai/faxai/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Resource{},
		&models.ResourceAttachment{},
		&models.Like{},
		&models.Bookmark{},
		&models.Comment{},
		&models.Notification{},
	)

	r := routes.SetupRouter(db, utils.Logger)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.Sugar.Infof("Starting server on port %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Sugar.Fatalf("server stopped with error: %v", err)
		}
	}()

	<-ctx.Done()
	utils.Sugar.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Sugar.Errorf("graceful shutdown failed: %v", err)
	}
}
