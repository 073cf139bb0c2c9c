package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/auth"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/config"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/database"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/page"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/product"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/team"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := auth.NewUserRepository(db.Pool())
	sessionRepo := auth.NewSessionRepository(db.Pool())
	teamRepo := team.NewRepository(db.Pool())
	productRepo := product.NewRepository(db.Pool())
	pageRepo := page.NewRepository(db.Pool())

	authService := auth.NewService(userRepo, sessionRepo, cfg.BcryptCost, time.Duration(cfg.SessionTTLHours)*time.Hour)
	teamService := team.NewService(teamRepo)

	router := api.NewRouter(api.RouterDeps{
		AuthService:  authService,
		UserRepo:     userRepo,
		TeamService:  teamService,
		TeamRepo:     teamRepo,
		ProductRepo:  productRepo,
		PageRepo:     pageRepo,
		DBPinger:     db,
		Version:      cfg.Version,
		CookieSecure: cfg.CookieSecure,
		BaseDomain:   cfg.BaseDomain,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "port", cfg.Port, "version", cfg.Version, "baseDomain", cfg.BaseDomain)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
