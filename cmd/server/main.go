package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dinnerd/dinnerd/internal/api"
	"github.com/dinnerd/dinnerd/internal/auth"
	"github.com/dinnerd/dinnerd/internal/config"
	"github.com/dinnerd/dinnerd/internal/livesync"
	"github.com/dinnerd/dinnerd/internal/menu"
	"github.com/dinnerd/dinnerd/internal/message"
	"github.com/dinnerd/dinnerd/internal/recipe"
)

//go:embed openapi.yaml
var openapiSpec []byte

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	userRepo := auth.NewRepository(pool)
	authService := auth.NewService(userRepo, cfg.BcryptCost)

	if _, err := authService.BootstrapSuperuser(context.Background()); err != nil {
		slog.Error("failed to bootstrap superuser", "error", err)
		os.Exit(1)
	}

	recipeRepo := recipe.NewRepository(pool)
	menuHub := livesync.NewHub[livesync.MenuUpdate]()
	menuStore := menu.NewStore(pool, cfg.SlotSaveRetries)
	menuService := menu.NewService(menuStore, livesync.MenuFeed{Hub: menuHub})

	messageHub := livesync.NewHub[livesync.MessageUpdate]()
	messageRepo := message.NewRepository(pool)
	messageService := message.NewService(messageRepo, livesync.MessageFeed{Hub: messageHub})

	router := api.NewRouter(api.RouterDeps{
		DBPinger:       pool,
		Version:        cfg.Version,
		AuthService:    authService,
		UserRepo:       userRepo,
		RecipeRepo:     recipeRepo,
		MenuService:    menuService,
		MenuHub:        menuHub,
		MessageService: messageService,
		MessageHub:     messageHub,
		OpenAPISpec:    openapiSpec,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting dinnerd server", "port", cfg.Port, "version", cfg.Version)
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
