package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/screenpick/backend/internal/config"
	"github.com/screenpick/backend/internal/db"
	"github.com/screenpick/backend/internal/handlers"
	"github.com/screenpick/backend/internal/httpserver"
	"github.com/screenpick/backend/internal/middleware"
	"github.com/screenpick/backend/internal/repositories"
)

// Run bootstraps the ScreenPick backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve or indexes")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "indexes":
		return runIndexes(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	client, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	database := client.Database(cfg.Database)

	if err := ensureIndexes(ctx, database); err != nil {
		return err
	}

	deps, cleanup, err := buildDependencies(ctx, database, cfg, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	handler := middleware.RequestLogger(logger)(mux)

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server", "port", cfg.AppPort)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cleanup != nil {
		return cleanup(shutdownCtx)
	}
	return nil
}

// runIndexes creates the collection indexes without starting the server, for
// operators provisioning a fresh database.
func runIndexes(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := ensureIndexes(ctx, client.Database(cfg.Database)); err != nil {
		return err
	}

	fmt.Println("indexes ensured")
	return nil
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ensureIndexes(ctx context.Context, database *mongo.Database) error {
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := repositories.NewMongoUserRepository(database).EnsureIndexes(indexCtx); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}

	if err := repositories.NewMongoPosterRepository(database).EnsureIndexes(indexCtx); err != nil {
		return fmt.Errorf("ensure poster indexes: %w", err)
	}

	return nil
}
