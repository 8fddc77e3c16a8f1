package app

import (
	"context"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/screenpick/backend/internal/config"
	"github.com/screenpick/backend/internal/handlers"
	"github.com/screenpick/backend/internal/metadata"
	"github.com/screenpick/backend/internal/middleware"
	"github.com/screenpick/backend/internal/posters"
	"github.com/screenpick/backend/internal/repositories"
	"github.com/screenpick/backend/internal/storage"
)

// cleanupFunc releases background resources acquired while building
// dependencies.
type cleanupFunc func(ctx context.Context) error

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. Poster archiving is optional: it activates only when an object
// store bucket is configured.
func buildDependencies(ctx context.Context, database *mongo.Database, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, cleanupFunc, error) {
	tmdb := metadata.NewClient(cfg.TMDBBaseURL, cfg.TMDBImageBaseURL, cfg.TMDBAPIKey, cfg.TMDBTimeout)
	users := repositories.NewMongoUserRepository(database)
	limiter := middleware.NewIPRateLimiter(cfg.WriteRateLimit, cfg.WriteRateWindow, cfg.WriteRateBurst, 0)

	deps := handlers.Dependencies{
		Users:        users,
		Movies:       tmdb,
		WriteLimiter: limiter,
	}

	if strings.TrimSpace(cfg.ObjectStore.Bucket) == "" {
		return deps, func(context.Context) error { return nil }, nil
	}

	posterStore, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	archives := repositories.NewMongoPosterRepository(database)
	archiver := posters.NewArchiver(tmdb, tmdb, posterStore, archives, posters.ArchiverConfig{
		QueueSize: cfg.ArchiveQueue,
		Workers:   cfg.ArchiveWorkers,
	}, logger)

	deps.PosterArchives = archives
	deps.PosterArchiver = archiver

	return deps, archiver.Shutdown, nil
}
