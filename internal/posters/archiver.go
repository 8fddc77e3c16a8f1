// Package posters mirrors poster artwork for favorited movies into object
// storage so the frontend can serve posters without a round trip to the
// provider's CDN. Archiving is best-effort: it runs off the request path and
// its failures never fail a favorite-add.
package posters

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/screenpick/backend/internal/metadata"
	"github.com/screenpick/backend/internal/repositories"
)

// Storage persists poster images and returns their public location.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// ArchiverConfig controls the concurrency characteristics of the archiver.
type ArchiverConfig struct {
	QueueSize int
	Workers   int
}

// Archiver asynchronously mirrors poster artwork using a bounded worker pool.
type Archiver struct {
	details metadata.DetailsProvider
	images  metadata.ImageFetcher
	storage Storage
	archive repositories.PosterRepository
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var errArchiverClosed = errors.New("poster archiver closed")

// NewArchiver constructs a background worker pool that mirrors posters.
func NewArchiver(details metadata.DetailsProvider, images metadata.ImageFetcher, storage Storage, archive repositories.PosterRepository, cfg ArchiverConfig, logger *slog.Logger) *Archiver {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &Archiver{
		details: details,
		images:  images,
		storage: storage,
		archive: archive,
		logger:  logger,
		jobs:    make(chan string, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	a.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go a.worker()
	}

	return a
}

// Enqueue schedules poster archiving for the supplied movie. Once accepted,
// a job is guaranteed to resolve to ready or failed before Shutdown returns
// cleanly. The mutex is held across the channel send so Enqueue never races
// the close in Shutdown.
func (a *Archiver) Enqueue(ctx context.Context, movieID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return errArchiverClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case a.jobs <- movieID:
		return nil
	}
}

// Shutdown stops accepting new work and waits for the workers to drain every
// job already accepted. If ctx expires before the drain completes, in-flight
// provider and storage calls are canceled and the remaining jobs are recorded
// as failed rather than left pending.
func (a *Archiver) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.jobs)
	}
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		a.cancel()
		return ctx.Err()
	case <-done:
		a.cancel()
		return nil
	}
}

func (a *Archiver) worker() {
	defer a.wg.Done()

	for movieID := range a.jobs {
		a.handleJob(movieID)
	}
}

func (a *Archiver) handleJob(movieID string) {
	if a.details == nil || a.images == nil || a.storage == nil || a.archive == nil {
		a.logger.Error("poster archiver missing dependencies",
			"hasDetails", a.details != nil,
			"hasImages", a.images != nil,
			"hasStorage", a.storage != nil,
			"hasArchive", a.archive != nil,
		)
		return
	}

	ctx, cancel := context.WithTimeout(a.ctx, time.Minute)
	defer cancel()

	movie, err := a.details.Details(ctx, movieID)
	if err != nil {
		a.logger.Error("resolve movie details", "movieId", movieID, "error", err)
		a.recordFailure(movieID)
		return
	}

	if strings.TrimSpace(movie.PosterPath) == "" {
		a.logger.Warn("movie has no poster to archive", "movieId", movieID)
		a.recordFailure(movieID)
		return
	}

	body, size, err := a.images.PosterImage(ctx, movie.PosterPath)
	if err != nil {
		a.logger.Error("fetch poster image", "movieId", movieID, "posterPath", movie.PosterPath, "error", err)
		a.recordFailure(movieID)
		return
	}
	defer body.Close()

	location, err := a.storage.Save(ctx, "posters/"+movieID+".jpg", body)
	if err != nil {
		a.logger.Error("store poster image", "movieId", movieID, "error", err)
		a.recordFailure(movieID)
		return
	}

	if err := a.recordSuccess(movieID, location, size); err != nil {
		a.logger.Error("mark poster ready", "movieId", movieID, "error", err)
		a.recordFailure(movieID)
	}
}

func (a *Archiver) recordFailure(movieID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.archive.MarkFailed(ctx, movieID); err != nil {
		a.logger.Error("record poster failure", "movieId", movieID, "error", err)
	}
}

func (a *Archiver) recordSuccess(movieID, location string, size int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return a.archive.MarkReady(ctx, movieID, location, size)
}
