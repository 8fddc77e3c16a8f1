package handlers

import (
	"context"

	"github.com/screenpick/backend/internal/models"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	UpsertFavorite(ctx context.Context, username, movieID string) (models.User, error)
	Create(ctx context.Context, user models.User) error
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// MovieProvider resolves movie listings from the external metadata provider.
type MovieProvider interface {
	Search(ctx context.Context, query string) ([]models.Movie, error)
	Popular(ctx context.Context) ([]models.Movie, error)
}

// PosterArchiveStore exposes the bookkeeping for mirrored poster artwork.
type PosterArchiveStore interface {
	MarkPending(ctx context.Context, movieID string) error
	FindByMovieID(ctx context.Context, movieID string) (models.PosterArchive, error)
}

// PosterArchiver schedules background mirroring of poster artwork.
type PosterArchiver interface {
	Enqueue(ctx context.Context, movieID string) error
}
