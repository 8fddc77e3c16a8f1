package repositories

import (
	"context"

	"github.com/screenpick/backend/internal/models"
)

// UserRepository defines the data access contract for user accounts and
// their favorites.
type UserRepository interface {
	// UpsertFavorite appends movieID to the user's favorites, creating the
	// user document if it does not exist. The operation is atomic with
	// respect to concurrent calls for the same username. It returns the
	// full post-update user.
	UpsertFavorite(ctx context.Context, username, movieID string) (models.User, error)
	Create(ctx context.Context, user models.User) error
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// PosterRepository tracks the archive status of mirrored poster artwork.
type PosterRepository interface {
	MarkPending(ctx context.Context, movieID string) error
	MarkReady(ctx context.Context, movieID, location string, size int64) error
	MarkFailed(ctx context.Context, movieID string) error
	FindByMovieID(ctx context.Context, movieID string) (models.PosterArchive, error)
}
