package metadata

import (
	"context"
	"io"

	"github.com/screenpick/backend/internal/models"
)

// DetailsProvider resolves a single movie by its provider identifier.
type DetailsProvider interface {
	Details(ctx context.Context, movieID string) (models.Movie, error)
}

// ImageFetcher streams poster artwork from the provider's image CDN.
type ImageFetcher interface {
	PosterImage(ctx context.Context, posterPath string) (io.ReadCloser, int64, error)
}
