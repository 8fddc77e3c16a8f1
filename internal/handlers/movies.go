package handlers

import (
	"errors"
	"net/http"

	"github.com/screenpick/backend/internal/logging"
	"github.com/screenpick/backend/internal/repositories"
)

// MovieHandler serves movie search and recommendation listings. Both are
// pass-throughs of the external provider's results: no filtering, no
// pagination, no local state.
type MovieHandler struct {
	Movies  MovieProvider
	Posters PosterArchiveStore
}

// Search handles GET /api/movies?query=...
func (h MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Movies == nil {
		logger.Error("movie provider unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "movie service unavailable"})
		return
	}

	query := r.URL.Query().Get("query")

	ctx, span := logging.StartSpan(ctx, "provider.search")
	movies, err := h.Movies.Search(ctx, query)
	span.End()
	if err != nil {
		logger.Error("movie search failed", "query", query, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch movies"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, movies)
}

// Recommendations handles GET /api/recommendations. The listing is the
// provider's popularity ranking; it never consults stored favorites.
func (h MovieHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Movies == nil {
		logger.Error("movie provider unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "movie service unavailable"})
		return
	}

	ctx, span := logging.StartSpan(ctx, "provider.popular")
	movies, err := h.Movies.Popular(ctx)
	span.End()
	if err != nil {
		logger.Error("recommendations fetch failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch recommendations"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, movies)
}

// Poster handles GET /api/movies/{id}/poster, reporting the archive status
// and mirrored location of a movie's poster artwork.
func (h MovieHandler) Poster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Posters == nil {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "poster archiving is not enabled"})
		return
	}

	movieID := r.PathValue("id")

	archive, err := h.Posters.FindByMovieID(ctx, movieID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "poster not archived"})
			return
		}
		logger.Error("poster lookup failed", "movieId", movieID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch poster"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, archive)
}
