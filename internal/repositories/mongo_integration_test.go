package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/screenpick/backend/internal/models"
)

// testDatabase connects to the MongoDB instance named by
// SCREENPICK_TEST_MONGO_URL and hands back an isolated throwaway database.
// The suite is skipped when the variable is unset.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("SCREENPICK_TEST_MONGO_URL")
	if uri == "" {
		t.Skip("SCREENPICK_TEST_MONGO_URL not set; skipping mongo integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("ping mongo: %v", err)
	}

	db := client.Database(fmt.Sprintf("screenpick_test_%d", time.Now().UnixNano()))

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(cleanupCtx)
		_ = client.Disconnect(cleanupCtx)
	})

	return db
}

func TestMongoUserRepository_UpsertFavorite(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	repo := NewMongoUserRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	user, err := repo.UpsertFavorite(ctx, "alice", "27205")
	if err != nil {
		t.Fatalf("upsert favorite: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("expected username alice got %q", user.Username)
	}
	if len(user.Favorites) != 1 || user.Favorites[0] != "27205" {
		t.Fatalf("expected favorites [27205] got %v", user.Favorites)
	}

	user, err = repo.UpsertFavorite(ctx, "alice", "99999")
	if err != nil {
		t.Fatalf("upsert favorite: %v", err)
	}
	if len(user.Favorites) != 2 || user.Favorites[0] != "27205" || user.Favorites[1] != "99999" {
		t.Fatalf("expected favorites [27205 99999] got %v", user.Favorites)
	}

	count, err := db.Collection("users").CountDocuments(ctx, bson.M{"username": "alice"})
	if err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one user document got %d", count)
	}
}

func TestMongoUserRepository_ConcurrentUpserts(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	repo := NewMongoUserRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	ids := []string{"27205", "99999", "603", "550", "680"}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(movieID string) {
			defer wg.Done()
			if _, err := repo.UpsertFavorite(ctx, "alice", movieID); err != nil {
				t.Errorf("upsert %s: %v", movieID, err)
			}
		}(id)
	}
	wg.Wait()

	user, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if len(user.Favorites) != len(ids) {
		t.Fatalf("lost update: expected %d favorites got %v", len(ids), user.Favorites)
	}

	count, err := db.Collection("users").CountDocuments(ctx, bson.M{"username": "alice"})
	if err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one user document got %d", count)
	}
}

func TestMongoUserRepository_CreateAndFind(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	repo := NewMongoUserRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	user := models.User{
		Username:   "alice",
		Credential: "hashed-credential",
		Favorites:  []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := repo.Create(ctx, user); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict got %v", err)
	}

	found, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if found.Credential != "hashed-credential" {
		t.Fatalf("expected credential to round-trip got %q", found.Credential)
	}
	if found.Favorites == nil || len(found.Favorites) != 0 {
		t.Fatalf("expected empty favorites got %v", found.Favorites)
	}

	if _, err := repo.FindByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestMongoPosterRepository_Lifecycle(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	repo := NewMongoPosterRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	if err := repo.MarkPending(ctx, "27205"); err != nil {
		t.Fatalf("mark pending: %v", err)
	}

	archive, err := repo.FindByMovieID(ctx, "27205")
	if err != nil {
		t.Fatalf("find poster: %v", err)
	}
	if archive.Status != models.PosterStatusPending {
		t.Fatalf("expected pending got %+v", archive)
	}

	if err := repo.MarkReady(ctx, "27205", "https://cdn.example.com/posters/27205.jpg", 1024); err != nil {
		t.Fatalf("mark ready: %v", err)
	}

	// A later re-add must not regress a mirrored poster back to pending.
	if err := repo.MarkPending(ctx, "27205"); err != nil {
		t.Fatalf("mark pending after ready: %v", err)
	}

	archive, err = repo.FindByMovieID(ctx, "27205")
	if err != nil {
		t.Fatalf("find poster: %v", err)
	}
	if archive.Status != models.PosterStatusReady {
		t.Fatalf("expected ready got %+v", archive)
	}
	if archive.Location != "https://cdn.example.com/posters/27205.jpg" || archive.Size != 1024 {
		t.Fatalf("unexpected archive fields: %+v", archive)
	}

	if err := repo.MarkFailed(ctx, "99999"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	archive, err = repo.FindByMovieID(ctx, "99999")
	if err != nil {
		t.Fatalf("find poster: %v", err)
	}
	if archive.Status != models.PosterStatusFailed {
		t.Fatalf("expected failed got %+v", archive)
	}

	if _, err := repo.FindByMovieID(ctx, "0"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}
