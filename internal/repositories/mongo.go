package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/screenpick/backend/internal/models"
)

var (
	_ UserRepository   = (*MongoUserRepository)(nil)
	_ PosterRepository = (*MongoPosterRepository)(nil)
)

// MongoUserRepository provides MongoDB-backed persistence for users. The
// users collection carries a unique index on username; EnsureIndexes must be
// called before the first write.
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository constructs a user repository backed by MongoDB.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: db.Collection("users")}
}

// EnsureIndexes creates the unique username index.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return storeErr("ensure indexes", err)
	}
	return nil
}

// UpsertFavorite appends movieID to the user's favorites, inserting the user
// document when absent. Atomicity rests on MongoDB's single-document
// findAndModify: two concurrent adds for the same username both land.
func (r *MongoUserRepository) UpsertFavorite(ctx context.Context, username, movieID string) (models.User, error) {
	now := time.Now().UTC()

	filter := bson.M{"username": username}
	update := bson.M{
		"$push":        bson.M{"favorites": movieID},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user models.User
	if err := r.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return models.User{}, storeErr("upsert favorite", err)
	}

	return user, nil
}

// Create inserts a new user record.
func (r *MongoUserRepository) Create(ctx context.Context, user models.User) error {
	doc := bson.M{
		"username":   user.Username,
		"favorites":  favoritesOrEmpty(user.Favorites),
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	}
	if user.Credential != "" {
		doc["credential"] = user.Credential
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return storeErr("insert user", err)
	}
	return nil
}

// FindByUsername fetches a user by their unique username.
func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, storeErr("select user", err)
	}
	return user, nil
}

// MongoPosterRepository provides MongoDB-backed bookkeeping for mirrored
// poster artwork, keyed by movie identifier.
type MongoPosterRepository struct {
	posters *mongo.Collection
}

// NewMongoPosterRepository constructs a poster repository backed by MongoDB.
func NewMongoPosterRepository(db *mongo.Database) *MongoPosterRepository {
	return &MongoPosterRepository{posters: db.Collection("posters")}
}

// EnsureIndexes creates the unique movie_id index.
func (r *MongoPosterRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.posters.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "movie_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return storeErr("ensure indexes", err)
	}
	return nil
}

// MarkPending records that a poster archive has been scheduled. Existing
// ready entries are left untouched so a re-add never regresses a mirrored
// poster.
func (r *MongoPosterRepository) MarkPending(ctx context.Context, movieID string) error {
	filter := bson.M{
		"movie_id": movieID,
		"status":   bson.M{"$ne": models.PosterStatusReady},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     models.PosterStatusPending,
			"updated_at": time.Now().UTC(),
		},
	}

	// A ready document fails the filter, so the upsert attempts a duplicate
	// insert; the unique movie_id index rejects it and the entry stays ready.
	_, err := r.posters.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return storeErr("mark poster pending", err)
	}
	return nil
}

// MarkReady records the object storage location of a mirrored poster.
func (r *MongoPosterRepository) MarkReady(ctx context.Context, movieID, location string, size int64) error {
	update := bson.M{
		"$set": bson.M{
			"status":     models.PosterStatusReady,
			"location":   location,
			"size":       size,
			"updated_at": time.Now().UTC(),
		},
	}
	_, err := r.posters.UpdateOne(ctx, bson.M{"movie_id": movieID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return storeErr("mark poster ready", err)
	}
	return nil
}

// MarkFailed records a failed archive attempt.
func (r *MongoPosterRepository) MarkFailed(ctx context.Context, movieID string) error {
	update := bson.M{
		"$set": bson.M{
			"status":     models.PosterStatusFailed,
			"updated_at": time.Now().UTC(),
		},
	}
	_, err := r.posters.UpdateOne(ctx, bson.M{"movie_id": movieID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return storeErr("mark poster failed", err)
	}
	return nil
}

// FindByMovieID fetches the archive record for a movie.
func (r *MongoPosterRepository) FindByMovieID(ctx context.Context, movieID string) (models.PosterArchive, error) {
	var archive models.PosterArchive
	err := r.posters.FindOne(ctx, bson.M{"movie_id": movieID}).Decode(&archive)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.PosterArchive{}, ErrNotFound
		}
		return models.PosterArchive{}, storeErr("select poster", err)
	}
	return archive, nil
}

func favoritesOrEmpty(favorites []string) []string {
	if favorites == nil {
		return []string{}
	}
	return favorites
}
