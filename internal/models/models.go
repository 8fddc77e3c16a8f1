package models

import "time"

// User represents an account within the ScreenPick platform. Accounts are
// created implicitly the first time a favorite is added for an unknown
// username, or explicitly through registration (which sets a credential).
type User struct {
	Username   string    `bson:"username" json:"username"`
	Credential string    `bson:"credential,omitempty" json:"-"`
	Favorites  []string  `bson:"favorites" json:"favorites"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasCredential reports whether the account is protected by a credential.
func (u User) HasCredential() bool {
	return u.Credential != ""
}

// Movie mirrors the subset of the metadata provider's payload served to
// clients. Movies are never stored locally; every listing is fetched fresh
// from the provider.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path,omitempty"`
	Overview    string  `json:"overview,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
}

// PosterArchive records the outcome of mirroring a movie's poster image to
// object storage.
type PosterArchive struct {
	MovieID   string    `bson:"movie_id" json:"movieId"`
	Location  string    `bson:"location,omitempty" json:"location,omitempty"`
	Status    string    `bson:"status" json:"status"`
	Size      int64     `bson:"size,omitempty" json:"size,omitempty"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

const (
	PosterStatusPending = "pending"
	PosterStatusReady   = "ready"
	PosterStatusFailed  = "failed"
)
