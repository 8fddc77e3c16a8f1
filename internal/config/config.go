package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures the runtime configuration for the ScreenPick backend service.
type Config struct {
	AppPort     int
	DatabaseURL string
	Database    string
	LogLevel    string

	TMDBAPIKey       string
	TMDBBaseURL      string
	TMDBImageBaseURL string
	TMDBTimeout      time.Duration

	WriteRateLimit  int
	WriteRateWindow time.Duration
	WriteRateBurst  int

	ObjectStore    ObjectStoreConfig
	ArchiveQueue   int
	ArchiveWorkers int
}

// ObjectStoreConfig describes the S3-compatible bucket receiving mirrored
// poster artwork. Poster archiving is disabled when Bucket is empty.
type ObjectStoreConfig struct {
	Bucket        string
	Endpoint      string
	Region        string
	PublicBaseURL string
}

// Load reads configuration from environment variables, applying sensible defaults
// for local development while allowing overrides through environment variables.
func Load() (Config, error) {
	cfg := Config{
		AppPort:     getInt("SCREENPICK_PORT", 8080),
		DatabaseURL: getString("SCREENPICK_DATABASE_URL", "mongodb://localhost:27017"),
		Database:    getString("SCREENPICK_DATABASE", "screenpick"),
		LogLevel:    getString("SCREENPICK_LOG_LEVEL", "info"),

		TMDBAPIKey:       getString("SCREENPICK_TMDB_API_KEY", ""),
		TMDBBaseURL:      getString("SCREENPICK_TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBImageBaseURL: getString("SCREENPICK_TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p/w500"),
		TMDBTimeout:      getDuration("SCREENPICK_TMDB_TIMEOUT", 8*time.Second),

		WriteRateLimit:  getInt("SCREENPICK_WRITE_RATE_LIMIT", 60),
		WriteRateWindow: getDuration("SCREENPICK_WRITE_RATE_WINDOW", time.Minute),
		WriteRateBurst:  getInt("SCREENPICK_WRITE_RATE_BURST", 10),

		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("SCREENPICK_POSTERS_BUCKET", ""),
			Endpoint:      getString("SCREENPICK_POSTERS_ENDPOINT", ""),
			Region:        getString("SCREENPICK_POSTERS_REGION", "us-east-1"),
			PublicBaseURL: getString("SCREENPICK_POSTERS_PUBLIC_URL", ""),
		},
		ArchiveQueue:   getInt("SCREENPICK_ARCHIVE_QUEUE", 32),
		ArchiveWorkers: getInt("SCREENPICK_ARCHIVE_WORKERS", 2),
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
