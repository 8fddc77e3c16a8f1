package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/screenpick/backend/internal/models"
)

// Client calls a TMDB-compatible metadata API over HTTPS. Every listing is a
// fresh network round trip: no retries, no backoff, no caching.
type Client struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string
	HTTPClient   *http.Client
}

// NewClient constructs a metadata client for the provided API endpoint.
func NewClient(baseURL, imageBaseURL, apiKey string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	if strings.TrimSpace(imageBaseURL) == "" {
		imageBaseURL = "https://image.tmdb.org/t/p/w500"
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
		ImageBaseURL: strings.TrimSuffix(imageBaseURL, "/"),
		APIKey:       apiKey,
		HTTPClient:   &http.Client{Timeout: timeout},
	}
}

// Search returns the provider's result list for the supplied query verbatim.
// The query is not validated locally; provider semantics apply.
func (c *Client) Search(ctx context.Context, query string) ([]models.Movie, error) {
	return c.listing(ctx, "/search/movie", url.Values{"query": []string{query}})
}

// Popular returns the provider's "currently popular" listing. There is no
// personalization; the output never depends on stored favorites.
func (c *Client) Popular(ctx context.Context) ([]models.Movie, error) {
	return c.listing(ctx, "/movie/popular", nil)
}

// Details resolves a single movie by its provider identifier.
func (c *Client) Details(ctx context.Context, movieID string) (models.Movie, error) {
	if c == nil {
		return models.Movie{}, ErrProviderUnavailable
	}

	body, err := c.get(ctx, "/movie/"+url.PathEscape(movieID), nil)
	if err != nil {
		return models.Movie{}, err
	}
	defer body.Close()

	var movie models.Movie
	if err := json.NewDecoder(body).Decode(&movie); err != nil {
		return models.Movie{}, fmt.Errorf("parse movie details: %w", err)
	}
	return movie, nil
}

// PosterImage streams poster artwork from the provider's image CDN. The
// returned size is -1 when the CDN does not announce a content length.
func (c *Client) PosterImage(ctx context.Context, posterPath string) (io.ReadCloser, int64, error) {
	if c == nil {
		return nil, 0, ErrProviderUnavailable
	}
	if strings.TrimSpace(posterPath) == "" {
		return nil, 0, fmt.Errorf("poster path is empty")
	}
	if !strings.HasPrefix(posterPath, "/") {
		posterPath = "/" + posterPath
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ImageBaseURL+posterPath, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build poster request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, 0, &UpstreamError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, 0, &UpstreamError{StatusCode: resp.StatusCode}
	}

	return resp.Body, resp.ContentLength, nil
}

func (c *Client) listing(ctx context.Context, path string, params url.Values) ([]models.Movie, error) {
	if c == nil {
		return nil, ErrProviderUnavailable
	}

	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var payload struct {
		Results []models.Movie `json:"results"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse provider response: %w", err)
	}

	if payload.Results == nil {
		payload.Results = []models.Movie{}
	}
	return payload.Results, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := readStatusMessage(resp.Body)
		resp.Body.Close()
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: message}
	}

	return resp.Body, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// readStatusMessage extracts the provider's status_message from an error
// body, tolerating bodies that are not JSON.
func readStatusMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}

	var payload struct {
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.StatusMessage
}
