package metadata

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "inception" {
			t.Errorf("expected query=inception got %q", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("expected api key to be sent, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":27205,"title":"Inception","poster_path":"/abc.jpg"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "test-key", time.Second)

	movies, err := client.Search(context.Background(), "inception")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(movies) != 1 {
		t.Fatalf("expected 1 movie got %d", len(movies))
	}
	movie := movies[0]
	if movie.ID != 27205 || movie.Title != "Inception" || movie.PosterPath != "/abc.jpg" {
		t.Fatalf("result not passed through unchanged: %+v", movie)
	}
}

func TestClientSearchEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "test-key", time.Second)

	movies, err := client.Search(context.Background(), "zzzzz")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if movies == nil {
		t.Fatal("expected empty list, not nil")
	}
	if len(movies) != 0 {
		t.Fatalf("expected no movies got %d", len(movies))
	}
}

func TestClientPopular(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/popular" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"First"},{"id":2,"title":"Second"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "test-key", time.Second)

	movies, err := client.Popular(context.Background())
	if err != nil {
		t.Fatalf("popular: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies got %d", len(movies))
	}
}

func TestClientUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_message":"Invalid API key"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "bad-key", time.Second)

	_, err := client.Search(context.Background(), "inception")
	if err == nil {
		t.Fatal("expected error")
	}

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError got %T: %v", err, err)
	}
	if upstream.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401 got %d", upstream.StatusCode)
	}
	if upstream.Message != "Invalid API key" {
		t.Fatalf("expected upstream message got %q", upstream.Message)
	}
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "test-key", 20*time.Millisecond)

	_, err := client.Search(context.Background(), "inception")
	if err == nil {
		t.Fatal("expected timeout error")
	}

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError got %T: %v", err, err)
	}
}

func TestClientDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/27205" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":27205,"title":"Inception","poster_path":"/abc.jpg"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "test-key", time.Second)

	movie, err := client.Details(context.Background(), "27205")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if movie.ID != 27205 || movie.PosterPath != "/abc.jpg" {
		t.Fatalf("unexpected movie: %+v", movie)
	}
}

func TestClientPosterImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/abc.jpg" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("poster-bytes"))
	}))
	defer srv.Close()

	client := NewClient("https://api.example.com", srv.URL, "test-key", time.Second)

	body, size, err := client.PosterImage(context.Background(), "/abc.jpg")
	if err != nil {
		t.Fatalf("poster image: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read poster: %v", err)
	}
	if string(data) != "poster-bytes" {
		t.Fatalf("unexpected poster content %q", data)
	}
	if size != int64(len("poster-bytes")) {
		t.Fatalf("expected size %d got %d", len("poster-bytes"), size)
	}
}

func TestClientPosterImageMissing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := NewClient("https://api.example.com", srv.URL, "test-key", time.Second)

	_, _, err := client.PosterImage(context.Background(), "/missing.jpg")
	if err == nil {
		t.Fatal("expected error")
	}

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError got %T: %v", err, err)
	}
	if upstream.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", upstream.StatusCode)
	}
}
