package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	movies := MovieHandler{Movies: deps.Movies, Posters: deps.PosterArchives}
	users := UserHandler{
		Users:    deps.Users,
		Posters:  deps.PosterArchives,
		Archiver: deps.PosterArchiver,
		Limiter:  deps.WriteLimiter,
	}

	mux.HandleFunc("GET /healthz", health.Handle)
	mux.HandleFunc("GET /api/movies", movies.Search)
	mux.HandleFunc("GET /api/movies/{id}/poster", movies.Poster)
	mux.HandleFunc("GET /api/recommendations", movies.Recommendations)
	mux.HandleFunc("POST /api/users", users.Register)
	mux.HandleFunc("GET /api/users/{username}", users.Get)
	mux.HandleFunc("POST /api/users/{username}/favorites", users.AddFavorite)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users          UserStore
	Movies         MovieProvider
	PosterArchives PosterArchiveStore
	PosterArchiver PosterArchiver
	WriteLimiter   RateLimiter
}
