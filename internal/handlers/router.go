package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes constructs the chi router containing all endpoints.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(logRequests)

	allowed := a.config.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))
	r.Use(httprate.Limit(100, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(a.withSession)

		r.Get("/", a.handleFeed)
		r.Get("/home", a.handleFeed)
		r.Get("/user/{username}", a.handleUserPosts)
		r.Get("/post/{postID}", a.handleGetPost)
		r.Get("/avatars/{file}", a.handleAvatar)

		r.Post("/register", redirectAuthenticated(a.handleRegister))
		r.Post("/login", redirectAuthenticated(a.handleLogin))
		r.Get("/logout", a.handleLogout)

		r.Get("/reset-password", redirectAuthenticated(a.handleResetForm))
		r.Post("/reset-password", redirectAuthenticated(a.handleResetRequest))
		r.Get("/reset-password/{token}", redirectAuthenticated(a.handleResetVerify))
		r.Post("/reset-password/{token}", redirectAuthenticated(a.handleResetConsume))

		r.Get("/account", requireUser(a.handleGetAccount))
		r.Post("/account", requireUser(a.handleUpdateAccount))

		r.Post("/post/new", requireUser(a.handleCreatePost))
		r.Post("/post/{postID}/update", requireUser(a.handleUpdatePost))
		r.Post("/post/{postID}/delete", requireUser(a.handleDeletePost))
	})

	return r
}
