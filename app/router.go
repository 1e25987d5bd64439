package app

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Black-And-White-Club/photoshare/app/graph"
	"github.com/Black-And-White-Club/photoshare/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const (
	graphqlPath    = "/graphql"
	playgroundPath = "/playground"
	photosPath     = "/img/photos/"
	oauthStateName = "oauth_state"
)

// RouterDeps are the handlers and settings the HTTP router is built from.
type RouterDeps struct {
	Config     config.HTTPConfig
	Logger     *slog.Logger
	Registry   *prometheus.Registry
	GraphQL    http.Handler
	PhotosDir  string
	GitHubAuth func(state string) string
}

// NewRouter builds the API's HTTP routes.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware(deps.Config.AllowedOrigins))
	if deps.Config.RateLimit > 0 {
		r.Use(RateLimitMiddleware(NewIPRateLimiter(rate.Limit(deps.Config.RateLimit), deps.Config.RateBurst)))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Welcome to the PhotoShare API!"))
	})

	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))
	}

	r.Group(func(r chi.Router) {
		r.Use(TimeoutMiddleware(deps.Config.RequestTimeout))

		r.Handle(graphqlPath, deps.GraphQL)
		r.Get(playgroundPath, graph.PlaygroundHandler(graphqlPath, subscriptionURL(deps.Config.PublicURL), deps.Logger))
		if deps.PhotosDir != "" {
			r.Handle(photosPath+"*", http.StripPrefix(photosPath, http.FileServer(http.Dir(deps.PhotosDir))))
		}
		if deps.GitHubAuth != nil {
			r.Get("/auth/github", githubLogin(deps.GitHubAuth))
		}
	})

	return r
}

// subscriptionURL derives the websocket endpoint advertised to the playground.
func subscriptionURL(publicURL string) string {
	switch {
	case strings.HasPrefix(publicURL, "https://"):
		return "wss://" + strings.TrimPrefix(publicURL, "https://") + graphqlPath
	case strings.HasPrefix(publicURL, "http://"):
		return "ws://" + strings.TrimPrefix(publicURL, "http://") + graphqlPath
	}
	return graphqlPath
}

// githubLogin redirects the browser to GitHub's consent page. The callback
// hands the returned code to the githubAuth mutation.
func githubLogin(authURL func(state string) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			http.Error(w, "failed to start login", http.StatusInternalServerError)
			return
		}
		state := hex.EncodeToString(buf)
		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateName,
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(10 * time.Minute),
		})
		http.Redirect(w, r, authURL(state), http.StatusFound)
	}
}
