package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"brewlog/internal/httpapi/handlers"
	"brewlog/internal/httpapi/util"
	"brewlog/internal/httpkit"
	"brewlog/internal/mediasync"
	"brewlog/internal/pkg/logger"
	"brewlog/internal/pkg/middleware"
	"brewlog/internal/ports"
	"brewlog/internal/repositories"
)

type Deps struct {
	Pool    *pgxpool.Pool
	RDB     *redis.Client
	Gateway ports.MediaGateway
	Source  ports.SourceReader
	Orch    *mediasync.Orchestrator
	Log     *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(d.Log))
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.Timeout(60 * time.Second))

	allowedOrigins := envCSV("CORS_ALLOWED_ORIGINS", []string{
		"http://localhost:3000",
		"http://localhost:5173",
	})
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAgeSeconds:    600,
	}))

	media := repositories.NewMediaRepository(d.Pool)
	posts := repositories.NewPostRepository(d.Pool, media)
	categories := repositories.NewCategoryRepository(d.Pool, media)
	globals := repositories.NewGlobalRepository(d.Pool)

	h := handlers.New(handlers.Deps{
		Pool:       d.Pool,
		RDB:        d.RDB,
		Gateway:    d.Gateway,
		Source:     d.Source,
		Orch:       d.Orch,
		Media:      media,
		Posts:      posts,
		Categories: categories,
		Globals:    globals,
		Log:        d.Log,
	})

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	// ---- MEDIA ----
	r.Post("/media", h.PostMedia)
	r.Get("/media", h.ListMedia)
	r.Get("/media/{mediaId}", h.GetMedia)
	r.Get("/media/{mediaId}/urls", h.GetMediaURLs)
	r.Delete("/media/{mediaId}", h.DeleteMedia)

	// ---- POSTS ----
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/featured", h.ListFeaturedPosts)
	r.Get("/posts/recent", h.ListRecentPosts)
	r.Get("/posts/{slug}", h.GetPost)
	r.Post("/posts/{slug}/views", h.IncrementPostViews)

	// ---- CATEGORIES ----
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{slug}", h.GetCategory)
	r.Get("/categories/{slug}/posts", h.ListCategoryPosts)

	// ---- GLOBALS ----
	r.Get("/globals/{slug}", h.GetGlobal)
	r.Put("/globals/{slug}", h.PutGlobal)

	return r
}

func envCSV(key string, def []string) []string {
	raw := util.Env(key, "")
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
