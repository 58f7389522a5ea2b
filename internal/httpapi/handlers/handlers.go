package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"brewlog/internal/mediasync"
	"brewlog/internal/pkg/logger"
	"brewlog/internal/ports"
	"brewlog/internal/repositories"
)

type Deps struct {
	Pool       *pgxpool.Pool
	RDB        *redis.Client
	Gateway    ports.MediaGateway
	Source     ports.SourceReader
	Orch       *mediasync.Orchestrator
	Media      *repositories.MediaRepository
	Posts      *repositories.PostRepository
	Categories *repositories.CategoryRepository
	Globals    *repositories.GlobalRepository
	Log        *logger.Logger
}

type Handler struct {
	pool       *pgxpool.Pool
	rdb        *redis.Client
	gw         ports.MediaGateway
	src        ports.SourceReader
	orch       *mediasync.Orchestrator
	media      *repositories.MediaRepository
	posts      *repositories.PostRepository
	categories *repositories.CategoryRepository
	globals    *repositories.GlobalRepository
	log        *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Handler{
		pool:       d.Pool,
		rdb:        d.RDB,
		gw:         d.Gateway,
		src:        d.Source,
		orch:       d.Orch,
		media:      d.Media,
		posts:      d.Posts,
		categories: d.Categories,
		globals:    d.Globals,
		log:        log.WithComponent("httpapi"),
	}
}
