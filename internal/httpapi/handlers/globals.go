package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"brewlog/internal/httpkit"
	"brewlog/internal/models"
	"brewlog/internal/repositories"
)

const (
	globalCachePrefix = "brewlog:cache:global:"
	globalCacheTTL    = time.Hour
)

// GetGlobal serves a singleton content document. The homepage document is
// read-through cached in Redis; a cache outage degrades to direct reads.
func (h *Handler) GetGlobal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")
	log := h.log.FromContext(ctx)

	cacheKey := globalCachePrefix + slug
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var g models.Global
		if json.Unmarshal(cached, &g) == nil {
			httpkit.WriteJSON(w, 200, map[string]any{"global": g, "cached": true})
			return
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Warn("global cache read failed", "slug", slug, "error", err.Error())
	}

	g, err := h.globals.Get(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrGlobalNotFound) {
			httpkit.WriteErr(w, 404, "GLOBAL_NOT_FOUND", "global not found", map[string]any{"slug": slug})
			return
		}
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	if raw, err := json.Marshal(g); err == nil {
		if err := h.rdb.Set(ctx, cacheKey, raw, globalCacheTTL).Err(); err != nil {
			log.Warn("global cache write failed", "slug", slug, "error", err.Error())
		}
	}

	httpkit.WriteJSON(w, 200, map[string]any{"global": g, "cached": false})
}

// PutGlobal upserts a singleton document and drops its cache entry.
func (h *Handler) PutGlobal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if err := httpkit.DecodeJSON(r, &body); err != nil || len(body.Data) == 0 {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "data is required", map[string]any{"field": "data"})
		return
	}

	g := &models.Global{Slug: slug, Data: body.Data}
	if err := h.globals.Upsert(ctx, g); err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db upsert failed", nil)
		return
	}

	if err := h.rdb.Del(ctx, globalCachePrefix+slug).Err(); err != nil {
		h.log.FromContext(ctx).Warn("global cache invalidation failed", "slug", slug, "error", err.Error())
	}

	httpkit.WriteJSON(w, 200, map[string]any{"global": g})
}
