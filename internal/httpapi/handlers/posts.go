package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"brewlog/internal/httpkit"
	"brewlog/internal/repositories"
)

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := repositories.ListParams{
		Page:   intQuery(r, "page", 1),
		Limit:  intQuery(r, "limit", 10),
		Search: r.URL.Query().Get("search"),
		Depth:  intQuery(r, "depth", 1),
	}

	posts, total, err := h.posts.List(ctx, params)
	if err != nil {
		h.log.FromContext(ctx).LogError(ctx, "post listing failed", err)
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{
		"posts":      posts,
		"pagination": pagination(params.Page, params.Limit, total),
	})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	post, err := h.posts.GetBySlug(ctx, slug, intQuery(r, "depth", 2))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			httpkit.WriteErr(w, 404, "POST_NOT_FOUND", "post not found", map[string]any{"slug": slug})
			return
		}
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"post": post})
}

func (h *Handler) ListFeaturedPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := h.posts.Featured(ctx, intQuery(r, "limit", 3))
	if err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"posts": posts})
}

// ListRecentPosts returns the newest posts, optionally excluding the slug
// being read so a post page can suggest other reads.
func (h *Handler) ListRecentPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := h.posts.Recent(ctx, intQuery(r, "limit", 3), r.URL.Query().Get("exclude"))
	if err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"posts": posts})
}

func (h *Handler) IncrementPostViews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	if err := h.posts.IncrementViews(ctx, slug); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			httpkit.WriteErr(w, 404, "POST_NOT_FOUND", "post not found", map[string]any{"slug": slug})
			return
		}
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db update failed", nil)
		return
	}

	w.WriteHeader(204)
}

func pagination(page, limit, total int) map[string]any {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return map[string]any{
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": totalPages,
	}
}

func intQuery(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
