package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brewlog/internal/httpkit"
	"brewlog/internal/repositories"
)

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.categories.List(ctx, intQuery(r, "depth", 0))
	if err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"categories": categories})
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	category, err := h.categories.GetBySlug(ctx, slug, intQuery(r, "depth", 1))
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			httpkit.WriteErr(w, 404, "CATEGORY_NOT_FOUND", "category not found", map[string]any{"slug": slug})
			return
		}
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"category": category})
}

func (h *Handler) ListCategoryPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	params := repositories.ListParams{
		Page:  intQuery(r, "page", 1),
		Limit: intQuery(r, "limit", 10),
		Depth: intQuery(r, "depth", 1),
	}

	posts, total, err := h.posts.ByCategory(ctx, slug, params)
	if err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{
		"posts":      posts,
		"pagination": pagination(params.Page, params.Limit, total),
	})
}
