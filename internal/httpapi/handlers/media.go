package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"brewlog/internal/httpapi/util"
	"brewlog/internal/httpkit"
	"brewlog/internal/models"
	"brewlog/internal/ports"
	"brewlog/internal/repositories"
)

// responsiveVariants are the named renditions exposed by GetMediaURLs.
var responsiveVariants = map[string]ports.Transformation{
	"thumbnail": {Width: 400, Height: 300, Crop: "fill"},
	"card":      {Width: 400, Height: 600, Crop: "fill"},
	"tablet":    {Width: 1024},
	"full":      {},
}

func (h *Handler) PostMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "file is required", map[string]any{"field": "file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "could not read file", nil)
		return
	}

	filename := filepath.Base(strings.TrimSpace(header.Filename))
	if filename == "" || filename == "." {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "filename is required", map[string]any{"field": "file"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	m := &models.Media{
		ID:        util.NewID("med"),
		Alt:       strings.TrimSpace(r.FormValue("alt")),
		Filename:  filename,
		MimeType:  contentType,
		SizeBytes: int64(len(data)),
	}

	if err := h.media.Create(ctx, m); err != nil {
		if errors.Is(err, repositories.ErrMediaFilenameExists) {
			httpkit.WriteErr(w, 409, "MEDIA_FILENAME_EXISTS", "filename already exists",
				map[string]any{"filename": filename})
			return
		}
		log.LogError(ctx, "media insert failed", err)
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db insert media failed", nil)
		return
	}

	// Hand the bytes to the source layer so the sync can resolve them, then
	// kick the upload. The record is committed either way: a sync failure
	// leaves it unsynced for backfill, never rolls the create back.
	if stager, ok := h.src.(ports.SourceStager); ok {
		if err := stager.Stage(m, data); err != nil {
			log.LogError(ctx, "staging media bytes failed", err, "media_id", m.ID)
		}
	}
	if err := h.orch.OnCreate(ctx, m); err != nil {
		log.LogError(ctx, "media sync failed after create", err, "media_id", m.ID)
	}

	httpkit.WriteJSON(w, 201, map[string]any{"media": m})
}

func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mediaID := chi.URLParam(r, "mediaId")

	m, err := h.media.GetByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repositories.ErrMediaNotFound) {
			httpkit.WriteErr(w, 404, "MEDIA_NOT_FOUND", "media not found", map[string]any{"media_id": mediaID})
			return
		}
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"media": m})
}

func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := repositories.SyncAny
	switch r.URL.Query().Get("sync") {
	case "synced":
		filter = repositories.SyncedOnly
	case "unsynced":
		filter = repositories.UnsyncedOnly
	case "":
	default:
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "sync must be 'synced' or 'unsynced'",
			map[string]any{"field": "sync"})
		return
	}

	list, err := h.media.List(ctx, filter)
	if err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{
		"media": list,
		"total": len(list),
	})
}

func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mediaID := chi.URLParam(r, "mediaId")

	m, err := h.media.Delete(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repositories.ErrMediaNotFound) {
			httpkit.WriteErr(w, 404, "MEDIA_NOT_FOUND", "media not found", map[string]any{"media_id": mediaID})
			return
		}
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db delete failed", nil)
		return
	}

	// Record is gone; remote cleanup is best-effort.
	h.orch.OnDelete(ctx, m)

	w.WriteHeader(204)
}

// GetMediaURLs returns the named responsive renditions for a synced record.
func (h *Handler) GetMediaURLs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mediaID := chi.URLParam(r, "mediaId")

	m, err := h.media.GetByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repositories.ErrMediaNotFound) {
			httpkit.WriteErr(w, 404, "MEDIA_NOT_FOUND", "media not found", map[string]any{"media_id": mediaID})
			return
		}
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	if !m.Synced() {
		httpkit.WriteErr(w, 409, "MEDIA_NOT_SYNCED", "media has no remote asset yet",
			map[string]any{"media_id": mediaID})
		return
	}

	urls := make(map[string]string, len(responsiveVariants))
	for name, t := range responsiveVariants {
		if name == "full" {
			urls[name] = h.gw.BuildURL(m.RemotePublicID)
			continue
		}
		urls[name] = h.gw.BuildURL(m.RemotePublicID, t)
	}

	httpkit.WriteJSON(w, 200, map[string]any{
		"media_id": m.ID,
		"urls":     urls,
	})
}
