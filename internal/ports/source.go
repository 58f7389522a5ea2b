package ports

import (
	"context"
	"errors"

	"brewlog/internal/models"
)

// ErrSourceUnavailable means the record's underlying bytes could not be
// located. It is a hard stop for that record's sync attempt, never papered
// over with placeholder content.
var ErrSourceUnavailable = errors.New("media source unavailable")

// SourceReader resolves a media record's byte payload. Implementations
// (localfs, buffer) are selected once at startup by deployment mode.
type SourceReader interface {
	Mode() string
	Resolve(ctx context.Context, m *models.Media) ([]byte, error)
}

// SourceStager accepts the in-flight bytes of a freshly uploaded file so the
// matching SourceReader can resolve them during the create hook.
type SourceStager interface {
	Stage(m *models.Media, data []byte) error
}
