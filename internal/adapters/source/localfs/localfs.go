package localfs

import (
	"context"
	"os"
	"path/filepath"

	"brewlog/internal/models"
	"brewlog/internal/ports"
)

// Reader implements ports.SourceReader over a local media directory, the
// mode used when the process and the upload directory share a filesystem.
type Reader struct {
	root string
}

func New(root string) *Reader {
	return &Reader{root: root}
}

func (r *Reader) Mode() string { return "localfs" }

func (r *Reader) Resolve(_ context.Context, m *models.Media) ([]byte, error) {
	if m.Filename == "" {
		return nil, ports.ErrSourceUnavailable
	}

	p := filepath.Join(r.root, filepath.FromSlash(m.Filename))
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.ErrSourceUnavailable
		}
		return nil, err
	}
	return data, nil
}

// Stage writes the uploaded bytes under the media root so a later Resolve
// (create hook or backfill) can find them.
func (r *Reader) Stage(m *models.Media, data []byte) error {
	dst := filepath.Join(r.root, filepath.FromSlash(m.Filename))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
