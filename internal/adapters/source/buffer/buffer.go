package buffer

import (
	"context"
	"sync"

	"brewlog/internal/models"
	"brewlog/internal/ports"
)

// Reader implements ports.SourceReader over an in-process staging area, the
// mode for deployments with no durable local filesystem. The upload handler
// stages the request's bytes before invoking the create hook; Resolve is a
// one-shot take keyed by record id. A record whose bytes were never captured
// resolves to ErrSourceUnavailable and stays a backfill candidate.
type Reader struct {
	mu     sync.Mutex
	staged map[string][]byte
}

func New() *Reader {
	return &Reader{staged: make(map[string][]byte)}
}

func (r *Reader) Mode() string { return "buffer" }

func (r *Reader) Resolve(_ context.Context, m *models.Media) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.staged[m.ID]
	if !ok {
		return nil, ports.ErrSourceUnavailable
	}
	delete(r.staged, m.ID)
	return data, nil
}

func (r *Reader) Stage(m *models.Media, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged[m.ID] = data
	return nil
}
