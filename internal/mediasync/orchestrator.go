// Package mediasync reconciles media records against the remote gateway:
// upload on create, delete on delete, and a backfill path for records that
// predate the sync or whose earlier attempt failed.
package mediasync

import (
	"context"
	"time"

	"brewlog/internal/models"
	"brewlog/internal/pkg/errors"
	"brewlog/internal/pkg/logger"
	"brewlog/internal/ports"
)

// DefaultFolder is the remote namespace media uploads land in.
const DefaultFolder = "payload-media"

// Store is the slice of the record store the orchestrator needs. The
// orchestrator keeps no state of its own; the store owns the record, the
// gateway owns the bytes.
type Store interface {
	GetByID(ctx context.Context, id string) (*models.Media, error)
	// UpdateRemoteFields patches only remote_url and remote_public_id.
	UpdateRemoteFields(ctx context.Context, id, url, publicID string) error
}

type Deps struct {
	Gateway ports.MediaGateway
	Source  ports.SourceReader
	Store   Store
	Locks   Locker
	Log     *logger.Logger
	// Folder is the remote upload namespace. Defaults to DefaultFolder.
	Folder string
	// CallTimeout bounds each gateway call. Zero means no bound.
	CallTimeout time.Duration
}

type Orchestrator struct {
	gw      ports.MediaGateway
	src     ports.SourceReader
	store   Store
	locks   Locker
	log     *logger.Logger
	folder  string
	timeout time.Duration
}

func New(d Deps) *Orchestrator {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	folder := d.Folder
	if folder == "" {
		folder = DefaultFolder
	}
	locks := d.Locks
	if locks == nil {
		locks = NewKeyedLocker()
	}
	return &Orchestrator{
		gw:      d.Gateway,
		src:     d.Source,
		store:   d.Store,
		locks:   locks,
		log:     log.WithComponent("mediasync"),
		folder:  folder,
		timeout: d.CallTimeout,
	}
}

// OnCreate runs after a media record is committed. A record without a
// filename, or whose source bytes cannot be resolved, is left unsynced for a
// later backfill pass; that is a logged skip, not an error. Upload and
// write-back failures are returned so callers can observe them, but the
// record's own creation has already committed and must not be rolled back.
func (o *Orchestrator) OnCreate(ctx context.Context, m *models.Media) error {
	if m.Filename == "" {
		return nil
	}
	return o.sync(ctx, m, false)
}

// Backfill is OnCreate for records created in a prior process lifetime,
// plus a verification re-read confirming the remote fields persisted.
func (o *Orchestrator) Backfill(ctx context.Context, m *models.Media) error {
	if m.Filename == "" {
		o.log.WithMediaID(m.ID).Warn("no filename, skipping")
		return nil
	}
	return o.sync(ctx, m, true)
}

func (o *Orchestrator) sync(ctx context.Context, m *models.Media, verify bool) error {
	log := o.log.WithMediaID(m.ID).WithFields(map[string]any{"filename": m.Filename})

	if m.Synced() {
		return nil
	}

	unlock, ok := o.locks.TryLock(ctx, m.ID)
	if !ok {
		log.Warn("sync already in progress, skipping")
		return nil
	}
	defer unlock()

	data, err := o.src.Resolve(ctx, m)
	if err != nil {
		// Missing source bytes are not fatal: the record stays unsynced
		// and remains a backfill candidate.
		if errors.Is(err, ports.ErrSourceUnavailable) {
			log.Warn("source unavailable, record left unsynced", "mode", o.src.Mode())
		} else {
			log.Error("source resolve failed, record left unsynced", "error", err.Error())
		}
		return nil
	}

	upCtx, cancel := o.callContext(ctx)
	out, err := o.gw.Upload(upCtx, ports.UploadInput{
		Data:     data,
		Filename: m.Filename,
		Folder:   o.folder,
	})
	cancel()
	if err != nil {
		uploadErr := errors.UploadFailed(err, "mediasync.sync").
			WithField("media_id", m.ID).
			WithField("filename", m.Filename)
		log.Error("remote upload failed", "error", err.Error(), "provider", o.gw.Provider())
		return uploadErr
	}

	if err := o.store.UpdateRemoteFields(ctx, m.ID, out.URL, out.PublicID); err != nil {
		// Worst case: the remote asset exists with no record of it. The
		// backfill pass retries; overwrite-by-derived-key makes the
		// re-upload safe on providers that support it.
		wbErr := errors.WriteBackFailed(err, "mediasync.sync").
			WithField("media_id", m.ID).
			WithField("remote_public_id", out.PublicID)
		log.Error("write-back failed, remote asset orphaned until backfill",
			"error", err.Error(),
			"remote_public_id", out.PublicID,
		)
		return wbErr
	}

	if verify {
		got, err := o.store.GetByID(ctx, m.ID)
		if err != nil {
			return errors.WriteBackFailed(err, "mediasync.verify").
				WithField("media_id", m.ID)
		}
		if got.RemoteURL != out.URL || got.RemotePublicID != out.PublicID {
			return errors.New(errors.CodeWriteBackFailed, "remote fields did not persist").
				WithField("media_id", m.ID)
		}
	}

	m.RemoteURL = out.URL
	m.RemotePublicID = out.PublicID

	log.Info("media synced",
		"remote_url", out.URL,
		"remote_public_id", out.PublicID,
		"provider", o.gw.Provider(),
	)
	return nil
}

// OnDelete runs after a media record is deleted. The record deletion has
// already committed, so remote cleanup is best-effort: failures are logged
// and never propagated.
func (o *Orchestrator) OnDelete(ctx context.Context, m *models.Media) {
	if m.RemotePublicID == "" {
		return
	}
	log := o.log.WithMediaID(m.ID)

	delCtx, cancel := o.callContext(ctx)
	defer cancel()

	err := o.gw.Delete(delCtx, m.RemotePublicID)
	switch {
	case err == nil:
		log.Info("remote asset deleted", "remote_public_id", m.RemotePublicID)
	case errors.Is(err, ports.ErrRemoteNotFound):
		log.Info("remote asset already absent", "remote_public_id", m.RemotePublicID)
	default:
		log.Error("remote delete failed, asset orphaned",
			"remote_public_id", m.RemotePublicID,
			"error", err.Error(),
		)
	}
}

func (o *Orchestrator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.timeout)
}
