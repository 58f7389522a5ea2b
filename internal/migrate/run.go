// Package migrate drives the one-shot backfill of media records that have no
// remote asset yet. It walks the unsynced set sequentially with a small delay
// between records so the remote API is never hammered.
package migrate

import (
	"context"
	"time"

	"brewlog/internal/models"
	"brewlog/internal/pkg/logger"
)

// DefaultDelay is the pause between records.
const DefaultDelay = 100 * time.Millisecond

// Backfiller syncs a single unsynced record. Satisfied by
// mediasync.Orchestrator.
type Backfiller interface {
	Backfill(ctx context.Context, m *models.Media) error
}

// Store is the slice of the record store the driver needs.
type Store interface {
	FindUnsynced(ctx context.Context) ([]models.Media, error)
}

type Deps struct {
	Store      Store
	Backfiller Backfiller
	Log        *logger.Logger
	// Delay is the pause between records. Defaults to DefaultDelay; a
	// negative value disables it.
	Delay time.Duration
}

// Summary is the outcome of one migration run. Failed and Skipped records
// stay unsynced and are picked up by the next run.
type Summary struct {
	Total   int
	Synced  int
	Skipped int
	Failed  int
}

// Run finds every unsynced record and backfills each in turn. A failing
// record is logged and skipped, never aborts the run; only listing the
// unsynced set or context cancellation can end it early.
func Run(ctx context.Context, d Deps) (Summary, error) {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("migrate")

	delay := d.Delay
	if delay == 0 {
		delay = DefaultDelay
	}

	records, err := d.Store.FindUnsynced(ctx)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Total: len(records)}
	log.Info("migration started", "unsynced", sum.Total)

	for i := range records {
		if err := ctx.Err(); err != nil {
			log.Warn("migration interrupted", "processed", i, "total", sum.Total)
			return sum, err
		}

		m := &records[i]
		rlog := log.WithMediaID(m.ID).WithFields(map[string]any{"filename": m.Filename})

		if err := d.Backfiller.Backfill(ctx, m); err != nil {
			sum.Failed++
			rlog.Error("backfill failed, continuing", "error", err.Error())
		} else if m.Synced() {
			sum.Synced++
			rlog.Info("record migrated", "remote_public_id", m.RemotePublicID)
		} else {
			// Backfill declined without error: no filename or no source
			// bytes. The reason is already logged at the skip site.
			sum.Skipped++
		}

		if delay > 0 && i < len(records)-1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				log.Warn("migration interrupted", "processed", i+1, "total", sum.Total)
				return sum, ctx.Err()
			}
		}
	}

	log.Info("migration finished",
		"total", sum.Total,
		"synced", sum.Synced,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
	)
	return sum, nil
}
