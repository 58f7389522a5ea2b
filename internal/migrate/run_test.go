package migrate

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"brewlog/internal/models"
	"brewlog/internal/pkg/logger"
)

type stubStore struct {
	records []models.Media
	err     error
}

func (s *stubStore) FindUnsynced(context.Context) ([]models.Media, error) {
	return s.records, s.err
}

type stubBackfiller struct {
	calls   []string
	failIDs map[string]bool
	skipIDs map[string]bool
}

func (b *stubBackfiller) Backfill(_ context.Context, m *models.Media) error {
	b.calls = append(b.calls, m.ID)
	if b.failIDs[m.ID] {
		return fmt.Errorf("upload rejected")
	}
	if b.skipIDs[m.ID] {
		return nil
	}
	m.RemoteURL = "https://cdn.test/" + m.ID
	m.RemotePublicID = "payload-media/" + m.ID
	return nil
}

func testLog(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Config{Level: "debug", Format: "json", Output: buf})
}

func TestRunBackfillsEveryUnsyncedRecord(t *testing.T) {
	store := &stubStore{records: []models.Media{
		{ID: "med_1", Filename: "a.jpg"},
		{ID: "med_2", Filename: "b.png"},
		{ID: "med_3", Filename: "c.webp"},
	}}
	bf := &stubBackfiller{}
	var buf bytes.Buffer

	sum, err := Run(context.Background(), Deps{
		Store:      store,
		Backfiller: bf,
		Log:        testLog(&buf),
		Delay:      -1,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(bf.calls) != 3 {
		t.Fatalf("expected 3 backfill attempts, got %d", len(bf.calls))
	}
	if sum.Total != 3 || sum.Synced != 3 || sum.Failed != 0 || sum.Skipped != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	store := &stubStore{records: []models.Media{
		{ID: "med_1", Filename: "a.jpg"},
		{ID: "med_2", Filename: "b.png"},
		{ID: "med_3", Filename: "c.webp"},
	}}
	bf := &stubBackfiller{failIDs: map[string]bool{"med_2": true}}
	var buf bytes.Buffer

	sum, err := Run(context.Background(), Deps{
		Store:      store,
		Backfiller: bf,
		Log:        testLog(&buf),
		Delay:      -1,
	})
	if err != nil {
		t.Fatalf("a failing record must not abort the run, got: %v", err)
	}

	if len(bf.calls) != 3 {
		t.Fatalf("expected all 3 records attempted, got %d", len(bf.calls))
	}
	if sum.Synced != 2 || sum.Failed != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if !strings.Contains(buf.String(), "backfill failed, continuing") {
		t.Error("expected per-record failure to be logged")
	}
}

func TestRunCountsDeclinedRecordsAsSkipped(t *testing.T) {
	store := &stubStore{records: []models.Media{
		{ID: "med_1", Filename: "a.jpg"},
		{ID: "med_2"},
	}}
	bf := &stubBackfiller{skipIDs: map[string]bool{"med_2": true}}

	var buf bytes.Buffer
	sum, err := Run(context.Background(), Deps{
		Store:      store,
		Backfiller: bf,
		Log:        testLog(&buf),
		Delay:      -1,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if sum.Synced != 1 || sum.Skipped != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestRunEmptySet(t *testing.T) {
	var buf bytes.Buffer
	sum, err := Run(context.Background(), Deps{
		Store:      &stubStore{},
		Backfiller: &stubBackfiller{},
		Log:        testLog(&buf),
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if sum.Total != 0 {
		t.Errorf("expected empty summary, got %+v", sum)
	}
}

func TestRunListFailure(t *testing.T) {
	var buf bytes.Buffer
	_, err := Run(context.Background(), Deps{
		Store:      &stubStore{err: fmt.Errorf("pool closed")},
		Backfiller: &stubBackfiller{},
		Log:        testLog(&buf),
	})
	if err == nil {
		t.Fatal("expected listing failure to surface")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &stubStore{records: []models.Media{
		{ID: "med_1", Filename: "a.jpg"},
	}}
	bf := &stubBackfiller{}
	var buf bytes.Buffer

	_, err := Run(ctx, Deps{
		Store:      store,
		Backfiller: bf,
		Log:        testLog(&buf),
		Delay:      -1,
	})
	if err == nil {
		t.Fatal("expected cancellation to surface")
	}
	if len(bf.calls) != 0 {
		t.Errorf("expected no attempts after cancellation, got %d", len(bf.calls))
	}
}
