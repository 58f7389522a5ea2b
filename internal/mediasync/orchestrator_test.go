package mediasync

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"brewlog/internal/models"
	"brewlog/internal/pkg/errors"
	"brewlog/internal/pkg/logger"
	"brewlog/internal/ports"
)

type fakeGateway struct {
	uploads   []ports.UploadInput
	deletes   []string
	uploadErr error
	deleteErr error
}

func (g *fakeGateway) Provider() string { return "fake" }

func (g *fakeGateway) Upload(_ context.Context, in ports.UploadInput) (ports.UploadOutput, error) {
	g.uploads = append(g.uploads, in)
	if g.uploadErr != nil {
		return ports.UploadOutput{}, g.uploadErr
	}
	stem := strings.SplitN(in.Filename, ".", 2)[0]
	publicID := in.Folder + "/" + stem
	return ports.UploadOutput{
		URL:      "https://cdn.test/" + publicID,
		PublicID: publicID,
	}, nil
}

func (g *fakeGateway) Delete(_ context.Context, publicID string) error {
	g.deletes = append(g.deletes, publicID)
	return g.deleteErr
}

func (g *fakeGateway) BuildURL(publicID string, _ ...ports.Transformation) string {
	return "https://cdn.test/" + publicID
}

type fakeStore struct {
	records map[string]models.Media
	// dropWrites makes UpdateRemoteFields succeed without persisting,
	// to exercise backfill verification.
	dropWrites bool
	updateErr  error
	updates    int
}

func newFakeStore(recs ...models.Media) *fakeStore {
	s := &fakeStore{records: make(map[string]models.Media)}
	for _, r := range recs {
		s.records[r.ID] = r
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.Media, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("media not found: %s", id)
	}
	cp := r
	return &cp, nil
}

func (s *fakeStore) UpdateRemoteFields(_ context.Context, id, url, publicID string) error {
	s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.dropWrites {
		return nil
	}
	r, ok := s.records[id]
	if !ok {
		return fmt.Errorf("media not found: %s", id)
	}
	r.RemoteURL = url
	r.RemotePublicID = publicID
	s.records[id] = r
	return nil
}

type fakeSource struct {
	data map[string][]byte
}

func (f *fakeSource) Mode() string { return "fake" }

func (f *fakeSource) Resolve(_ context.Context, m *models.Media) ([]byte, error) {
	d, ok := f.data[m.ID]
	if !ok {
		return nil, ports.ErrSourceUnavailable
	}
	return d, nil
}

func newTestOrchestrator(gw *fakeGateway, store *fakeStore, src *fakeSource) (*Orchestrator, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})
	o := New(Deps{
		Gateway: gw,
		Source:  src,
		Store:   store,
		Log:     log,
	})
	return o, &buf
}

func TestOnCreateUploadsAndWritesBack(t *testing.T) {
	rec := models.Media{
		ID:        "med_1",
		Alt:       "a brew",
		Filename:  "photo.jpg",
		MimeType:  "image/jpeg",
		SizeBytes: 1024,
	}
	gw := &fakeGateway{}
	store := newFakeStore(rec)
	src := &fakeSource{data: map[string][]byte{"med_1": make([]byte, 1024)}}
	o, _ := newTestOrchestrator(gw, store, src)

	if err := o.OnCreate(context.Background(), &rec); err != nil {
		t.Fatalf("OnCreate returned error: %v", err)
	}

	if len(gw.uploads) != 1 {
		t.Fatalf("expected exactly 1 upload, got %d", len(gw.uploads))
	}
	up := gw.uploads[0]
	if up.Folder != "payload-media" {
		t.Errorf("expected folder='payload-media', got %q", up.Folder)
	}
	if len(up.Data) != 1024 {
		t.Errorf("expected 1024 upload bytes, got %d", len(up.Data))
	}

	got, _ := store.GetByID(context.Background(), "med_1")
	if !got.Synced() {
		t.Fatal("expected record to transition unsynced -> synced")
	}
	if got.RemoteURL == "" || got.RemotePublicID == "" {
		t.Error("expected both remote fields to be populated")
	}

	// Caller's copy reflects the transition too.
	if !rec.Synced() {
		t.Error("expected in-memory record to be updated")
	}
}

// The remote fields are either both set or both empty, and a write-back
// touches nothing else on the record.
func TestWriteBackIsPartial(t *testing.T) {
	rec := models.Media{
		ID:        "med_1",
		Alt:       "keep me",
		Filename:  "photo.jpg",
		MimeType:  "image/jpeg",
		SizeBytes: 2048,
	}
	gw := &fakeGateway{}
	store := newFakeStore(rec)
	src := &fakeSource{data: map[string][]byte{"med_1": []byte("x")}}
	o, _ := newTestOrchestrator(gw, store, src)

	before, _ := store.GetByID(context.Background(), "med_1")
	if err := o.OnCreate(context.Background(), &rec); err != nil {
		t.Fatalf("OnCreate returned error: %v", err)
	}
	after, _ := store.GetByID(context.Background(), "med_1")

	if after.Alt != before.Alt || after.Filename != before.Filename ||
		after.MimeType != before.MimeType || after.SizeBytes != before.SizeBytes ||
		after.ID != before.ID {
		t.Error("write-back altered fields other than the remote pair")
	}
	if (after.RemoteURL == "") != (after.RemotePublicID == "") {
		t.Error("remote fields must be set together or not at all")
	}
}

func TestOnCreateSourceUnavailable(t *testing.T) {
	rec := models.Media{ID: "med_2", Filename: "missing.png"}
	gw := &fakeGateway{}
	store := newFakeStore(rec)
	src := &fakeSource{data: map[string][]byte{}}
	o, buf := newTestOrchestrator(gw, store, src)

	if err := o.OnCreate(context.Background(), &rec); err != nil {
		t.Fatalf("expected nil error for unavailable source, got %v", err)
	}

	if len(gw.uploads) != 0 {
		t.Errorf("expected zero gateway calls, got %d", len(gw.uploads))
	}
	got, _ := store.GetByID(context.Background(), "med_2")
	if got.Synced() {
		t.Error("expected record to remain unsynced")
	}
	if !strings.Contains(buf.String(), "source unavailable") {
		t.Error("expected a logged skip entry")
	}
}

func TestOnCreateNoFilename(t *testing.T) {
	rec := models.Media{ID: "med_3"}
	gw := &fakeGateway{}
	o, _ := newTestOrchestrator(gw, newFakeStore(rec), &fakeSource{})

	if err := o.OnCreate(context.Background(), &rec); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(gw.uploads) != 0 {
		t.Errorf("expected zero uploads, got %d", len(gw.uploads))
	}
}

func TestOnCreateUploadFailure(t *testing.T) {
	rec := models.Media{ID: "med_4", Filename: "photo.jpg"}
	gw := &fakeGateway{uploadErr: fmt.Errorf("invalid credentials")}
	store := newFakeStore(rec)
	src := &fakeSource{data: map[string][]byte{"med_4": []byte("x")}}
	o, _ := newTestOrchestrator(gw, store, src)

	err := o.OnCreate(context.Background(), &rec)
	if err == nil {
		t.Fatal("expected upload error to surface")
	}
	if !errors.IsCode(err, errors.CodeUploadFailed) {
		t.Errorf("expected code=%s, got %s", errors.CodeUploadFailed, errors.GetCode(err))
	}
	if !strings.Contains(err.Error(), "invalid credentials") {
		t.Errorf("expected provider diagnostic in error, got: %v", err)
	}

	got, _ := store.GetByID(context.Background(), "med_4")
	if got.Synced() {
		t.Error("expected record to remain unsynced after failed upload")
	}
}

func TestOnCreateWriteBackFailure(t *testing.T) {
	rec := models.Media{ID: "med_5", Filename: "photo.jpg"}
	gw := &fakeGateway{}
	store := newFakeStore(rec)
	store.updateErr = fmt.Errorf("pool closed")
	src := &fakeSource{data: map[string][]byte{"med_5": []byte("x")}}
	o, buf := newTestOrchestrator(gw, store, src)

	err := o.OnCreate(context.Background(), &rec)
	if !errors.IsCode(err, errors.CodeWriteBackFailed) {
		t.Errorf("expected code=%s, got %v", errors.CodeWriteBackFailed, err)
	}
	if !strings.Contains(buf.String(), "orphaned") {
		t.Error("expected orphaned-asset log entry for manual remediation")
	}
}

func TestOnCreateAlreadySynced(t *testing.T) {
	rec := models.Media{
		ID:             "med_6",
		Filename:       "photo.jpg",
		RemoteURL:      "https://cdn.test/payload-media/photo",
		RemotePublicID: "payload-media/photo",
	}
	gw := &fakeGateway{}
	o, _ := newTestOrchestrator(gw, newFakeStore(rec), &fakeSource{})

	if err := o.OnCreate(context.Background(), &rec); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(gw.uploads) != 0 {
		t.Errorf("expected no re-upload of a synced record, got %d", len(gw.uploads))
	}
}

func TestOnDelete(t *testing.T) {
	t.Run("synced record deletes remote asset", func(t *testing.T) {
		rec := models.Media{ID: "med_7", RemotePublicID: "payload-media/photo", RemoteURL: "https://cdn.test/x"}
		gw := &fakeGateway{}
		o, _ := newTestOrchestrator(gw, newFakeStore(), &fakeSource{})

		o.OnDelete(context.Background(), &rec)

		if len(gw.deletes) != 1 {
			t.Fatalf("expected exactly 1 delete call, got %d", len(gw.deletes))
		}
		if gw.deletes[0] != "payload-media/photo" {
			t.Errorf("expected delete by public id, got %q", gw.deletes[0])
		}
	})

	t.Run("unsynced record makes no remote call", func(t *testing.T) {
		rec := models.Media{ID: "med_8", Filename: "photo.jpg"}
		gw := &fakeGateway{}
		o, _ := newTestOrchestrator(gw, newFakeStore(), &fakeSource{})

		o.OnDelete(context.Background(), &rec)

		if len(gw.deletes) != 0 {
			t.Errorf("expected zero delete calls, got %d", len(gw.deletes))
		}
	})

	t.Run("delete failure is logged, not propagated", func(t *testing.T) {
		rec := models.Media{ID: "med_9", RemotePublicID: "payload-media/photo"}
		gw := &fakeGateway{deleteErr: fmt.Errorf("503 from provider")}
		o, buf := newTestOrchestrator(gw, newFakeStore(), &fakeSource{})

		o.OnDelete(context.Background(), &rec)

		if !strings.Contains(buf.String(), "remote delete failed") {
			t.Error("expected failed delete to be logged")
		}
	})

	t.Run("remote not-found is success-equivalent", func(t *testing.T) {
		rec := models.Media{ID: "med_10", RemotePublicID: "payload-media/gone"}
		gw := &fakeGateway{deleteErr: ports.ErrRemoteNotFound}
		o, buf := newTestOrchestrator(gw, newFakeStore(), &fakeSource{})

		o.OnDelete(context.Background(), &rec)

		if strings.Contains(buf.String(), "remote delete failed") {
			t.Error("not-found should not be reported as a failure")
		}
	})
}

func TestBackfillVerifiesWriteBack(t *testing.T) {
	rec := models.Media{ID: "med_11", Filename: "photo.jpg"}
	store := newFakeStore(rec)
	store.dropWrites = true
	src := &fakeSource{data: map[string][]byte{"med_11": []byte("x")}}
	o, _ := newTestOrchestrator(&fakeGateway{}, store, src)

	err := o.Backfill(context.Background(), &rec)
	if !errors.IsCode(err, errors.CodeWriteBackFailed) {
		t.Errorf("expected verification to report %s, got %v", errors.CodeWriteBackFailed, err)
	}
}

func TestBackfillNoFilename(t *testing.T) {
	rec := models.Media{ID: "med_12"}
	gw := &fakeGateway{}
	o, buf := newTestOrchestrator(gw, newFakeStore(rec), &fakeSource{})

	if err := o.Backfill(context.Background(), &rec); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(gw.uploads) != 0 {
		t.Errorf("expected zero uploads, got %d", len(gw.uploads))
	}
	if !strings.Contains(buf.String(), "no filename") {
		t.Error("expected skip to be logged")
	}
}

func TestSyncSkipsWhenLockHeld(t *testing.T) {
	rec := models.Media{ID: "med_13", Filename: "photo.jpg"}
	gw := &fakeGateway{}
	store := newFakeStore(rec)
	src := &fakeSource{data: map[string][]byte{"med_13": []byte("x")}}

	locks := NewKeyedLocker()
	var buf bytes.Buffer
	o := New(Deps{
		Gateway: gw,
		Source:  src,
		Store:   store,
		Locks:   locks,
		Log:     logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf}),
	})

	unlock, ok := locks.TryLock(context.Background(), "med_13")
	if !ok {
		t.Fatal("expected to acquire lock")
	}
	defer unlock()

	if err := o.OnCreate(context.Background(), &rec); err != nil {
		t.Fatalf("expected nil error on lock contention, got %v", err)
	}
	if len(gw.uploads) != 0 {
		t.Errorf("expected contended sync to skip, got %d uploads", len(gw.uploads))
	}
	if !strings.Contains(buf.String(), "already in progress") {
		t.Error("expected contention to be logged")
	}
}
