package localfs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"brewlog/internal/models"
	"brewlog/internal/ports"
)

func TestResolve(t *testing.T) {
	root := t.TempDir()
	want := []byte("jpeg bytes")
	if err := os.WriteFile(filepath.Join(root, "photo.jpg"), want, 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(root)

	got, err := r.Resolve(context.Background(), &models.Media{ID: "med_1", Filename: "photo.jpg"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("Resolve returned %q, want %q", got, want)
	}
}

func TestResolveMissingFile(t *testing.T) {
	r := New(t.TempDir())

	_, err := r.Resolve(context.Background(), &models.Media{ID: "med_1", Filename: "absent.png"})
	if !errors.Is(err, ports.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestResolveEmptyFilename(t *testing.T) {
	r := New(t.TempDir())

	_, err := r.Resolve(context.Background(), &models.Media{ID: "med_1"})
	if !errors.Is(err, ports.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestStageThenResolve(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "media"))
	m := &models.Media{ID: "med_1", Filename: "photo.jpg"}
	data := []byte("staged bytes")

	if err := r.Stage(m, data); err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}

	got, err := r.Resolve(context.Background(), m)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Resolve returned %q, want %q", got, data)
	}

	// Staged bytes survive a second read; the file is durable.
	if _, err := r.Resolve(context.Background(), m); err != nil {
		t.Errorf("expected repeat Resolve to succeed, got %v", err)
	}
}
