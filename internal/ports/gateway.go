package ports

import (
	"context"
	"errors"
)

// ErrRemoteNotFound is returned by Delete when the remote asset does not
// exist. Callers treat it as success-equivalent.
var ErrRemoteNotFound = errors.New("remote asset not found")

type UploadInput struct {
	Data     []byte
	Filename string
	Folder   string
}

type UploadOutput struct {
	// URL is the permanently resolvable delivery URL.
	URL string
	// PublicID is the provider's stable key, used for deletion and URL building.
	PublicID string
}

// Transformation describes a delivery-time variant. Zero fields are omitted
// from the rendered URL; providers without on-the-fly transforms ignore it.
type Transformation struct {
	Width   int
	Height  int
	Crop    string
	Quality string
	Format  string
}

// MediaGateway: implementations (cloudinary, gdrive).
type MediaGateway interface {
	Provider() string

	Upload(ctx context.Context, in UploadInput) (UploadOutput, error)
	Delete(ctx context.Context, publicID string) error

	// BuildURL is pure: no I/O, deterministic for the same inputs.
	BuildURL(publicID string, chain ...Transformation) string
}
