package gdrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	"brewlog/internal/ports"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// Client implements ports.MediaGateway backed by Google Drive. The PublicID
// is the Drive fileId assigned on upload. Drive has no overwrite-by-key or
// delivery-time transforms, so repeated uploads of the same record create
// new files; the orchestrator's write-back verification keeps that window to
// a single failed write-back.
type Client struct {
	srv      *drive.Service
	folderID string
}

func NewClient(srv *drive.Service, folderID string) *Client {
	return &Client{srv: srv, folderID: folderID}
}

func (c *Client) Provider() string { return "gdrive" }

func (c *Client) Upload(ctx context.Context, in ports.UploadInput) (ports.UploadOutput, error) {
	if len(in.Data) == 0 {
		return ports.UploadOutput{}, fmt.Errorf("upload payload is empty")
	}

	file := &drive.File{Name: in.Filename}
	if c.folderID != "" {
		file.Parents = []string{c.folderID}
	}

	created, err := c.srv.Files.Create(file).
		Media(bytes.NewReader(in.Data)).
		Context(ctx).
		Do()
	if err != nil {
		return ports.UploadOutput{}, fmt.Errorf("gdrive upload failed: %w", err)
	}

	return ports.UploadOutput{
		URL:      c.BuildURL(created.Id),
		PublicID: created.Id,
	}, nil
}

func (c *Client) Delete(ctx context.Context, publicID string) error {
	err := c.srv.Files.Delete(publicID).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 404 {
			return ports.ErrRemoteNotFound
		}
		return fmt.Errorf("gdrive delete failed: %w", err)
	}
	return nil
}

// BuildURL returns the direct-view URL for a fileId. Transformations are
// ignored: Drive serves the original bytes only.
func (c *Client) BuildURL(publicID string, _ ...ports.Transformation) string {
	if publicID == "" {
		return ""
	}
	return "https://drive.google.com/uc?export=view&id=" + url.QueryEscape(publicID)
}
