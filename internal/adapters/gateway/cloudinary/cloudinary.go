package cloudinary

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"brewlog/internal/ports"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// defaultTransformation is applied to every upload unless overridden:
// automatic quality and delivery format selection.
const defaultTransformation = "q_auto,f_auto"

// Client implements ports.MediaGateway backed by Cloudinary.
// The object key is derived from folder + filename stem and uploads
// overwrite by key, so re-uploading the same record is safe.
type Client struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}

func NewClient(cloudName, apiKey, apiSecret string) (*Client, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init failed: %w", err)
	}
	return &Client{cld: cld, cloudName: cloudName}, nil
}

func (c *Client) Provider() string { return "cloudinary" }

func (c *Client) Upload(ctx context.Context, in ports.UploadInput) (ports.UploadOutput, error) {
	if len(in.Data) == 0 {
		return ports.UploadOutput{}, fmt.Errorf("upload payload is empty")
	}

	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(in.Data), uploader.UploadParams{
		PublicID:       DeriveKey(in.Folder, in.Filename),
		ResourceType:   "auto",
		Overwrite:      api.Bool(true),
		Transformation: defaultTransformation,
	})
	if err != nil {
		return ports.UploadOutput{}, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if res.Error.Message != "" {
		// The API reports some rejections in-band with a 200 transport status.
		return ports.UploadOutput{}, fmt.Errorf("cloudinary upload rejected: %s", res.Error.Message)
	}

	return ports.UploadOutput{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (c *Client) Delete(ctx context.Context, publicID string) error {
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}

	switch res.Result {
	case "ok":
		return nil
	case "not found":
		return ports.ErrRemoteNotFound
	default:
		return fmt.Errorf("cloudinary destroy: %s", res.Result)
	}
}

// DeriveKey builds the stable object key for a filename: folder plus the
// filename stem (everything before the first dot, matching how versioned
// extensions like .tar.gz collapse to one key).
func DeriveKey(folder, filename string) string {
	stem := filename
	if i := strings.Index(filename, "."); i >= 0 {
		stem = filename[:i]
	}
	if folder == "" {
		return stem
	}
	return folder + "/" + stem
}
