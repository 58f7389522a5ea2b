package source

import (
	"fmt"
	"os"

	"brewlog/internal/adapters/source/buffer"
	"brewlog/internal/adapters/source/localfs"
	"brewlog/internal/ports"
)

// Reader is an alias to ports.SourceReader.
type Reader = ports.SourceReader

// NewReader selects the source-resolution strategy once at startup from
// MEDIA_SOURCE (localfs | buffer).
func NewReader() (Reader, error) {
	mode := os.Getenv("MEDIA_SOURCE")
	if mode == "" {
		mode = "localfs"
	}

	switch mode {
	case "localfs":
		root := os.Getenv("MEDIA_LOCAL_ROOT")
		if root == "" {
			root = "media"
		}
		return localfs.New(root), nil

	case "buffer":
		return buffer.New(), nil

	default:
		return nil, fmt.Errorf("unknown media source mode: %s", mode)
	}
}
