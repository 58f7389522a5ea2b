package cloudinary

import (
	"fmt"
	"strings"

	"brewlog/internal/ports"
)

// BuildURL assembles a delivery URL without any I/O. Identical inputs yield
// identical strings. With an empty chain the default optimization profile
// is applied.
func (c *Client) BuildURL(publicID string, chain ...ports.Transformation) string {
	if publicID == "" {
		return ""
	}

	segments := make([]string, 0, len(chain))
	for _, t := range chain {
		if s := renderTransformation(t); s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		segments = []string{defaultTransformation}
	}

	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s/%s",
		c.cloudName, strings.Join(segments, "/"), publicID)
}

// renderTransformation serializes one transformation step. Parameter order
// is fixed (crop, width, height, quality, format) so output is stable.
func renderTransformation(t ports.Transformation) string {
	parts := make([]string, 0, 5)
	if t.Crop != "" {
		parts = append(parts, "c_"+t.Crop)
	}
	if t.Width > 0 {
		parts = append(parts, fmt.Sprintf("w_%d", t.Width))
	}
	if t.Height > 0 {
		parts = append(parts, fmt.Sprintf("h_%d", t.Height))
	}
	if t.Quality != "" {
		parts = append(parts, "q_"+t.Quality)
	}
	if t.Format != "" {
		parts = append(parts, "f_"+t.Format)
	}
	return strings.Join(parts, ",")
}
