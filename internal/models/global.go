package models

import (
	"encoding/json"
	"time"
)

// Global is a singleton content document (homepage, site settings) stored as
// a JSON blob keyed by slug.
type Global struct {
	Slug      string          `json:"slug"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}
