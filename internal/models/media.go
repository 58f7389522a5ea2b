package models

import "time"

// Media is a stored media record. RemoteURL and RemotePublicID are written
// only by the sync orchestrator and are either both set or both empty.
type Media struct {
	ID             string    `json:"id"`
	Alt            string    `json:"alt,omitempty"`
	Filename       string    `json:"filename,omitempty"`
	MimeType       string    `json:"mime_type,omitempty"`
	SizeBytes      int64     `json:"size_bytes,omitempty"`
	RemoteURL      string    `json:"remote_url,omitempty"`
	RemotePublicID string    `json:"remote_public_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Synced reports whether the record carries its remote identifiers.
func (m *Media) Synced() bool {
	return m.RemoteURL != "" && m.RemotePublicID != ""
}
