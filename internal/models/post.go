package models

import (
	"encoding/json"
	"time"
)

type Post struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Content         json.RawMessage `json:"content,omitempty"`
	Excerpt         string          `json:"excerpt,omitempty"`
	FeaturedImageID string          `json:"featured_image_id,omitempty"`
	FeaturedImage   *Media          `json:"featured_image,omitempty"`
	CategoryIDs     []string        `json:"category_ids,omitempty"`
	Categories      []Category      `json:"categories,omitempty"`
	AuthorID        string          `json:"author_id,omitempty"`
	Author          *User           `json:"author,omitempty"`
	PublishedAt     time.Time       `json:"published_at"`
	Views           int             `json:"views"`
	Featured        bool            `json:"featured"`
	Tags            []string        `json:"tags,omitempty"`
	SEOTitle        string          `json:"seo_title,omitempty"`
	SEODescription  string          `json:"seo_description,omitempty"`
	SEOKeywords     string          `json:"seo_keywords,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
