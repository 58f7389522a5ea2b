package models

import "time"

type Category struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description,omitempty"`
	FeaturedImageID string    `json:"featured_image_id,omitempty"`
	FeaturedImage   *Media    `json:"featured_image,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
