package repositories

import (
	"context"
	"errors"

	"brewlog/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository struct {
	db    *pgxpool.Pool
	media *MediaRepository
}

func NewCategoryRepository(db *pgxpool.Pool, media *MediaRepository) *CategoryRepository {
	return &CategoryRepository{db: db, media: media}
}

func (r *CategoryRepository) List(ctx context.Context, depth int) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, slug, COALESCE(description, ''),
		       COALESCE(featured_image_id, ''), created_at
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.FeaturedImageID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if depth >= 1 {
		for i := range out {
			if err := r.attachImage(ctx, &out[i]); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string, depth int) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRow(ctx, `
		SELECT id, name, slug, COALESCE(description, ''),
		       COALESCE(featured_image_id, ''), created_at
		FROM categories
		WHERE slug=$1
	`, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.FeaturedImageID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if depth >= 1 {
		if err := r.attachImage(ctx, &c); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (r *CategoryRepository) attachImage(ctx context.Context, c *models.Category) error {
	if c.FeaturedImageID == "" {
		return nil
	}
	img, err := r.media.GetByID(ctx, c.FeaturedImageID)
	if err != nil && !errors.Is(err, ErrMediaNotFound) {
		return err
	}
	c.FeaturedImage = img
	return nil
}
