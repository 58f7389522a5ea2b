package repositories

import (
	"context"
	"errors"

	"brewlog/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrGlobalNotFound = errors.New("global not found")

// GlobalRepository stores singleton content documents keyed by slug.
type GlobalRepository struct {
	db *pgxpool.Pool
}

func NewGlobalRepository(db *pgxpool.Pool) *GlobalRepository {
	return &GlobalRepository{db: db}
}

func (r *GlobalRepository) Get(ctx context.Context, slug string) (*models.Global, error) {
	var g models.Global
	err := r.db.QueryRow(ctx, `
		SELECT slug, data, updated_at
		FROM globals
		WHERE slug=$1
	`, slug).Scan(&g.Slug, &g.Data, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGlobalNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *GlobalRepository) Upsert(ctx context.Context, g *models.Global) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO globals (slug, data, updated_at)
		VALUES ($1,$2,now())
		ON CONFLICT (slug) DO UPDATE SET data=EXCLUDED.data, updated_at=now()
		RETURNING updated_at
	`, g.Slug, g.Data).Scan(&g.UpdatedAt)
}
