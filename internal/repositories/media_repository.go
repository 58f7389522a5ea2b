package repositories

import (
	"context"
	"errors"

	"brewlog/internal/httpkit"
	"brewlog/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMediaNotFound = errors.New("media not found")
var ErrMediaFilenameExists = errors.New("media filename already exists")

// SyncFilter narrows media listings by remote-sync state.
type SyncFilter int

const (
	SyncAny SyncFilter = iota
	SyncedOnly
	UnsyncedOnly
)

const mediaColumns = `
	id, alt, filename, mime_type, size_bytes,
	COALESCE(remote_url, ''), COALESCE(remote_public_id, ''), created_at
`

type MediaRepository struct {
	db *pgxpool.Pool
}

func NewMediaRepository(db *pgxpool.Pool) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) Create(ctx context.Context, m *models.Media) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO media (id, alt, filename, mime_type, size_bytes)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, m.ID, m.Alt, m.Filename, m.MimeType, m.SizeBytes).Scan(&m.CreatedAt)

	if err != nil {
		if httpkit.IsUniqueViolation(err) {
			return ErrMediaFilenameExists
		}
		return err
	}
	return nil
}

func (r *MediaRepository) GetByID(ctx context.Context, id string) (*models.Media, error) {
	var m models.Media
	err := r.db.QueryRow(ctx, `
		SELECT `+mediaColumns+`
		FROM media
		WHERE id=$1
	`, id).Scan(
		&m.ID,
		&m.Alt,
		&m.Filename,
		&m.MimeType,
		&m.SizeBytes,
		&m.RemoteURL,
		&m.RemotePublicID,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MediaRepository) List(ctx context.Context, filter SyncFilter) ([]models.Media, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+mediaColumns+`
		FROM media
		WHERE `+filterClause(filter)+`
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMediaRows(rows)
}

// FindUnsynced returns every record with no remote asset yet, oldest first so
// a backfill run drains the backlog in creation order.
func (r *MediaRepository) FindUnsynced(ctx context.Context) ([]models.Media, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+mediaColumns+`
		FROM media
		WHERE remote_url IS NULL OR remote_url = ''
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMediaRows(rows)
}

func (r *MediaRepository) Count(ctx context.Context, filter SyncFilter) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM media WHERE `+filterClause(filter)+`
	`).Scan(&n)
	return n, err
}

// UpdateRemoteFields patches only the remote pair, leaving every other column
// untouched.
func (r *MediaRepository) UpdateRemoteFields(ctx context.Context, id, url, publicID string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE media
		SET remote_url=$2, remote_public_id=$3
		WHERE id=$1
	`, id, url, publicID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMediaNotFound
	}
	return nil
}

// Delete removes the record and returns it as it was, so the caller can run
// remote cleanup with the record's public id.
func (r *MediaRepository) Delete(ctx context.Context, id string) (*models.Media, error) {
	var m models.Media
	err := r.db.QueryRow(ctx, `
		DELETE FROM media
		WHERE id=$1
		RETURNING `+mediaColumns+`
	`, id).Scan(
		&m.ID,
		&m.Alt,
		&m.Filename,
		&m.MimeType,
		&m.SizeBytes,
		&m.RemoteURL,
		&m.RemotePublicID,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return &m, nil
}

func filterClause(f SyncFilter) string {
	switch f {
	case SyncedOnly:
		return `remote_url IS NOT NULL AND remote_url <> ''`
	case UnsyncedOnly:
		return `remote_url IS NULL OR remote_url = ''`
	default:
		return `TRUE`
	}
}

func scanMediaRows(rows pgx.Rows) ([]models.Media, error) {
	var out []models.Media
	for rows.Next() {
		var m models.Media
		if err := rows.Scan(
			&m.ID,
			&m.Alt,
			&m.Filename,
			&m.MimeType,
			&m.SizeBytes,
			&m.RemoteURL,
			&m.RemotePublicID,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
