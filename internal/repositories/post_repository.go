package repositories

import (
	"context"
	"errors"

	"brewlog/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPostNotFound = errors.New("post not found")

const postColumns = `
	p.id, p.title, p.slug, p.content, COALESCE(p.excerpt, ''),
	COALESCE(p.featured_image_id, ''), COALESCE(p.author_id, ''),
	p.published_at, p.views, p.featured, p.tags,
	COALESCE(p.seo_title, ''), COALESCE(p.seo_description, ''), COALESCE(p.seo_keywords, ''),
	p.created_at
`

type PostRepository struct {
	db    *pgxpool.Pool
	media *MediaRepository
}

func NewPostRepository(db *pgxpool.Pool, media *MediaRepository) *PostRepository {
	return &PostRepository{db: db, media: media}
}

// ListParams narrows and pages a post listing. Zero values mean first page,
// default size, no search.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	// Depth controls relation population: 0 ids only, 1 direct relations,
	// 2 also the author's avatar.
	Depth int
}

func (p *ListParams) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 10
	}
}

// List returns a page of published posts, newest first, plus the total
// matching count for pagination. Search matches title and excerpt,
// case-insensitive.
func (r *PostRepository) List(ctx context.Context, params ListParams) ([]models.Post, int, error) {
	params.normalize()

	where := `p.published_at <= now()`
	args := []any{params.Limit, (params.Page - 1) * params.Limit}
	if params.Search != "" {
		where += ` AND (p.title ILIKE '%' || $3 || '%' OR p.excerpt ILIKE '%' || $3 || '%')`
		args = append(args, params.Search)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE `+where+`
		ORDER BY p.published_at DESC
		LIMIT $1 OFFSET $2
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	posts, err := scanPostRows(rows)
	if err != nil {
		return nil, 0, err
	}

	countArgs := args[2:]
	countWhere := `published_at <= now()`
	if params.Search != "" {
		countWhere += ` AND (title ILIKE '%' || $1 || '%' OR excerpt ILIKE '%' || $1 || '%')`
	}
	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM posts WHERE `+countWhere+`
	`, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if err := r.populate(ctx, posts, params.Depth); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string, depth int) (*models.Post, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE p.slug=$1
	`, slug)
	if err != nil {
		return nil, err
	}
	posts, err := scanPostRows(rows)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrPostNotFound
	}
	if err := r.populate(ctx, posts, depth); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ByCategory returns the page of published posts attached to the category
// with the given slug.
func (r *PostRepository) ByCategory(ctx context.Context, categorySlug string, params ListParams) ([]models.Post, int, error) {
	params.normalize()

	rows, err := r.db.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN post_categories pc ON pc.post_id = p.id
		JOIN categories c ON c.id = pc.category_id
		WHERE c.slug=$1 AND p.published_at <= now()
		ORDER BY p.published_at DESC
		LIMIT $2 OFFSET $3
	`, categorySlug, params.Limit, (params.Page-1)*params.Limit)
	if err != nil {
		return nil, 0, err
	}
	posts, err := scanPostRows(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM posts p
		JOIN post_categories pc ON pc.post_id = p.id
		JOIN categories c ON c.id = pc.category_id
		WHERE c.slug=$1 AND p.published_at <= now()
	`, categorySlug).Scan(&total); err != nil {
		return nil, 0, err
	}

	if err := r.populate(ctx, posts, params.Depth); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Recent returns the newest published posts, optionally excluding one slug so
// a post page can list other reads.
func (r *PostRepository) Recent(ctx context.Context, limit int, excludeSlug string) ([]models.Post, error) {
	if limit < 1 {
		limit = 3
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE p.published_at <= now() AND p.slug <> $2
		ORDER BY p.published_at DESC
		LIMIT $1
	`, limit, excludeSlug)
	if err != nil {
		return nil, err
	}
	posts, err := scanPostRows(rows)
	if err != nil {
		return nil, err
	}
	if err := r.populate(ctx, posts, 1); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) Featured(ctx context.Context, limit int) ([]models.Post, error) {
	if limit < 1 {
		limit = 3
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE p.featured AND p.published_at <= now()
		ORDER BY p.published_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	posts, err := scanPostRows(rows)
	if err != nil {
		return nil, err
	}
	if err := r.populate(ctx, posts, 1); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) IncrementViews(ctx context.Context, slug string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE posts SET views = views + 1 WHERE slug=$1
	`, slug)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

// populate resolves relations in place. Depth 0 leaves ids only, depth 1
// loads featured images, categories and authors, depth 2 also loads the
// author's avatar.
func (r *PostRepository) populate(ctx context.Context, posts []models.Post, depth int) error {
	if depth < 1 || len(posts) == 0 {
		return nil
	}

	for i := range posts {
		p := &posts[i]

		if p.FeaturedImageID != "" {
			img, err := r.media.GetByID(ctx, p.FeaturedImageID)
			if err != nil && !errors.Is(err, ErrMediaNotFound) {
				return err
			}
			p.FeaturedImage = img
		}

		cats, err := r.categoriesFor(ctx, p.ID)
		if err != nil {
			return err
		}
		p.Categories = cats
		p.CategoryIDs = p.CategoryIDs[:0]
		for _, c := range cats {
			p.CategoryIDs = append(p.CategoryIDs, c.ID)
		}

		if p.AuthorID != "" {
			author, err := r.authorFor(ctx, p.AuthorID, depth)
			if err != nil {
				return err
			}
			p.Author = author
		}
	}
	return nil
}

func (r *PostRepository) categoriesFor(ctx context.Context, postID string) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name, c.slug, COALESCE(c.description, ''),
		       COALESCE(c.featured_image_id, ''), c.created_at
		FROM categories c
		JOIN post_categories pc ON pc.category_id = c.id
		WHERE pc.post_id=$1
		ORDER BY c.name
	`, postID)
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
	return out, rows.Err()
}

func (r *PostRepository) authorFor(ctx context.Context, id string, depth int) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, email, name, COALESCE(bio, ''), COALESCE(avatar_id, ''), role, created_at
		FROM users
		WHERE id=$1
	`, id).Scan(&u.ID, &u.Email, &u.Name, &u.Bio, &u.AvatarID, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if depth >= 2 && u.AvatarID != "" {
		avatar, err := r.media.GetByID(ctx, u.AvatarID)
		if err != nil && !errors.Is(err, ErrMediaNotFound) {
			return nil, err
		}
		u.Avatar = avatar
	}
	return &u, nil
}

func scanPostRows(rows pgx.Rows) ([]models.Post, error) {
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Slug,
			&p.Content,
			&p.Excerpt,
			&p.FeaturedImageID,
			&p.AuthorID,
			&p.PublishedAt,
			&p.Views,
			&p.Featured,
			&p.Tags,
			&p.SEOTitle,
			&p.SEODescription,
			&p.SEOKeywords,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
