// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"labsite/internal/models"
	"labsite/internal/slug"
)

// ErrUnknownProject is returned by write operations when the configured
// project slug does not resolve to a project row.
var ErrUnknownProject = errors.New("unknown project")

// MediaURLer composes the public URL of a stored media object.
type MediaURLer interface {
	FileURL(key string) string
}

// Default result sizes for the bounded listings.
const (
	DefaultRelatedLimit = 3
	DefaultSearchLimit  = 10
	DefaultRecentLimit  = 5
	DefaultPopularLimit = 5
)

// PostStore reads and writes blog posts of a single project. Every read
// applies the visibility rule: status published, a publish timestamp, and
// the configured project.
type PostStore struct {
	db          *sql.DB
	projects    *ProjectStore
	projectSlug string
	authorName  string
	media       MediaURLer
}

// NewPostStore creates a PostStore scoped to the project with the given
// slug. authorName is the display name attached to every post; media
// resolves featured image keys to URLs and may be nil.
func NewPostStore(db *sql.DB, projectSlug, authorName string, media MediaURLer) *PostStore {
	return &PostStore{
		db:          db,
		projects:    NewProjectStore(db),
		projectSlug: projectSlug,
		authorName:  authorName,
		media:       media,
	}
}

// postColumns lists the columns selected in post queries. The trailing
// r2_key comes from the optional media_files join.
const postColumns = `bp.id, bp.project_id, bp.author_id, bp.title, bp.slug, bp.content,
	bp.excerpt, bp.featured_image_id, bp.status, bp.ai_generated, bp.ai_model,
	bp.category, bp.tags, bp.meta_description, bp.meta_keywords, bp.canonical_url,
	bp.scheduled_for, bp.published_at, bp.view_count, bp.created_at, bp.updated_at,
	mf.r2_key`

const postFrom = `FROM blog_posts bp
	LEFT JOIN media_files mf ON mf.id = bp.featured_image_id`

// visiblePosts is the visibility predicate; $1 is always the project id.
const visiblePosts = `bp.project_id = $1 AND bp.status = 'published' AND bp.published_at IS NOT NULL`

// scanPost scans a post row, including the joined media key.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.ProjectID, &p.AuthorID, &p.Title, &p.Slug, &p.Content,
		&p.Excerpt, &p.FeaturedImageID, &p.Status, &p.AIGenerated, &p.AIModel,
		&p.Category, &p.Tags, &p.MetaDescription, &p.MetaKeywords, &p.CanonicalURL,
		&p.ScheduledFor, &p.PublishedAt, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
		&p.FeaturedImageKey,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostStore) tenant(ctx context.Context) (*uuid.UUID, error) {
	return s.projects.ResolveID(ctx, s.projectSlug)
}

// display projects a stored post into its read-only shape.
func (s *PostStore) display(p *models.Post) models.DisplayPost {
	var imageURL string
	if s.media != nil && p.FeaturedImageKey != nil && *p.FeaturedImageKey != "" {
		imageURL = s.media.FileURL(*p.FeaturedImageKey)
	}
	return p.Display(s.authorName, imageURL)
}

// queryPosts runs a post query and returns the rows in display form. The
// result is never nil.
func (s *PostStore) queryPosts(ctx context.Context, op, query string, args ...any) ([]models.DisplayPost, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := []models.DisplayPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, s.display(p))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// ListPublished returns one page of visible posts, newest first, with the
// total number of matching posts.
func (s *PostStore) ListPublished(ctx context.Context, f models.PostFilters) (models.PostList, error) {
	f = f.Normalize()

	pid, err := s.tenant(ctx)
	if err != nil {
		return models.PostList{}, err
	}
	if pid == nil {
		return models.EmptyPostList(f.Page, f.PageSize), nil
	}

	where := []string{visiblePosts}
	args := []any{*pid}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("bp.category = $%d", len(args)))
	}
	if f.Tag != "" {
		args = append(args, containsPattern(f.Tag))
		where = append(where, fmt.Sprintf("bp.tags ILIKE $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, containsPattern(f.Search))
		n := len(args)
		where = append(where, fmt.Sprintf("(bp.title ILIKE $%d OR bp.excerpt ILIKE $%d)", n, n))
	}
	clause := strings.Join(where, " AND ")

	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blog_posts bp WHERE `+clause, args...,
	).Scan(&total); err != nil {
		return models.PostList{}, fmt.Errorf("count posts: %w", err)
	}

	n := len(args)
	args = append(args, f.PageSize, f.Offset())
	posts, err := s.queryPosts(ctx, "list posts",
		`SELECT `+postColumns+` `+postFrom+` WHERE `+clause+
			fmt.Sprintf(` ORDER BY bp.published_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2),
		args...,
	)
	if err != nil {
		return models.PostList{}, err
	}
	return models.NewPostList(posts, total, f.Page, f.PageSize), nil
}

// FindBySlug returns the visible post with the given slug, or nil if none.
func (s *PostStore) FindBySlug(ctx context.Context, postSlug string) (*models.DisplayPost, error) {
	pid, err := s.tenant(ctx)
	if err != nil || pid == nil {
		return nil, err
	}

	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` `+postFrom+` WHERE `+visiblePosts+` AND bp.slug = $2`,
		*pid, postSlug,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	d := s.display(p)
	return &d, nil
}

// IncrementViews adds one to the post's view counter in a single atomic
// statement. Unknown ids are a no-op.
func (s *PostStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE blog_posts SET view_count = view_count + 1 WHERE id = $1`, id,
	); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// Related returns up to limit visible posts related to the given post:
// first those sharing its category, then the most recent others. The
// source post is never included; an unknown source yields no posts.
func (s *PostStore) Related(ctx context.Context, id uuid.UUID, limit int) ([]models.DisplayPost, error) {
	limit = clampLimit(limit, DefaultRelatedLimit)

	pid, err := s.tenant(ctx)
	if err != nil {
		return nil, err
	}
	if pid == nil {
		return []models.DisplayPost{}, nil
	}

	var category sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT category FROM blog_posts WHERE id = $1 AND project_id = $2`, id, *pid,
	).Scan(&category)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.DisplayPost{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find related source: %w", err)
	}

	posts := []models.DisplayPost{}
	if category.Valid && category.String != "" {
		posts, err = s.queryPosts(ctx, "list related by category",
			`SELECT `+postColumns+` `+postFrom+` WHERE `+visiblePosts+`
			AND bp.category = $2 AND bp.id <> $3
			ORDER BY bp.published_at DESC LIMIT $4`,
			*pid, category.String, id, limit,
		)
		if err != nil {
			return nil, err
		}
	}
	if len(posts) >= limit {
		return posts, nil
	}

	// Fill with the most recent posts not already selected.
	args := []any{*pid, id}
	placeholders := []string{"$2"}
	for _, p := range posts {
		args = append(args, p.ID)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	args = append(args, limit-len(posts))
	fill, err := s.queryPosts(ctx, "list related fill",
		`SELECT `+postColumns+` `+postFrom+` WHERE `+visiblePosts+`
		AND bp.id NOT IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY bp.published_at DESC`+fmt.Sprintf(` LIMIT $%d`, len(args)),
		args...,
	)
	if err != nil {
		return nil, err
	}
	return append(posts, fill...), nil
}

// Search matches title, excerpt or content. Title matches rank first, then
// newest first. Blank queries return an empty result.
func (s *PostStore) Search(ctx context.Context, q string, limit int) ([]models.DisplayPost, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.DisplayPost{}, nil
	}
	limit = clampLimit(limit, DefaultSearchLimit)

	pid, err := s.tenant(ctx)
	if err != nil {
		return nil, err
	}
	if pid == nil {
		return []models.DisplayPost{}, nil
	}

	return s.queryPosts(ctx, "search posts",
		`SELECT `+postColumns+` `+postFrom+` WHERE `+visiblePosts+`
		AND (bp.title ILIKE $2 OR bp.excerpt ILIKE $2 OR bp.content ILIKE $2)
		ORDER BY CASE WHEN bp.title ILIKE $2 THEN 1 ELSE 2 END, bp.published_at DESC
		LIMIT $3`,
		*pid, containsPattern(q), limit,
	)
}

// Recent returns the newest visible posts.
func (s *PostStore) Recent(ctx context.Context, limit int) ([]models.DisplayPost, error) {
	return s.ordered(ctx, "list recent posts", "bp.published_at DESC",
		clampLimit(limit, DefaultRecentLimit))
}

// Popular returns the most viewed visible posts.
func (s *PostStore) Popular(ctx context.Context, limit int) ([]models.DisplayPost, error) {
	return s.ordered(ctx, "list popular posts", "bp.view_count DESC, bp.published_at DESC",
		clampLimit(limit, DefaultPopularLimit))
}

func (s *PostStore) ordered(ctx context.Context, op, orderBy string, limit int) ([]models.DisplayPost, error) {
	pid, err := s.tenant(ctx)
	if err != nil {
		return nil, err
	}
	if pid == nil {
		return []models.DisplayPost{}, nil
	}
	return s.queryPosts(ctx, op,
		`SELECT `+postColumns+` `+postFrom+` WHERE `+visiblePosts+`
		ORDER BY `+orderBy+` LIMIT $2`,
		*pid, limit,
	)
}

// Create inserts a post into the configured project and links its category
// and tags to the association tables. Publishing without a timestamp
// stamps the post with the current time.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	pid, err := s.tenant(ctx)
	if err != nil {
		return nil, err
	}
	if pid == nil {
		return nil, fmt.Errorf("create post: %w: %s", ErrUnknownProject, s.projectSlug)
	}
	p.ProjectID = *pid
	if p.Status == "" {
		p.Status = models.PostStatusDraft
	}
	if !p.Status.Valid() {
		return nil, fmt.Errorf("create post: unknown status %q", p.Status)
	}
	if p.Status == models.PostStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO blog_posts (project_id, author_id, title, slug, content, excerpt,
			featured_image_id, status, ai_generated, ai_model, category, tags,
			meta_description, meta_keywords, canonical_url, scheduled_for, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, view_count, created_at, updated_at
	`, p.ProjectID, p.AuthorID, p.Title, p.Slug, p.Content, p.Excerpt,
		p.FeaturedImageID, p.Status, p.AIGenerated, p.AIModel, p.Category, p.Tags,
		p.MetaDescription, p.MetaKeywords, p.CanonicalURL, p.ScheduledFor, p.PublishedAt,
	).Scan(&p.ID, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if p.Category != nil && *p.Category != "" {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO blog_post_categories (post_id, category_id)
			SELECT $1::uuid, id FROM blog_categories WHERE name = $2 OR slug = $3
			ON CONFLICT DO NOTHING
		`, p.ID, *p.Category, slug.Generate(*p.Category)); err != nil {
			return nil, fmt.Errorf("link post category: %w", err)
		}
	}

	for _, name := range models.ParseTags(p.Tags) {
		tagSlug := slug.Generate(name)
		if tagSlug == "" {
			continue
		}
		var tagID uuid.UUID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO blog_tags (name, slug) VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
			RETURNING id
		`, name, tagSlug).Scan(&tagID); err != nil {
			return nil, fmt.Errorf("upsert tag %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO blog_post_tags (post_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, p.ID, tagID); err != nil {
			return nil, fmt.Errorf("link post tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit post: %w", err)
	}
	return p, nil
}

// SlugExists reports whether any post of the project, in any status, uses
// the given slug.
func (s *PostStore) SlugExists(ctx context.Context, postSlug string) (bool, error) {
	pid, err := s.tenant(ctx)
	if err != nil || pid == nil {
		return false, err
	}
	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM blog_posts WHERE project_id = $1 AND slug = $2)`,
		*pid, postSlug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return exists, nil
}
