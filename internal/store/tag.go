package store

import (
	"context"
	"database/sql"
	"fmt"

	"labsite/internal/models"
)

// TagStore manages blog tags.
type TagStore struct {
	db          *sql.DB
	projects    *ProjectStore
	projectSlug string
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB, projectSlug string) *TagStore {
	return &TagStore{db: db, projects: NewProjectStore(db), projectSlug: projectSlug}
}

// ListWithCounts returns all tags, most used first, then by name. Post
// counts only include the configured project's visible posts.
func (s *TagStore) ListWithCounts(ctx context.Context) ([]models.Tag, error) {
	pid, err := s.projects.ResolveID(ctx, s.projectSlug)
	if err != nil {
		return nil, err
	}
	items := []models.Tag{}
	if pid == nil {
		return items, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, t.created_at, COUNT(bp.id) AS post_count
		FROM blog_tags t
		LEFT JOIN blog_post_tags pt ON pt.tag_id = t.id
		LEFT JOIN blog_posts bp ON bp.id = pt.post_id
			AND bp.project_id = $1
			AND bp.status = 'published'
			AND bp.published_at IS NOT NULL
		GROUP BY t.id
		ORDER BY post_count DESC, t.name
	`, *pid)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.PostCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
