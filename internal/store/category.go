// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"labsite/internal/models"
)

// CategoryStore manages blog categories. Categories are shared by all
// projects; post counts only include the configured project's visible
// posts.
type CategoryStore struct {
	db          *sql.DB
	projects    *ProjectStore
	projectSlug string
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB, projectSlug string) *CategoryStore {
	return &CategoryStore{db: db, projects: NewProjectStore(db), projectSlug: projectSlug}
}

const categoryColumns = `id, name, slug, description, parent_id, sort_order, created_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.ParentID, &c.SortOrder, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListWithCounts returns all categories ordered by sort_order then name,
// with the number of visible posts in each. Empty categories are included
// with a zero count.
func (s *CategoryStore) ListWithCounts(ctx context.Context) ([]models.Category, error) {
	pid, err := s.projects.ResolveID(ctx, s.projectSlug)
	if err != nil {
		return nil, err
	}
	items := []models.Category{}
	if pid == nil {
		return items, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.slug, c.description, c.parent_id, c.sort_order,
		       c.created_at,
		       COUNT(bp.id) AS post_count
		FROM blog_categories c
		LEFT JOIN blog_post_categories pc ON pc.category_id = c.id
		LEFT JOIN blog_posts bp ON bp.id = pc.post_id
			AND bp.project_id = $1
			AND bp.status = 'published'
			AND bp.published_at IS NOT NULL
		GROUP BY c.id
		ORDER BY c.sort_order, c.name
	`, *pid)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description,
			&c.ParentID, &c.SortOrder, &c.CreatedAt,
			&c.PostCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM blog_categories WHERE slug = $1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	result, err := scanCategory(s.db.QueryRowContext(ctx, `
		INSERT INTO blog_categories (name, slug, description, parent_id, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.SortOrder,
	))
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}
