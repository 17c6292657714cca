package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"labsite/internal/models"
)

// ProjectStore resolves tenants in the shared multi-project database.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a new ProjectStore.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// ResolveID returns the id of the project with the given slug, or nil if no
// such project exists.
func (s *ProjectStore) ResolveID(ctx context.Context, slug string) (*uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `SELECT id FROM projects WHERE slug = $1`, slug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve project %q: %w", slug, err)
	}
	return &id, nil
}

// Ensure returns the project with the given slug, creating it if needed.
// Used by seeding and the import tool.
func (s *ProjectStore) Ensure(ctx context.Context, slug, name string) (*models.Project, error) {
	p := &models.Project{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO projects (slug, name) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id, slug, name
	`, slug, name).Scan(&p.ID, &p.Slug, &p.Name)
	if err != nil {
		return nil, fmt.Errorf("ensure project %q: %w", slug, err)
	}
	return p, nil
}
