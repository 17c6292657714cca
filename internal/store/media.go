// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"labsite/internal/models"
)

// MediaStore handles media_files records. The objects themselves live in
// S3-compatible storage under R2Key.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

// mediaColumns lists the columns selected in media queries.
const mediaColumns = `id, filename, file_type, r2_key, visibility, thumbnail_url, created_at`

// scanMedia scans a media row from the result set.
func scanMedia(scanner interface{ Scan(...any) error }) (*models.MediaFile, error) {
	var m models.MediaFile
	err := scanner.Scan(
		&m.ID, &m.Filename, &m.FileType, &m.R2Key,
		&m.Visibility, &m.ThumbnailURL, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new media record and returns it with the generated ID.
func (s *MediaStore) Create(ctx context.Context, m *models.MediaFile) (*models.MediaFile, error) {
	if m.Visibility == "" {
		m.Visibility = models.MediaPublic
	}
	result, err := scanMedia(s.db.QueryRowContext(ctx, `
		INSERT INTO media_files (filename, file_type, r2_key, visibility, thumbnail_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+mediaColumns,
		m.Filename, m.FileType, m.R2Key, m.Visibility, m.ThumbnailURL,
	))
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return result, nil
}

// FindByID retrieves a media record by its UUID. Returns nil if not found.
func (s *MediaStore) FindByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	m, err := scanMedia(s.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media_files WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media by id: %w", err)
	}
	return m, nil
}

// Delete removes a media record. Deleting an unknown id is a no-op.
func (s *MediaStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM media_files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}
