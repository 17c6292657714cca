// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaVisibility controls whether a media file may be served publicly.
type MediaVisibility string

const (
	MediaPublic  MediaVisibility = "public"
	MediaPrivate MediaVisibility = "private"
)

// MediaFile is an object stored in the media bucket. Metadata lives in
// PostgreSQL; the object itself is addressed by R2Key.
type MediaFile struct {
	ID           uuid.UUID       `json:"id"`
	Filename     string          `json:"filename"`
	FileType     string          `json:"file_type"`
	R2Key        string          `json:"r2_key"`
	Visibility   MediaVisibility `json:"visibility"`
	ThumbnailURL *string         `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// IsImage returns true if the media file is an image type.
func (m *MediaFile) IsImage() bool {
	return strings.HasPrefix(m.FileType, "image/")
}
