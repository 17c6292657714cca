package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a blog tag.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	// PostCount counts the published posts of the current project linked
	// to this tag. Populated by store methods.
	PostCount int `json:"post_count"`
}
