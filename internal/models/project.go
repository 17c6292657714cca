package models

import "github.com/google/uuid"

// Project is a tenant of the shared database. Blog content is always read
// through the project resolved from the configured slug.
type Project struct {
	ID   uuid.UUID `json:"id"`
	Slug string    `json:"slug"`
	Name string    `json:"name"`
}
