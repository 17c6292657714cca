// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the lifecycle state of a blog post.
type PostStatus string

const (
	PostStatusDraft         PostStatus = "draft"
	PostStatusPendingReview PostStatus = "pending_review"
	PostStatusScheduled     PostStatus = "scheduled"
	PostStatusPublished     PostStatus = "published"
	PostStatusArchived      PostStatus = "archived"
)

// Valid reports whether s is one of the known lifecycle states.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPendingReview, PostStatusScheduled,
		PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// wordsPerMinute is the reading speed used for reading-time estimates.
const wordsPerMinute = 200

// Post is a row of the blog_posts table. Every post belongs to exactly one
// project; only published posts with a publish timestamp are ever shown
// outside the CRM.
type Post struct {
	ID              uuid.UUID  `json:"id"`
	ProjectID       uuid.UUID  `json:"project_id"`
	AuthorID        *uuid.UUID `json:"author_id,omitempty"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content"`
	Excerpt         *string    `json:"excerpt,omitempty"`
	FeaturedImageID *uuid.UUID `json:"featured_image_id,omitempty"`
	Status          PostStatus `json:"status"`
	AIGenerated     bool       `json:"ai_generated"`
	AIModel         *string    `json:"ai_model,omitempty"`
	Category        *string    `json:"category,omitempty"`
	Tags            *string    `json:"tags,omitempty"` // JSON-encoded list
	MetaDescription *string    `json:"meta_description,omitempty"`
	MetaKeywords    *string    `json:"meta_keywords,omitempty"`
	CanonicalURL    *string    `json:"canonical_url,omitempty"`
	ScheduledFor    *time.Time `json:"scheduled_for,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	ViewCount       int64      `json:"view_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// FeaturedImageKey is the storage key of the joined media_files row.
	// Populated by store queries, never persisted on the post itself.
	FeaturedImageKey *string `json:"-"`
}

// IsVisible reports whether the post may be exposed publicly.
func (p *Post) IsVisible() bool {
	return p.Status == PostStatusPublished && p.PublishedAt != nil
}

// Display projects the stored post into the read-only shape returned to
// callers. imageURL is the resolved featured image URL, or "" when the post
// has none.
func (p *Post) Display(authorName, imageURL string) DisplayPost {
	d := DisplayPost{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Excerpt:         p.Excerpt,
		Content:         p.Content,
		Category:        p.Category,
		Tags:            ParseTags(p.Tags),
		MetaDescription: p.MetaDescription,
		PublishedAt:     p.PublishedAt,
		ReadingTime:     ReadingTime(p.Content),
		ViewCount:       p.ViewCount,
		AuthorName:      authorName,
		IsAIGenerated:   p.AIGenerated,
	}
	if imageURL != "" {
		d.FeaturedImage = &imageURL
	}
	return d
}

// DisplayPost is the derived, display-oriented view of a post. It is
// recomputed on every read.
type DisplayPost struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         *string    `json:"excerpt"`
	Content         string     `json:"content"`
	FeaturedImage   *string    `json:"featured_image"`
	Category        *string    `json:"category"`
	Tags            []string   `json:"tags"`
	MetaDescription *string    `json:"meta_description"`
	PublishedAt     *time.Time `json:"published_at"`
	ReadingTime     int        `json:"reading_time"`
	ViewCount       int64      `json:"view_count"`
	AuthorName      string     `json:"author_name"`
	IsAIGenerated   bool       `json:"is_ai_generated"`
}

// ReadingTime estimates the minutes needed to read content at 200 words
// per minute, rounded up, never less than one.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ParseTags decodes the JSON list stored in blog_posts.tags. NULL, empty
// or malformed values, and JSON that is not a list of strings, all yield an
// empty (non-nil) slice.
func ParseTags(raw *string) []string {
	tags := []string{}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return tags
	}
	var parsed []string
	if err := json.Unmarshal([]byte(*raw), &parsed); err != nil {
		return tags
	}
	if parsed == nil {
		return tags
	}
	return parsed
}

// EncodeTags serialises a tag list for storage. A nil or empty list is
// stored as NULL.
func EncodeTags(tags []string) *string {
	if len(tags) == 0 {
		return nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
