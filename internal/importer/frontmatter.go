// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package importer turns markdown files with YAML front matter into blog posts.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"labsite/internal/models"
	"labsite/internal/slug"
)

// ErrNoFrontMatter is returned when a document does not open with a
// "---" delimited YAML block.
var ErrNoFrontMatter = errors.New("missing front matter")

// FrontMatter is the YAML header of an importable post.
type FrontMatter struct {
	Title           string   `yaml:"title"`
	Slug            string   `yaml:"slug"`
	Excerpt         string   `yaml:"excerpt"`
	Category        string   `yaml:"category"`
	Tags            []string `yaml:"tags"`
	MetaDescription string   `yaml:"meta_description"`
	MetaKeywords    string   `yaml:"meta_keywords"`
	CanonicalURL    string   `yaml:"canonical_url"`
	PublishedAt     string   `yaml:"published_at"`
	AIGenerated     bool     `yaml:"ai_generated"`
	AIModel         string   `yaml:"ai_model"`
}

// Document is a parsed markdown file.
type Document struct {
	FrontMatter
	Body string
}

var opening = []byte("---\n")

// Parse splits src into front matter and body.
func Parse(src []byte) (*Document, error) {
	src = bytes.TrimPrefix(src, []byte("\ufeff"))
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))

	rest, ok := bytes.CutPrefix(src, opening)
	if !ok {
		return nil, ErrNoFrontMatter
	}

	var header, body []byte
	if b, found := bytes.CutPrefix(rest, opening); found {
		body = b
	} else if h, b, found := bytes.Cut(rest, []byte("\n---\n")); found {
		header, body = h, b
	} else if h, found := bytes.CutSuffix(bytes.TrimRight(rest, "\n"), []byte("\n---")); found {
		header = h
	} else {
		return nil, fmt.Errorf("%w: unterminated block", ErrNoFrontMatter)
	}

	var doc Document
	if err := yaml.Unmarshal(header, &doc.FrontMatter); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	doc.Body = strings.TrimSpace(string(body))
	return &doc, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// PublishedTime parses the published_at field. An empty field yields nil.
func (f FrontMatter) PublishedTime() (*time.Time, error) {
	v := strings.TrimSpace(f.PublishedAt)
	if v == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("parse published_at %q: unsupported format", v)
}

// Post builds the row to insert. With publish set the post is published,
// otherwise it is stored as a draft.
func (d *Document) Post(publish bool) (*models.Post, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, errors.New("front matter: title is required")
	}
	if d.Body == "" {
		return nil, errors.New("document has no content")
	}

	postSlug := slug.Generate(d.Slug)
	if postSlug == "" {
		postSlug = slug.Generate(title)
	}
	if postSlug == "" {
		return nil, fmt.Errorf("cannot derive a slug from title %q", title)
	}

	published, err := d.PublishedTime()
	if err != nil {
		return nil, err
	}

	p := &models.Post{
		Title:           title,
		Slug:            postSlug,
		Content:         d.Body,
		Excerpt:         optional(d.Excerpt),
		Status:          models.PostStatusDraft,
		AIGenerated:     d.AIGenerated,
		AIModel:         optional(d.AIModel),
		Category:        optional(d.Category),
		MetaDescription: optional(d.MetaDescription),
		MetaKeywords:    optional(d.MetaKeywords),
		CanonicalURL:    optional(d.CanonicalURL),
	}
	if tags := cleanTags(d.Tags); len(tags) > 0 {
		p.Tags = models.EncodeTags(tags)
	}
	if publish {
		p.Status = models.PostStatusPublished
		p.PublishedAt = published
	}
	return p, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// cleanTags trims names and drops blanks and duplicates, keeping order.
func cleanTags(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
