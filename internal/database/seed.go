package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// seedCategories are created once, shared by every project.
var seedCategories = []struct {
	name, slug, description string
}{
	{"Edge Computing", "edge-computing", "Running code close to users."},
	{"AI Engineering", "ai-engineering", "Shipping language models to production."},
	{"Studio Notes", "studio-notes", "How the studio works."},
}

// seedPosts are inserted for the development project. Published posts get
// staggered publish dates so listings have a stable order.
var seedPosts = []struct {
	title, slug, category, tags, content string
	status                               string
	views                                int
}{
	{
		title:    "Why We Build on the Edge",
		slug:     "why-we-build-on-the-edge",
		category: "Edge Computing",
		tags:     `["edge","workers"]`,
		status:   "published",
		views:    42,
		content: "## Why Edge, Why Now?\n\nLatency matters. " +
			"[Workers](https://workers.cloudflare.com) run close to users.\n\n" +
			"```js\nexport default { fetch() { return new Response('hi') } }\n```\n",
	},
	{
		title:    "Shipping AI Features Safely",
		slug:     "shipping-ai-features-safely",
		category: "AI Engineering",
		tags:     `["ai","safety"]`,
		status:   "published",
		views:    17,
		content:  "# Guard rails\n\n- [x] Evaluate outputs\n- [ ] Add human review\n\n| Model | Cost |\n|:--|--:|\n| small | 1 |\n",
	},
	{
		title:    "Our Studio Process",
		slug:     "our-studio-process",
		category: "Studio Notes",
		tags:     `["process"]`,
		status:   "published",
		views:    3,
		content:  "> Ship small, ship often.\n\nEvery project starts with a one-page brief.\n",
	},
	{
		title:    "Draft: Upcoming Launch",
		slug:     "upcoming-launch",
		category: "Studio Notes",
		tags:     `["launch"]`,
		status:   "draft",
		content:  "Not ready yet.",
	},
}

// Seed populates the database with development data: the project with the
// given slug, a few categories and sample posts. It does nothing if the
// project already has posts.
func Seed(db *sql.DB, projectSlug, projectName string) error {
	var projectID string
	err := db.QueryRow(`
		INSERT INTO projects (slug, name) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id
	`, projectSlug, projectName).Scan(&projectID)
	if err != nil {
		return fmt.Errorf("seed project: %w", err)
	}

	var count int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM blog_posts WHERE project_id = $1", projectID,
	).Scan(&count); err != nil {
		return fmt.Errorf("seed check posts: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i, c := range seedCategories {
		if _, err := tx.Exec(`
			INSERT INTO blog_categories (name, slug, description, sort_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO NOTHING
		`, c.name, c.slug, c.description, i); err != nil {
			return fmt.Errorf("seed category %s: %w", c.slug, err)
		}
	}

	now := time.Now().UTC()
	for i, p := range seedPosts {
		var publishedAt *time.Time
		if p.status == "published" {
			t := now.Add(-time.Duration(i+1) * 24 * time.Hour)
			publishedAt = &t
		}

		var postID string
		if err := tx.QueryRow(`
			INSERT INTO blog_posts (project_id, title, slug, content, excerpt, status,
				category, tags, view_count, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`, projectID, p.title, p.slug, p.content, p.title+".", p.status,
			p.category, p.tags, p.views, publishedAt,
		).Scan(&postID); err != nil {
			return fmt.Errorf("seed post %s: %w", p.slug, err)
		}

		if _, err := tx.Exec(`
			INSERT INTO blog_post_categories (post_id, category_id)
			SELECT $1::uuid, id FROM blog_categories WHERE name = $2
			ON CONFLICT DO NOTHING
		`, postID, p.category); err != nil {
			return fmt.Errorf("seed post category %s: %w", p.slug, err)
		}

		if _, err := tx.Exec(`
			WITH names AS (SELECT jsonb_array_elements_text($2::jsonb) AS name),
			upserted AS (
				INSERT INTO blog_tags (name, slug)
				SELECT name, lower(name) FROM names
				ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
				RETURNING id
			)
			INSERT INTO blog_post_tags (post_id, tag_id)
			SELECT $1::uuid, id FROM upserted
			ON CONFLICT DO NOTHING
		`, postID, p.tags); err != nil {
			return fmt.Errorf("seed post tags %s: %w", p.slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample blog posts",
		"project", projectSlug,
		"posts", len(seedPosts),
	)
	return nil
}
