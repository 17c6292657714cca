package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"labsite/internal/models"
)

// TestPostStoreAgainstPostgres exercises the visibility rule, listings and
// view counting against a real database.
func TestPostStoreAgainstPostgres(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	const project = "it-blog"
	cleanProject(t, db, project)
	t.Cleanup(func() { cleanProject(t, db, project) })

	if _, err := NewProjectStore(db).Ensure(ctx, project, "Integration Blog"); err != nil {
		t.Fatalf("Ensure project: %v", err)
	}

	s := NewPostStore(db, project, "Test Author", fakeMedia{base: "https://media.test"})

	cat := "Integration"
	base := time.Now().Add(-time.Hour).UTC()
	create := func(title, slug string, status models.PostStatus, published *time.Time, category *string) *models.Post {
		t.Helper()
		p, err := s.Create(ctx, &models.Post{
			Title:       title,
			Slug:        slug,
			Content:     "word word word",
			Status:      status,
			PublishedAt: published,
			Category:    category,
			Tags:        models.EncodeTags([]string{"it-tag"}),
		})
		if err != nil {
			t.Fatalf("Create %s: %v", slug, err)
		}
		return p
	}

	t1 := base.Add(-2 * time.Minute)
	t2 := base.Add(-time.Minute)
	first := create("First", "it-first", models.PostStatusPublished, &t1, &cat)
	second := create("Second", "it-second", models.PostStatusPublished, &t2, nil)
	create("Hidden Draft", "it-draft", models.PostStatusDraft, nil, &cat)

	// Published status without a timestamp is not visible.
	if _, err := db.Exec(`UPDATE blog_posts SET published_at = NULL, status = 'published' WHERE slug = 'it-draft'`); err != nil {
		t.Fatalf("prepare hidden post: %v", err)
	}

	list, err := s.ListPublished(ctx, models.PostFilters{PageSize: 10})
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	if list.Total != 2 || len(list.Posts) != 2 {
		t.Fatalf("total = %d posts = %d, want 2 and 2", list.Total, len(list.Posts))
	}
	if list.Posts[0].ID != second.ID {
		t.Errorf("listing should be newest first")
	}

	if p, err := s.FindBySlug(ctx, "it-draft"); err != nil || p != nil {
		t.Errorf("FindBySlug(hidden) = %v, %v; want nil, nil", p, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.IncrementViews(ctx, first.ID); err != nil {
				t.Errorf("IncrementViews: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := s.FindBySlug(ctx, "it-first")
	if err != nil || got == nil {
		t.Fatalf("FindBySlug: %v, %v", got, err)
	}
	if got.ViewCount != 2 {
		t.Errorf("view count = %d, want 2", got.ViewCount)
	}

	related, err := s.Related(ctx, first.ID, 3)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(related) != 1 || related[0].ID != second.ID {
		t.Errorf("unexpected related posts %+v", related)
	}

	results, err := s.Search(ctx, "second", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != second.ID {
		t.Errorf("unexpected search results %+v", results)
	}

	tags, err := NewTagStore(db, project).ListWithCounts(ctx)
	if err != nil {
		t.Fatalf("ListWithCounts: %v", err)
	}
	for _, tag := range tags {
		if tag.Slug == "it-tag" && tag.PostCount != 2 {
			t.Errorf("it-tag count = %d, want 2", tag.PostCount)
		}
	}
}
