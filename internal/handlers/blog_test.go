package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"labsite/internal/models"
)

func samplePosts() []models.DisplayPost {
	return []models.DisplayPost{
		{ID: uuid.New(), Title: "First", Slug: "first", Content: "Hello **world**", Tags: []string{"go"}},
		{ID: uuid.New(), Title: "Second", Slug: "second", Content: "More", Tags: []string{}},
	}
}

func newTestBlog(posts *fakePosts) (*Blog, *countingRenderer) {
	r := &countingRenderer{}
	return NewBlog(posts,
		fakeCategories{cats: []models.Category{{Name: "Edge", Slug: "edge", PostCount: 2}}},
		fakeTags{tags: []models.Tag{{Name: "go", Slug: "go", PostCount: 1}}},
		r, nil), r
}

func TestListPosts(t *testing.T) {
	posts := &fakePosts{posts: samplePosts()}
	b, _ := newTestBlog(posts)

	rr := serve(t, "GET", "/posts", "/posts?category=Edge&tag=go&search=hi&page=1&pageSize=1", "", b.ListPosts)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}
	var list models.PostList
	decodeBody(t, rr, &list)

	want := models.PostFilters{Category: "Edge", Tag: "go", Search: "hi", Page: 1, PageSize: 1}
	if posts.lastFilters != want {
		t.Errorf("filters = %+v, want %+v", posts.lastFilters, want)
	}
	if list.Total != 2 || list.TotalPages != 2 || list.PageSize != 1 {
		t.Errorf("unexpected pagination %+v", list)
	}
}

func TestListPostsBadQuery(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"non-numeric page", "/posts?page=two"},
		{"non-numeric page size", "/posts?pageSize=x"},
		{"negative page", "/posts?page=-1"},
		{"page size too large", "/posts?pageSize=500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := &fakePosts{}
			b, _ := newTestBlog(posts)
			rr := serve(t, "GET", "/posts", tt.target, "", b.ListPosts)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
			var body errorBody
			decodeBody(t, rr, &body)
			if body.Error == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestListPostsStoreError(t *testing.T) {
	b, _ := newTestBlog(&fakePosts{err: errStore})
	rr := serve(t, "GET", "/posts", "/posts", "", b.ListPosts)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestGetPost(t *testing.T) {
	posts := &fakePosts{posts: samplePosts()}
	b, renderer := newTestBlog(posts)

	rr := serve(t, "GET", "/posts/{slug}", "/posts/first", "", b.GetPost)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}
	var got struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
		HTML  string   `json:"html"`
	}
	decodeBody(t, rr, &got)
	if got.Title != "First" || got.HTML != "<p>Hello **world**</p>" {
		t.Errorf("unexpected post %+v", got)
	}
	if renderer.calls != 1 {
		t.Errorf("renderer calls = %d, want 1", renderer.calls)
	}
	if posts.views[posts.posts[0].ID] != 1 {
		t.Errorf("views = %v", posts.views)
	}
}

func TestGetPostViewErrorStillServes(t *testing.T) {
	posts := &fakePosts{posts: samplePosts(), viewErr: errStore}
	b, _ := newTestBlog(posts)

	rr := serve(t, "GET", "/posts/{slug}", "/posts/second", "", b.GetPost)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestGetPostNotFound(t *testing.T) {
	posts := &fakePosts{posts: samplePosts()}
	b, _ := newTestBlog(posts)

	rr := serve(t, "GET", "/posts/{slug}", "/posts/nope", "", b.GetPost)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	var body errorBody
	decodeBody(t, rr, &body)
	if body.Error != "Post not found" {
		t.Errorf("error = %q", body.Error)
	}
	if len(posts.views) != 0 {
		t.Error("views must not be counted for missing posts")
	}
}

func TestRelatedPosts(t *testing.T) {
	posts := &fakePosts{posts: samplePosts()}
	b, _ := newTestBlog(posts)

	rr := serve(t, "GET", "/posts/{slug}/related", "/posts/first/related?limit=2", "", b.RelatedPosts)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got postsResponse
	decodeBody(t, rr, &got)
	if len(got.Posts) != 1 || got.Posts[0].Slug != "second" {
		t.Errorf("related = %+v", got.Posts)
	}
	if posts.lastLimit != 2 {
		t.Errorf("limit = %d, want 2", posts.lastLimit)
	}

	rr = serve(t, "GET", "/posts/{slug}/related", "/posts/none/related", "", b.RelatedPosts)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown slug status = %d, want 404", rr.Code)
	}

	rr = serve(t, "GET", "/posts/{slug}/related", "/posts/first/related?limit=99", "", b.RelatedPosts)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("oversized limit status = %d, want 400", rr.Code)
	}
}

func TestSearch(t *testing.T) {
	posts := &fakePosts{posts: samplePosts()}
	b, _ := newTestBlog(posts)

	rr := serve(t, "GET", "/search", "/search?q=first&limit=4", "", b.Search)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if posts.lastQuery != "first" || posts.lastLimit != 4 {
		t.Errorf("query = %q limit = %d", posts.lastQuery, posts.lastLimit)
	}

	rr = serve(t, "GET", "/search", "/search", "", b.Search)
	var got postsResponse
	decodeBody(t, rr, &got)
	if got.Posts == nil || len(got.Posts) != 0 {
		t.Errorf("blank search = %v, want empty list", got.Posts)
	}
}

func TestRecentAndPopular(t *testing.T) {
	posts := &fakePosts{posts: samplePosts()}
	b, _ := newTestBlog(posts)

	rr := serve(t, "GET", "/recent", "/recent?limit=3", "", b.Recent)
	var recent postsResponse
	decodeBody(t, rr, &recent)
	if len(recent.Posts) != 2 || posts.lastLimit != 3 {
		t.Errorf("recent = %d posts, limit %d", len(recent.Posts), posts.lastLimit)
	}

	// The store returns nil here; the response still carries [].
	rr = serve(t, "GET", "/popular", "/popular", "", b.Popular)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Body.String(); got != "{\"posts\":[]}\n" {
		t.Errorf("popular body = %q", got)
	}

	b, _ = newTestBlog(&fakePosts{err: errStore})
	rr = serve(t, "GET", "/recent", "/recent", "", b.Recent)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("store error status = %d, want 500", rr.Code)
	}
}

func TestCategoriesAndTags(t *testing.T) {
	b, _ := newTestBlog(&fakePosts{})

	rr := serve(t, "GET", "/categories", "/categories", "", b.Categories)
	var cats struct {
		Categories []models.Category `json:"categories"`
	}
	decodeBody(t, rr, &cats)
	if len(cats.Categories) != 1 || cats.Categories[0].PostCount != 2 {
		t.Errorf("categories = %+v", cats.Categories)
	}

	rr = serve(t, "GET", "/tags", "/tags", "", b.Tags)
	var tags struct {
		Tags []models.Tag `json:"tags"`
	}
	decodeBody(t, rr, &tags)
	if len(tags.Tags) != 1 || tags.Tags[0].Name != "go" {
		t.Errorf("tags = %+v", tags.Tags)
	}

	failing := NewBlog(&fakePosts{}, fakeCategories{err: errStore}, fakeTags{err: errStore}, &countingRenderer{}, nil)
	if rr := serve(t, "GET", "/categories", "/categories", "", failing.Categories); rr.Code != http.StatusInternalServerError {
		t.Errorf("categories error status = %d", rr.Code)
	}
	if rr := serve(t, "GET", "/tags", "/tags", "", failing.Tags); rr.Code != http.StatusInternalServerError {
		t.Errorf("tags error status = %d", rr.Code)
	}
}
