// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"labsite/internal/cache"
	"labsite/internal/models"
)

// PostReader is the read side of the post repository.
type PostReader interface {
	ListPublished(ctx context.Context, f models.PostFilters) (models.PostList, error)
	FindBySlug(ctx context.Context, slug string) (*models.DisplayPost, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Related(ctx context.Context, id uuid.UUID, limit int) ([]models.DisplayPost, error)
	Search(ctx context.Context, q string, limit int) ([]models.DisplayPost, error)
	Recent(ctx context.Context, limit int) ([]models.DisplayPost, error)
	Popular(ctx context.Context, limit int) ([]models.DisplayPost, error)
}

// CategoryLister lists categories with their published post counts.
type CategoryLister interface {
	ListWithCounts(ctx context.Context) ([]models.Category, error)
}

// TagLister lists tags with their published post counts.
type TagLister interface {
	ListWithCounts(ctx context.Context) ([]models.Tag, error)
}

// Renderer converts a Markdown post body to an HTML fragment.
type Renderer interface {
	ToHTML(source string) string
}

// Blog groups the read-only blog endpoints.
type Blog struct {
	posts      PostReader
	categories CategoryLister
	tags       TagLister
	renderer   Renderer
	htmlCache  *cache.HTMLCache
}

// NewBlog creates the blog handler group. htmlCache may be nil.
func NewBlog(posts PostReader, categories CategoryLister, tags TagLister, renderer Renderer, htmlCache *cache.HTMLCache) *Blog {
	return &Blog{
		posts:      posts,
		categories: categories,
		tags:       tags,
		renderer:   renderer,
		htmlCache:  htmlCache,
	}
}

type listQuery struct {
	Category string `json:"category" validate:"max=200"`
	Tag      string `json:"tag" validate:"max=100"`
	Search   string `json:"search" validate:"max=200"`
	Page     int    `json:"page" validate:"gte=0"`
	PageSize int    `json:"pageSize" validate:"gte=0,lte=100"`
}

type limitQuery struct {
	Limit int `json:"limit" validate:"gte=0,lte=50"`
}

type searchQuery struct {
	Q     string `json:"q" validate:"max=200"`
	Limit int    `json:"limit" validate:"gte=0,lte=50"`
}

// postResponse is a single post with its rendered body.
type postResponse struct {
	models.DisplayPost
	HTML string `json:"html"`
}

type postsResponse struct {
	Posts []models.DisplayPost `json:"posts"`
}

// queryInt reads an optional integer query parameter. Absent means zero,
// which the store turns into its default.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return n, nil
}

// checkQuery validates q and writes a 400 on failure.
func checkQuery(w http.ResponseWriter, q any) bool {
	if err := validate.Struct(q); err != nil {
		msg := "Invalid query parameters"
		if fe := firstFieldError(err); fe != nil {
			msg = "Invalid value for " + fe.Field()
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func readLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	if !checkQuery(w, limitQuery{Limit: limit}) {
		return 0, false
	}
	return limit, true
}

func writePosts(w http.ResponseWriter, posts []models.DisplayPost) {
	if posts == nil {
		posts = []models.DisplayPost{}
	}
	writeJSON(w, http.StatusOK, postsResponse{Posts: posts})
}

// ListPosts returns one page of published posts.
func (b *Blog) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := listQuery{
		Category: r.URL.Query().Get("category"),
		Tag:      r.URL.Query().Get("tag"),
		Search:   r.URL.Query().Get("search"),
	}
	var err error
	if q.Page, err = queryInt(r, "page"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.PageSize, err = queryInt(r, "pageSize"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !checkQuery(w, q) {
		return
	}

	list, err := b.posts.ListPublished(r.Context(), models.PostFilters{
		Category: q.Category,
		Tag:      q.Tag,
		Search:   q.Search,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		slog.Error("list published posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetPost returns a single post with its rendered HTML and counts the view.
func (b *Blog) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postSlug := chi.URLParam(r, "slug")

	post, err := b.posts.FindBySlug(ctx, postSlug)
	if err != nil {
		slog.Error("find post failed", "slug", postSlug, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load post")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	if err := b.posts.IncrementViews(ctx, post.ID); err != nil {
		slog.Warn("increment views failed", "post_id", post.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, postResponse{
		DisplayPost: *post,
		HTML:        b.render(ctx, post),
	})
}

// render returns the post body as HTML, going through the fragment cache.
func (b *Blog) render(ctx context.Context, post *models.DisplayPost) string {
	key := cache.PostKey(post.ID, post.Content)
	if html, ok := b.htmlCache.Get(ctx, key); ok {
		return html
	}
	html := b.renderer.ToHTML(post.Content)
	b.htmlCache.Set(ctx, key, html)
	return html
}

// RelatedPosts returns posts related to the one identified by slug.
func (b *Blog) RelatedPosts(w http.ResponseWriter, r *http.Request) {
	limit, ok := readLimit(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	postSlug := chi.URLParam(r, "slug")

	post, err := b.posts.FindBySlug(ctx, postSlug)
	if err != nil {
		slog.Error("find post failed", "slug", postSlug, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load related posts")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	related, err := b.posts.Related(ctx, post.ID, limit)
	if err != nil {
		slog.Error("related posts failed", "post_id", post.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load related posts")
		return
	}
	writePosts(w, related)
}

// Search returns posts matching q, title matches first.
func (b *Blog) Search(w http.ResponseWriter, r *http.Request) {
	q := searchQuery{Q: r.URL.Query().Get("q")}
	var err error
	if q.Limit, err = queryInt(r, "limit"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !checkQuery(w, q) {
		return
	}

	posts, err := b.posts.Search(r.Context(), q.Q, q.Limit)
	if err != nil {
		slog.Error("search posts failed", "query", q.Q, "error", err)
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	writePosts(w, posts)
}

// Recent returns the newest published posts.
func (b *Blog) Recent(w http.ResponseWriter, r *http.Request) {
	b.sidebar(w, r, "recent", b.posts.Recent)
}

// Popular returns the most viewed published posts.
func (b *Blog) Popular(w http.ResponseWriter, r *http.Request) {
	b.sidebar(w, r, "popular", b.posts.Popular)
}

func (b *Blog) sidebar(w http.ResponseWriter, r *http.Request, name string, fetch func(context.Context, int) ([]models.DisplayPost, error)) {
	limit, ok := readLimit(w, r)
	if !ok {
		return
	}
	posts, err := fetch(r.Context(), limit)
	if err != nil {
		slog.Error(name+" posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}
	writePosts(w, posts)
}

// Categories lists categories with post counts.
func (b *Blog) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := b.categories.ListWithCounts(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load categories")
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// Tags lists tags with post counts.
func (b *Blog) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := b.tags.ListWithCounts(r.Context())
	if err != nil {
		slog.Error("list tags failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load tags")
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}
