// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides in-memory fakes for the handler tests.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"labsite/internal/emailcheck"
	"labsite/internal/mailer"
	"labsite/internal/models"
)

var errStore = errors.New("store unavailable")

// fakePosts is an in-memory PostReader.
type fakePosts struct {
	mu      sync.Mutex
	posts   []models.DisplayPost
	views   map[uuid.UUID]int
	err     error
	viewErr error

	lastFilters models.PostFilters
	lastLimit   int
	lastQuery   string
}

func (f *fakePosts) ListPublished(_ context.Context, filters models.PostFilters) (models.PostList, error) {
	f.lastFilters = filters
	if f.err != nil {
		return models.PostList{}, f.err
	}
	n := filters.Normalize()
	return models.NewPostList(f.posts, int64(len(f.posts)), n.Page, n.PageSize), nil
}

func (f *fakePosts) FindBySlug(_ context.Context, slug string) (*models.DisplayPost, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.posts {
		if p.Slug == slug {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakePosts) IncrementViews(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.views == nil {
		f.views = map[uuid.UUID]int{}
	}
	f.views[id]++
	return f.viewErr
}

func (f *fakePosts) Related(_ context.Context, id uuid.UUID, limit int) ([]models.DisplayPost, error) {
	f.lastLimit = limit
	var out []models.DisplayPost
	for _, p := range f.posts {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePosts) Search(_ context.Context, q string, limit int) ([]models.DisplayPost, error) {
	f.lastQuery, f.lastLimit = q, limit
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(q) == "" {
		return []models.DisplayPost{}, nil
	}
	return f.posts, nil
}

func (f *fakePosts) Recent(_ context.Context, limit int) ([]models.DisplayPost, error) {
	f.lastLimit = limit
	return f.posts, f.err
}

func (f *fakePosts) Popular(_ context.Context, limit int) ([]models.DisplayPost, error) {
	f.lastLimit = limit
	return nil, f.err
}

type fakeCategories struct {
	cats []models.Category
	err  error
}

func (f fakeCategories) ListWithCounts(context.Context) ([]models.Category, error) {
	return f.cats, f.err
}

type fakeTags struct {
	tags []models.Tag
	err  error
}

func (f fakeTags) ListWithCounts(context.Context) ([]models.Tag, error) {
	return f.tags, f.err
}

// countingRenderer wraps content in a paragraph and counts conversions.
type countingRenderer struct{ calls int }

func (r *countingRenderer) ToHTML(src string) string {
	r.calls++
	return "<p>" + src + "</p>"
}

type fakeValidator struct {
	result *emailcheck.Result
	err    error
	calls  int
}

func (f *fakeValidator) Validate(_ context.Context, email string) (*emailcheck.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	r.Email = email
	return &r, nil
}

type fakeSender struct {
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// serve routes a single request through a chi router so URL params resolve.
func serve(t *testing.T, method, pattern, target, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}
