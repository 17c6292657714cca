package models

import (
	"math"
	"strings"
)

const (
	// DefaultPageSize is used when a listing request omits the page size.
	DefaultPageSize = 10

	// MaxPageSize caps the number of posts returned on a single page.
	MaxPageSize = 100
)

// PostFilters narrows a published-post listing. Empty strings disable the
// corresponding filter.
type PostFilters struct {
	Category string
	Tag      string
	Search   string
	Page     int
	PageSize int
}

// Normalize trims the text filters and clamps pagination: pages below 1
// become 1, a missing page size becomes DefaultPageSize and oversized
// pages are capped at MaxPageSize.
func (f PostFilters) Normalize() PostFilters {
	f.Category = strings.TrimSpace(f.Category)
	f.Tag = strings.TrimSpace(f.Tag)
	f.Search = strings.TrimSpace(f.Search)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

// Offset returns the number of rows to skip for the current page.
func (f PostFilters) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// PostList is one page of a published-post listing.
type PostList struct {
	Posts        []DisplayPost `json:"posts"`
	Total        int64         `json:"total"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	TotalPages   int           `json:"total_pages"`
	NextPage     *int          `json:"next_page,omitempty"`
	PreviousPage *int          `json:"previous_page,omitempty"`
}

// NewPostList assembles a page of results and derives the page count and
// neighbour page numbers from the total.
func NewPostList(posts []DisplayPost, total int64, page, pageSize int) PostList {
	if posts == nil {
		posts = []DisplayPost{}
	}
	list := PostList{
		Posts:    posts,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	if pageSize > 0 {
		list.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}

	if list.Page < list.TotalPages {
		next := list.Page + 1
		list.NextPage = &next
	}
	if list.Page > 1 && list.Page <= list.TotalPages {
		prev := list.Page - 1
		list.PreviousPage = &prev
	}
	return list
}

// EmptyPostList is returned when the tenant cannot be resolved.
func EmptyPostList(page, pageSize int) PostList {
	return NewPostList(nil, 0, page, pageSize)
}
