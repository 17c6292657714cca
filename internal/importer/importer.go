package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"

	"github.com/google/uuid"

	"labsite/internal/models"
	"labsite/internal/slug"
	"labsite/internal/storage"
)

// ErrSlugTaken is returned when the project already has a post with the
// document's slug.
var ErrSlugTaken = errors.New("slug already in use")

// PostCreator persists posts for the configured project.
type PostCreator interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
}

// MediaRecorder records uploaded media metadata.
type MediaRecorder interface {
	Create(ctx context.Context, m *models.MediaFile) (*models.MediaFile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryStore looks up and creates blog categories.
type CategoryStore interface {
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
}

// Uploader stores objects in the media bucket.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
}

// Image is a featured image to upload alongside the post.
type Image struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// Options control a single import.
type Options struct {
	Publish bool
	Image   *Image
}

// Importer creates posts from markdown documents.
type Importer struct {
	posts      PostCreator
	media      MediaRecorder
	categories CategoryStore
	uploader   Uploader
}

// New creates an importer. uploader may be nil when storage is not
// configured; imports with an image then fail.
func New(posts PostCreator, media MediaRecorder, categories CategoryStore, uploader Uploader) *Importer {
	return &Importer{posts: posts, media: media, categories: categories, uploader: uploader}
}

// Import parses src and inserts it as a post.
func (im *Importer) Import(ctx context.Context, src []byte, opts Options) (*models.Post, error) {
	doc, err := Parse(src)
	if err != nil {
		return nil, err
	}
	post, err := doc.Post(opts.Publish)
	if err != nil {
		return nil, err
	}

	exists, err := im.posts.SlugExists(ctx, post.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrSlugTaken, post.Slug)
	}

	if post.Category != nil {
		if err := im.ensureCategory(ctx, *post.Category); err != nil {
			return nil, err
		}
	}

	var image *models.MediaFile
	if opts.Image != nil {
		image, err = im.uploadImage(ctx, opts.Image)
		if err != nil {
			return nil, err
		}
		post.FeaturedImageID = &image.ID
	}

	created, err := im.posts.Create(ctx, post)
	if err != nil {
		if image != nil {
			im.discardImage(ctx, image)
		}
		return nil, err
	}
	slog.Info("post imported", "slug", created.Slug, "status", created.Status, "id", created.ID)
	return created, nil
}

// ensureCategory creates the named category when it does not exist yet,
// so the post can be linked to it.
func (im *Importer) ensureCategory(ctx context.Context, name string) error {
	catSlug := slug.Generate(name)
	if catSlug == "" {
		return nil
	}
	existing, err := im.categories.FindBySlug(ctx, catSlug)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if _, err := im.categories.Create(ctx, &models.Category{Name: name, Slug: catSlug}); err != nil {
		return err
	}
	slog.Info("category created", "name", name, "slug", catSlug)
	return nil
}

func (im *Importer) uploadImage(ctx context.Context, img *Image) (*models.MediaFile, error) {
	if im.uploader == nil {
		return nil, errors.New("featured image given but storage is not configured")
	}

	contentType := img.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(img.Filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file := &models.MediaFile{
		Filename:   filepath.Base(img.Filename),
		FileType:   contentType,
		R2Key:      storage.ObjectKey("blog", img.Filename),
		Visibility: models.MediaPublic,
	}
	if !file.IsImage() {
		return nil, fmt.Errorf("featured image %s has type %s, not an image", file.Filename, contentType)
	}

	key := file.R2Key
	if err := im.uploader.Upload(ctx, key, contentType, img.Body, img.Size); err != nil {
		return nil, fmt.Errorf("upload featured image: %w", err)
	}

	m, err := im.media.Create(ctx, file)
	if err != nil {
		if delErr := im.uploader.Delete(ctx, key); delErr != nil {
			slog.Warn("orphaned media object", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("record featured image: %w", err)
	}
	slog.Info("featured image uploaded", "key", key, "media_id", m.ID)
	return m, nil
}

// discardImage removes the media row and object of an image whose post
// could not be created.
func (im *Importer) discardImage(ctx context.Context, m *models.MediaFile) {
	if err := im.media.Delete(ctx, m.ID); err != nil {
		slog.Warn("orphaned media row", "media_id", m.ID, "error", err)
	}
	if err := im.uploader.Delete(ctx, m.R2Key); err != nil {
		slog.Warn("orphaned media object", "key", m.R2Key, "error", err)
	}
}
