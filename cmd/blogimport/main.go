// Command blogimport imports a Markdown file with YAML front matter as a
// blog post of the configured project.
//
// Usage:
//
//	blogimport -file post.md [-publish] [-image cover.jpg]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"labsite/internal/config"
	"labsite/internal/database"
	"labsite/internal/importer"
	"labsite/internal/storage"
	"labsite/internal/store"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	file := flag.String("file", "", "markdown file to import (required)")
	publish := flag.Bool("publish", false, "publish the post instead of saving a draft")
	image := flag.String("image", "", "featured image to upload to media storage")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*file, *image, *publish); err != nil {
		slog.Error("import failed", "file", *file, "error", err)
		os.Exit(1)
	}
}

func run(file, image string, publish bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := store.NewProjectStore(db).Ensure(ctx, cfg.ProjectSlug, cfg.AuthorName); err != nil {
		return err
	}

	var uploader importer.Uploader
	s3Client, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	if err != nil {
		return err
	}
	if s3Client != nil {
		uploader = s3Client
		slog.Info("media storage configured", "bucket", s3Client.Bucket())
	}

	media := storage.PublicURL(cfg.MediaPublicURL)
	mediaStore := store.NewMediaStore(db)
	im := importer.New(
		store.NewPostStore(db, cfg.ProjectSlug, cfg.AuthorName, media),
		mediaStore,
		store.NewCategoryStore(db, cfg.ProjectSlug),
		uploader,
	)

	opts := importer.Options{Publish: publish}
	if image != "" {
		f, err := os.Open(image)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat image: %w", err)
		}
		opts.Image = &importer.Image{Filename: image, Body: f, Size: info.Size()}
	}

	post, err := im.Import(ctx, src, opts)
	if err != nil {
		return err
	}
	visibility := "not visible"
	if post.IsVisible() {
		visibility = "visible"
	}
	fmt.Printf("imported %q as /%s (%s, %s)\n", post.Title, post.Slug, post.Status, visibility)

	if post.FeaturedImageID != nil {
		m, err := mediaStore.FindByID(ctx, *post.FeaturedImageID)
		if err != nil {
			return err
		}
		if m != nil {
			fmt.Printf("featured image: %s\n", media.FileURL(m.R2Key))
		}
	}
	return nil
}
