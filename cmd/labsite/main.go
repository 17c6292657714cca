// Package main is the entry point for the labsite API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labsite/internal/cache"
	"labsite/internal/config"
	"labsite/internal/database"
	"labsite/internal/emailcheck"
	"labsite/internal/handlers"
	"labsite/internal/mailer"
	"labsite/internal/markdown"
	"labsite/internal/middleware"
	"labsite/internal/router"
	"labsite/internal/storage"
	"labsite/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if !cfg.IsDev() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})))
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"project", cfg.ProjectSlug,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db, cfg.ProjectSlug, cfg.AuthorName); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	if id, err := store.NewProjectStore(db).ResolveID(ctx, cfg.ProjectSlug); err != nil {
		slog.Error("failed to resolve project", "slug", cfg.ProjectSlug, "error", err)
		os.Exit(1)
	} else if id == nil {
		slog.Warn("project not found, blog endpoints will return empty results", "slug", cfg.ProjectSlug)
	}

	// Valkey only caches rendered posts, so the server runs without it.
	var htmlCache *cache.HTMLCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, rendered posts will not be cached", "error", err)
	} else {
		defer valkeyClient.Close()
		htmlCache = cache.NewHTMLCache(valkeyClient, cache.DefaultHTMLTTL)
	}

	// Featured image URLs are composed from the public media host.
	media := storage.PublicURL(cfg.MediaPublicURL)

	postStore := store.NewPostStore(db, cfg.ProjectSlug, cfg.AuthorName, media)
	categoryStore := store.NewCategoryStore(db, cfg.ProjectSlug)
	tagStore := store.NewTagStore(db, cfg.ProjectSlug)

	renderer := markdown.New(markdown.Options{SiteDomain: cfg.SiteDomain})

	// Outbound services are optional; a nil client must stay a nil interface.
	var validator handlers.EmailValidator
	if c := emailcheck.New(cfg.SpamidateAPIKey, cfg.SpamidateBaseURL); c != nil {
		validator = c
	} else {
		slog.Warn("SPAMIDATE_API_KEY not set, using basic email validation")
	}
	var sender handlers.MailSender
	if c := mailer.New(cfg.EmailAPIKey, cfg.EmailAPIBaseURL, cfg.MailFrom, cfg.MailFromName); c != nil {
		sender = c
	} else {
		slog.Warn("EMAIL_API_KEY not set, contact form is disabled")
	}

	blogHandlers := handlers.NewBlog(postStore, categoryStore, tagStore, renderer, htmlCache)
	contactHandlers := handlers.NewContact(validator, sender, cfg.ContactTo, cfg.SiteDomain)

	formLimiter := middleware.NewRateLimiter(cfg.ContactRateLimit, time.Minute)
	defer formLimiter.Stop()

	r := router.New(blogHandlers, contactHandlers, formLimiter)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
