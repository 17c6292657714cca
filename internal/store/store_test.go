// store_test.go provides the shared helpers for the store tests: a
// sqlmock-backed database for unit tests and a real PostgreSQL connection
// for integration tests, which are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"labsite/internal/database"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with the same defaults as the config package.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "labsite")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "labsite")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanProject removes a test project and everything that belongs to it.
func cleanProject(t *testing.T, db *sql.DB, slug string) {
	t.Helper()
	db.Exec(`DELETE FROM blog_posts WHERE project_id IN (SELECT id FROM projects WHERE slug = $1)`, slug)
	db.Exec(`DELETE FROM projects WHERE slug = $1`, slug)
}

// mockDB returns a sqlmock database. Unmet expectations fail the test.
func mockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		_ = db.Close()
	})
	return db, mock
}

// fakeMedia composes media URLs like the storage package does.
type fakeMedia struct{ base string }

func (f fakeMedia) FileURL(key string) string { return f.base + "/" + key }

var (
	testProjectID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testPublished = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

// expectProject registers the tenant lookup. A nil id simulates a missing
// project.
func expectProject(mock sqlmock.Sqlmock, slug string, id *uuid.UUID) {
	q := mock.ExpectQuery(`SELECT id FROM projects WHERE slug = \$1`).WithArgs(slug)
	rows := sqlmock.NewRows([]string{"id"})
	if id != nil {
		rows.AddRow(id.String())
	}
	q.WillReturnRows(rows)
}

var postRowColumns = []string{
	"id", "project_id", "author_id", "title", "slug", "content",
	"excerpt", "featured_image_id", "status", "ai_generated", "ai_model",
	"category", "tags", "meta_description", "meta_keywords", "canonical_url",
	"scheduled_for", "published_at", "view_count", "created_at", "updated_at",
	"r2_key",
}

// postRow is the subset of post fields the tests vary.
type postRow struct {
	id       uuid.UUID
	title    string
	slug     string
	content  string
	category any
	tags     any
	imageKey any
	views    int64
}

func newPostRows(posts ...postRow) *sqlmock.Rows {
	rows := sqlmock.NewRows(postRowColumns)
	for _, p := range posts {
		var imageID any
		if p.imageKey != nil {
			imageID = uuid.NewString()
		}
		rows.AddRow(
			p.id.String(), testProjectID.String(), nil, p.title, p.slug, p.content,
			"An excerpt", imageID, "published", false, nil,
			p.category, p.tags, nil, nil, nil,
			nil, testPublished, p.views, testPublished, testPublished,
			p.imageKey,
		)
	}
	return rows
}
