package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"labsite/internal/models"
)

func TestCategoryListWithCounts(t *testing.T) {
	db, mock := mockDB(t)
	expectProject(mock, testSlug, &testProjectID)

	rows := sqlmock.NewRows([]string{
		"id", "name", "slug", "description", "parent_id", "sort_order", "created_at", "post_count",
	}).
		AddRow(uuid.NewString(), "Edge Computing", "edge-computing", "Close to users", nil, 0, testPublished, 4).
		AddRow(uuid.NewString(), "Empty", "empty", nil, nil, 1, testPublished, 0)
	mock.ExpectQuery(`ORDER BY c.sort_order, c.name`).
		WithArgs(testProjectID).
		WillReturnRows(rows)

	cats, err := NewCategoryStore(db, testSlug).ListWithCounts(context.Background())
	if err != nil {
		t.Fatalf("ListWithCounts: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("got %d categories, want 2", len(cats))
	}
	if cats[0].PostCount != 4 || cats[1].PostCount != 0 {
		t.Errorf("counts = %d, %d", cats[0].PostCount, cats[1].PostCount)
	}
	if cats[1].Description != nil {
		t.Errorf("Description = %v, want nil", cats[1].Description)
	}
}

func TestCategoryListUnknownProject(t *testing.T) {
	db, mock := mockDB(t)
	expectProject(mock, testSlug, nil)

	cats, err := NewCategoryStore(db, testSlug).ListWithCounts(context.Background())
	if err != nil {
		t.Fatalf("ListWithCounts: %v", err)
	}
	if cats == nil || len(cats) != 0 {
		t.Errorf("got %v, want empty slice", cats)
	}
}

func TestCategoryFindBySlugNotFound(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery(`FROM blog_categories WHERE slug = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, err := NewCategoryStore(db, testSlug).FindBySlug(context.Background(), "nope")
	if err != nil || c != nil {
		t.Errorf("FindBySlug = %v, %v; want nil, nil", c, err)
	}
}

func TestTagListWithCounts(t *testing.T) {
	db, mock := mockDB(t)
	expectProject(mock, testSlug, &testProjectID)

	rows := sqlmock.NewRows([]string{"id", "name", "slug", "created_at", "post_count"}).
		AddRow(uuid.NewString(), "edge", "edge", testPublished, 9).
		AddRow(uuid.NewString(), "unused", "unused", testPublished, 0)
	mock.ExpectQuery(`ORDER BY post_count DESC, t.name`).
		WithArgs(testProjectID).
		WillReturnRows(rows)

	tags, err := NewTagStore(db, testSlug).ListWithCounts(context.Background())
	if err != nil {
		t.Fatalf("ListWithCounts: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "edge" || tags[1].PostCount != 0 {
		t.Errorf("unexpected tags %+v", tags)
	}
}

func TestMediaFindByIDNotFound(t *testing.T) {
	db, mock := mockDB(t)
	id := uuid.New()
	mock.ExpectQuery(`FROM media_files WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	m, err := NewMediaStore(db).FindByID(context.Background(), id)
	if err != nil || m != nil {
		t.Errorf("FindByID = %v, %v; want nil, nil", m, err)
	}
}

func TestMediaCreateDefaultsToPublic(t *testing.T) {
	db, mock := mockDB(t)
	id := uuid.New()
	mock.ExpectQuery(`INSERT INTO media_files`).
		WithArgs("cover.png", "image/png", "blog/x.png", "public", nil).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "filename", "file_type", "r2_key", "visibility", "thumbnail_url", "created_at",
		}).AddRow(id.String(), "cover.png", "image/png", "blog/x.png", "public", nil, testPublished))

	m, err := NewMediaStore(db).Create(context.Background(), &models.MediaFile{
		Filename: "cover.png",
		FileType: "image/png",
		R2Key:    "blog/x.png",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.ID != id || m.Visibility != models.MediaPublic {
		t.Errorf("unexpected media %+v", m)
	}
}

func TestMediaFindByID(t *testing.T) {
	db, mock := mockDB(t)
	id := uuid.New()
	mock.ExpectQuery(`FROM media_files WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "filename", "file_type", "r2_key", "visibility", "thumbnail_url", "created_at",
		}).AddRow(id.String(), "cover.png", "image/png", "blog/x.png", "public", nil, testPublished))

	m, err := NewMediaStore(db).FindByID(context.Background(), id)
	if err != nil || m == nil {
		t.Fatalf("FindByID = %v, %v", m, err)
	}
	if m.R2Key != "blog/x.png" {
		t.Errorf("R2Key = %q", m.R2Key)
	}
}

func TestMediaDelete(t *testing.T) {
	db, mock := mockDB(t)
	id := uuid.New()
	mock.ExpectExec(`DELETE FROM media_files WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewMediaStore(db).Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
