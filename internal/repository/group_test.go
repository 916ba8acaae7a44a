package repository

import (
	"context"
	"regexp"
	"testing"

	"quill/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestGroupRepository_GetBySlug(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "groups" WHERE slug = $1 ORDER BY "groups"."id" LIMIT $2`)).
		WithArgs("cats", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug"}).AddRow(1, "Cats", "cats"))

	group, err := repo.GetBySlug(ctx, "cats")
	assert.NoError(t, err)
	assert.Equal(t, "Cats", group.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepository_GetBySlug_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "groups" WHERE slug = $1`)).
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetBySlug(ctx, "missing")
	assert.Error(t, err)
	assert.True(t, models.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "groups" ORDER BY title ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug"}).
			AddRow(2, "Art", "art").
			AddRow(1, "Cats", "cats"))

	groups, err := repo.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, groups, 2)
	assert.Equal(t, "Art", groups[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}
