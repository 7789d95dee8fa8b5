package repository

import (
	"context"
	"regexp"
	"testing"

	"storyhive/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestStoryRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStoryRepository(db)
	ctx := context.Background()

	story := &models.Story{Title: "Test Story", Content: "Content", AuthorID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "stories"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, story)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStoryRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		storyID       uint
		viewerID      uint
		mockBehavior  func()
		expectedTitle string
		expectedLiked bool
		expectedCode  string
	}{
		{
			name:     "Success with viewer liked flag",
			storyID:  1,
			viewerID: 2,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "title", "comments_count", "likes_count", "liked"}).
					AddRow(1, "Story 1", 5, 10, true)
				mock.ExpectQuery(`SELECT stories\.\*.+as comments_count.+as likes_count.+as liked FROM "stories"`).
					WillReturnRows(rows)
			},
			expectedTitle: "Story 1",
			expectedLiked: true,
		},
		{
			name:     "Anonymous viewer gets liked=false",
			storyID:  1,
			viewerID: 0,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "title", "comments_count", "likes_count", "liked"}).
					AddRow(1, "Story 1", 5, 10, false)
				mock.ExpectQuery(`SELECT stories\.\*.+false as liked FROM "stories"`).
					WillReturnRows(rows)
			},
			expectedTitle: "Story 1",
		},
		{
			name:     "Not found",
			storyID:  99,
			viewerID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(`SELECT stories\.\*.+FROM "stories"`).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			story, err := repo.GetByID(ctx, tt.storyID, tt.viewerID)

			if tt.expectedCode != "" {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedCode, models.CodeOf(err))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedTitle, story.Title)
				assert.Equal(t, 5, story.CommentsCount)
				assert.Equal(t, 10, story.LikesCount)
				assert.Equal(t, tt.expectedLiked, story.Liked)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStoryRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStoryRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "title", "comments_count", "likes_count", "liked"}).
		AddRow(2, "Newer", 0, 3, true).
		AddRow(1, "Older", 1, 0, false)
	mock.ExpectQuery(`SELECT stories\.\*.+FROM "stories".+ORDER BY created_at DESC`).
		WillReturnRows(rows)

	stories, err := repo.List(ctx, 7)
	assert.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, "Newer", stories[0].Title)
	assert.True(t, stories[0].Liked)
	assert.Equal(t, 3, stories[0].LikesCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepository_Like(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewStoryRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "likes"`)).
			WithArgs(sqlmock.AnyArg(), 2, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := repo.Like(ctx, 2, 1)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate like is a conflict", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewStoryRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "likes"`)).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		// sqlmock cannot raise a real pq error, so drive the mapping directly
		assert.False(t, isUniqueConstraintError(assert.AnError))

		err := repo.Like(ctx, 2, 1)
		assert.Error(t, err)
		assert.Equal(t, models.CodeInternal, models.CodeOf(err))
	})
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.True(t, isUniqueConstraintError(errForMsg(`pq: duplicate key value violates unique constraint "idx_user_story"`)))
	assert.True(t, isUniqueConstraintError(errForMsg("UNIQUE constraint failed: likes.user_id, likes.story_id")))
	assert.True(t, isUniqueConstraintError(errForMsg("ERROR: SQLSTATE 23505")))
	assert.False(t, isUniqueConstraintError(nil))
	assert.False(t, isUniqueConstraintError(errForMsg("connection refused")))
}

type errForMsg string

func (e errForMsg) Error() string { return string(e) }

func TestStoryRepository_Unlike(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStoryRepository(db)
	ctx := context.Background()

	t.Run("Removes existing like", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes"`)).
			WithArgs(2, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Unlike(ctx, 2, 1)
		assert.NoError(t, err)
	})

	t.Run("Absent like is a no-op", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes"`)).
			WithArgs(2, 1).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.Unlike(ctx, 2, 1)
		assert.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepository_LikeCount(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStoryRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "likes" WHERE story_id = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.LikeCount(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepository_LikedStoryIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStoryRepository(db)
	ctx := context.Background()

	t.Run("Empty input short-circuits", func(t *testing.T) {
		ids, err := repo.LikedStoryIDs(ctx, 2, nil)
		assert.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("Returns liked subset", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT "story_id" FROM "likes"`)).
			WillReturnRows(sqlmock.NewRows([]string{"story_id"}).AddRow(1).AddRow(3))

		ids, err := repo.LikedStoryIDs(ctx, 2, []uint{1, 2, 3})
		assert.NoError(t, err)
		assert.Equal(t, []uint{1, 3}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStoryRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStoryRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "stories" SET "deleted_at"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(ctx, 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
