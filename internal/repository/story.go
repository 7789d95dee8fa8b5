// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"storyhive/internal/cache"
	"storyhive/internal/models"

	"gorm.io/gorm"
)

// StoryRepository defines the interface for story and like data operations.
// Every read computes the aggregate counts by counting like/comment rows;
// nothing is ever read from a stored counter.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Story, error)
	List(ctx context.Context, viewerID uint) ([]*models.Story, error)
	Update(ctx context.Context, story *models.Story) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, storyID uint) (bool, error)
	LikedStoryIDs(ctx context.Context, userID uint, storyIDs []uint) ([]uint, error)
	Like(ctx context.Context, userID, storyID uint) error
	Unlike(ctx context.Context, userID, storyID uint) error
	LikeCount(ctx context.Context, storyID uint) (int64, error)
}

// storyRepository implements StoryRepository
type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateStoriesList(ctx)
	return nil
}

func (r *storyRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Story, error) {
	var story models.Story

	var err error
	if viewerID == 0 {
		// Anonymous fetches share one cache entry; viewer-scoped fetches
		// must hit the database for the liked flag.
		key := cache.StoryKey(id)
		err = cache.Aside(ctx, key, &story, cache.StoryTTL, func() error {
			return r.applyStoryDetails(r.db.WithContext(ctx), 0).First(&story, id).Error
		})
	} else {
		err = r.applyStoryDetails(r.db.WithContext(ctx), viewerID).First(&story, id).Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Story", id)
		}
		return nil, models.NewInternalError(err)
	}

	return &story, nil
}

func (r *storyRepository) List(ctx context.Context, viewerID uint) ([]*models.Story, error) {
	var stories []*models.Story

	if viewerID == 0 {
		err := cache.Aside(ctx, cache.StoriesListKey, &stories, cache.ListTTL, func() error {
			return r.applyStoryDetails(r.db.WithContext(ctx), 0).
				Order("created_at DESC").
				Find(&stories).Error
		})
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		return stories, nil
	}

	err := r.applyStoryDetails(r.db.WithContext(ctx), viewerID).
		Order("created_at DESC").
		Find(&stories).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return stories, nil
}

// applyStoryDetails adds subqueries to fetch counts and liked status in a single query.
func (r *storyRepository) applyStoryDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "stories.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.story_id = stories.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.story_id = stories.id) as likes_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.story_id = stories.id AND likes.user_id = ?) as liked", viewerID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *storyRepository) Update(ctx context.Context, story *models.Story) error {
	if err := r.db.WithContext(ctx).Save(story).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateStory(ctx, story.ID)
	cache.InvalidateStoriesList(ctx)
	return nil
}

func (r *storyRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Story{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateStory(ctx, id)
	cache.InvalidateStoriesList(ctx)
	return nil
}

func (r *storyRepository) IsLiked(ctx context.Context, userID, storyID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND story_id = ?", userID, storyID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *storyRepository) LikedStoryIDs(ctx context.Context, userID uint, storyIDs []uint) ([]uint, error) {
	if len(storyIDs) == 0 {
		return nil, nil
	}
	var likedIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND story_id IN ?", userID, storyIDs).
		Pluck("story_id", &likedIDs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return likedIDs, nil
}

// Like inserts the (user, story) pair. A duplicate pair is a conflict, not a
// no-op: callers rely on the distinction to surface "already liked".
func (r *storyRepository) Like(ctx context.Context, userID, storyID uint) error {
	like := &models.Like{UserID: userID, StoryID: storyID}
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Story already liked")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateStory(ctx, storyID)
	cache.InvalidateStoriesList(ctx)
	return nil
}

// Unlike removes the pair if present; removing an absent pair is a no-op.
func (r *storyRepository) Unlike(ctx context.Context, userID, storyID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND story_id = ?", userID, storyID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateStory(ctx, storyID)
	cache.InvalidateStoriesList(ctx)
	return nil
}

func (r *storyRepository) LikeCount(ctx context.Context, storyID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("story_id = ?", storyID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; sqlite reports "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
