// Package service holds the application business logic between HTTP
// handlers and repositories.
package service

import (
	"context"

	"storyhive/internal/models"
	"storyhive/internal/repository"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000
)

// StoryService implements story browsing, publishing and likes. Publishing
// is restricted to admins; browsing and liking are open to any signed-in
// user, and reads work anonymously.
type StoryService struct {
	storyRepo   repository.StoryRepository
	profileRepo repository.ProfileRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

type CreateStoryInput struct {
	UserID  uint
	Title   string
	Content string
}

type UpdateStoryInput struct {
	UserID  uint
	StoryID uint
	Title   string
	Content string
}

func NewStoryService(
	storyRepo repository.StoryRepository,
	profileRepo repository.ProfileRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *StoryService {
	return &StoryService{
		storyRepo:   storyRepo,
		profileRepo: profileRepo,
		isAdmin:     isAdmin,
	}
}

func (s *StoryService) requireAdmin(ctx context.Context, userID uint) error {
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewPermissionError("Only admins can manage stories")
	}
	return nil
}

func validateStoryFields(title, content string) error {
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}

func (s *StoryService) CreateStory(ctx context.Context, in CreateStoryInput) (*models.Story, error) {
	if err := s.requireAdmin(ctx, in.UserID); err != nil {
		return nil, err
	}
	if err := validateStoryFields(in.Title, in.Content); err != nil {
		return nil, err
	}

	story := &models.Story{
		Title:      in.Title,
		Content:    in.Content,
		AuthorID:   in.UserID,
		AuthorName: s.displayName(ctx, in.UserID),
	}
	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, err
	}

	return s.storyRepo.GetByID(ctx, story.ID, in.UserID)
}

func (s *StoryService) ListStories(ctx context.Context, viewerID uint) ([]*models.Story, error) {
	return s.storyRepo.List(ctx, viewerID)
}

func (s *StoryService) GetStory(ctx context.Context, storyID, viewerID uint) (*models.Story, error) {
	return s.storyRepo.GetByID(ctx, storyID, viewerID)
}

// UpdateStory edits the provided fields; an empty field leaves the stored
// value unchanged, so a title-only or content-only edit is valid.
func (s *StoryService) UpdateStory(ctx context.Context, in UpdateStoryInput) (*models.Story, error) {
	if err := s.requireAdmin(ctx, in.UserID); err != nil {
		return nil, err
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	story, err := s.storyRepo.GetByID(ctx, in.StoryID, 0)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		story.Title = in.Title
	}
	if in.Content != "" {
		story.Content = in.Content
	}
	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, err
	}

	return s.storyRepo.GetByID(ctx, in.StoryID, in.UserID)
}

func (s *StoryService) DeleteStory(ctx context.Context, userID, storyID uint) error {
	if err := s.requireAdmin(ctx, userID); err != nil {
		return err
	}
	if _, err := s.storyRepo.GetByID(ctx, storyID, 0); err != nil {
		return err
	}
	return s.storyRepo.Delete(ctx, storyID)
}

// LikeStory records a like and returns the refreshed story. Liking twice
// is a conflict, which callers surface rather than swallow.
func (s *StoryService) LikeStory(ctx context.Context, userID, storyID uint) (*models.Story, error) {
	if _, err := s.storyRepo.GetByID(ctx, storyID, 0); err != nil {
		return nil, err
	}
	if err := s.storyRepo.Like(ctx, userID, storyID); err != nil {
		return nil, err
	}
	return s.storyRepo.GetByID(ctx, storyID, userID)
}

// UnlikeStory removes a like and returns the refreshed story. Unliking a
// story that was never liked succeeds.
func (s *StoryService) UnlikeStory(ctx context.Context, userID, storyID uint) (*models.Story, error) {
	if _, err := s.storyRepo.GetByID(ctx, storyID, 0); err != nil {
		return nil, err
	}
	if err := s.storyRepo.Unlike(ctx, userID, storyID); err != nil {
		return nil, err
	}
	return s.storyRepo.GetByID(ctx, storyID, userID)
}

func (s *StoryService) LikeCount(ctx context.Context, storyID uint) (int64, error) {
	if _, err := s.storyRepo.GetByID(ctx, storyID, 0); err != nil {
		return 0, err
	}
	return s.storyRepo.LikeCount(ctx, storyID)
}

// displayName resolves the author's display name at write time so stories
// keep a stable byline even if the profile later changes.
func (s *StoryService) displayName(ctx context.Context, userID uint) string {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil || profile.FullName == "" {
		return ""
	}
	return profile.FullName
}
