package service

import (
	"context"

	"storyhive/internal/models"
	"storyhive/internal/repository"
)

const maxCommentLen = 10000

// CommentService implements commenting on stories. Comments are flat and
// returned oldest first.
type CommentService struct {
	commentRepo repository.CommentRepository
	storyRepo   repository.StoryRepository
	profileRepo repository.ProfileRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

type CreateCommentInput struct {
	UserID  uint
	StoryID uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	storyRepo repository.StoryRepository,
	profileRepo repository.ProfileRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		storyRepo:   storyRepo,
		profileRepo: profileRepo,
		isAdmin:     isAdmin,
	}
}

func validateCommentContent(content string) error {
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return nil
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if _, err := s.storyRepo.GetByID(ctx, in.StoryID, 0); err != nil {
		return nil, err
	}
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		StoryID:  in.StoryID,
		UserID:   in.UserID,
		UserName: s.commenterName(ctx, in.UserID),
		Content:  in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListComments(ctx context.Context, storyID uint) ([]*models.Comment, error) {
	if _, err := s.storyRepo.GetByID(ctx, storyID, 0); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByStory(ctx, storyID)
}

func (s *CommentService) CountComments(ctx context.Context, storyID uint) (int64, error) {
	if _, err := s.storyRepo.GetByID(ctx, storyID, 0); err != nil {
		return 0, err
	}
	return s.commentRepo.CountByStory(ctx, storyID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != in.UserID {
		return nil, models.NewPermissionError("You can only update your own comments")
	}
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}

	if comment.UserID != in.UserID {
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewPermissionError("You can only delete your own comments")
		}
	}

	return s.commentRepo.Delete(ctx, comment)
}

// commenterName resolves the display name at write time; a missing profile
// leaves the byline empty rather than failing the comment.
func (s *CommentService) commenterName(ctx context.Context, userID uint) string {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return profile.FullName
}
