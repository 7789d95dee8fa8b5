package viewstate

import (
	"context"
	"log/slog"
	"sync"

	"storyhive/internal/middleware"
	"storyhive/internal/models"
	"storyhive/internal/service"
)

// StoryDetail is the state behind a single story page: the story itself
// plus its full comment thread, loaded eagerly.
type StoryDetail struct {
	stories  *service.StoryService
	comments *service.CommentService
	viewerID uint
	storyID  uint

	mu     sync.Mutex
	story  *models.Story
	thread []*models.Comment
	closed bool
}

// NewStoryDetail creates the detail state for one story and viewer.
func NewStoryDetail(stories *service.StoryService, comments *service.CommentService, viewerID, storyID uint) *StoryDetail {
	return &StoryDetail{
		stories:  stories,
		comments: comments,
		viewerID: viewerID,
		storyID:  storyID,
	}
}

// Load fetches the story and its comments.
func (v *StoryDetail) Load(ctx context.Context) error {
	story, err := v.stories.GetStory(ctx, v.storyID, v.viewerID)
	if err != nil {
		return err
	}
	thread, err := v.comments.ListComments(ctx, v.storyID)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.story = story
	v.thread = thread
	return nil
}

// Story returns the current story snapshot, nil before Load.
func (v *StoryDetail) Story() *models.Story {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.story == nil {
		return nil
	}
	copied := *v.story
	return &copied
}

// Comments returns the loaded thread.
func (v *StoryDetail) Comments() []*models.Comment {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*models.Comment, len(v.thread))
	copy(out, v.thread)
	return out
}

// ToggleLike flips the like state optimistically and confirms with the
// service. Failures keep the optimistic state, same as the feed view.
func (v *StoryDetail) ToggleLike(ctx context.Context) error {
	if v.viewerID == 0 {
		return models.NewAuthError("Sign in to like stories")
	}

	v.mu.Lock()
	if v.closed || v.story == nil {
		v.mu.Unlock()
		return nil
	}
	wasLiked := v.story.Liked
	if wasLiked {
		v.story.Liked = false
		v.story.LikesCount--
	} else {
		v.story.Liked = true
		v.story.LikesCount++
	}
	v.mu.Unlock()

	var err error
	if wasLiked {
		_, err = v.stories.UnlikeStory(ctx, v.viewerID, v.storyID)
	} else {
		_, err = v.stories.LikeStory(ctx, v.viewerID, v.storyID)
	}
	if err != nil {
		middleware.Logger.Warn("like toggle failed, keeping optimistic state",
			slog.Uint64("story_id", uint64(v.storyID)),
			slog.String("error", err.Error()),
		)
	}
	return err
}

// AddComment posts a comment and appends it to the thread once confirmed.
func (v *StoryDetail) AddComment(ctx context.Context, content string) (*models.Comment, error) {
	if v.viewerID == 0 {
		return nil, models.NewAuthError("Sign in to comment")
	}

	comment, err := v.comments.CreateComment(ctx, service.CreateCommentInput{
		UserID:  v.viewerID,
		StoryID: v.storyID,
		Content: content,
	})
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return comment, nil
	}
	v.thread = append(v.thread, comment)
	if v.story != nil {
		v.story.CommentsCount++
	}
	return comment, nil
}

// Close marks the view unmounted.
func (v *StoryDetail) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}
