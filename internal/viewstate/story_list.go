// Package viewstate maintains per-page client state over the story
// services: the story feed, optimistic like toggles and lazily expanded
// comment threads. A view is owned by one viewer and is safe for
// concurrent use by that viewer's UI goroutines.
package viewstate

import (
	"context"
	"log/slog"
	"sync"

	"storyhive/internal/middleware"
	"storyhive/internal/models"
	"storyhive/internal/service"
)

// StoryList is the state behind the story feed page.
type StoryList struct {
	stories  *service.StoryService
	comments *service.CommentService
	viewerID uint

	mu          sync.Mutex
	items       []*models.Story
	threads     map[uint][]*models.Comment
	contentOpen map[uint]bool
	closed      bool
}

// NewStoryList creates the feed state for a viewer. A viewer ID of zero is
// an anonymous, read-only feed.
func NewStoryList(stories *service.StoryService, comments *service.CommentService, viewerID uint) *StoryList {
	return &StoryList{
		stories:     stories,
		comments:    comments,
		viewerID:    viewerID,
		threads:     make(map[uint][]*models.Comment),
		contentOpen: make(map[uint]bool),
	}
}

// Load fetches the feed, replacing any previous items. Cached comment
// threads survive a reload; they refresh on the next expansion.
func (v *StoryList) Load(ctx context.Context) error {
	items, err := v.stories.ListStories(ctx, v.viewerID)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.items = items
	return nil
}

// Stories returns the current feed snapshot.
func (v *StoryList) Stories() []*models.Story {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*models.Story, len(v.items))
	copy(out, v.items)
	return out
}

// ToggleLike flips the like state optimistically, then confirms with the
// service. A failed confirmation returns the error but the optimistic
// flip stays: the next Load reconciles with the server, and an eager
// rollback would fight the user on transient failures.
func (v *StoryList) ToggleLike(ctx context.Context, storyID uint) error {
	if v.viewerID == 0 {
		return models.NewAuthError("Sign in to like stories")
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	story := v.findLocked(storyID)
	if story == nil {
		v.mu.Unlock()
		return models.NewNotFoundError("Story", storyID)
	}
	wasLiked := story.Liked
	if wasLiked {
		story.Liked = false
		story.LikesCount--
	} else {
		story.Liked = true
		story.LikesCount++
	}
	v.mu.Unlock()

	var err error
	if wasLiked {
		_, err = v.stories.UnlikeStory(ctx, v.viewerID, storyID)
	} else {
		_, err = v.stories.LikeStory(ctx, v.viewerID, storyID)
	}
	if err != nil {
		middleware.Logger.Warn("like toggle failed, keeping optimistic state",
			slog.Uint64("story_id", uint64(storyID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// AddComment posts a comment and applies it locally only after the service
// confirms it. Nothing is shown optimistically; a failed post leaves the
// thread untouched.
func (v *StoryList) AddComment(ctx context.Context, storyID uint, content string) (*models.Comment, error) {
	if v.viewerID == 0 {
		return nil, models.NewAuthError("Sign in to comment")
	}

	comment, err := v.comments.CreateComment(ctx, service.CreateCommentInput{
		UserID:  v.viewerID,
		StoryID: storyID,
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
	if thread, ok := v.threads[storyID]; ok {
		v.threads[storyID] = append(thread, comment)
	}
	if story := v.findLocked(storyID); story != nil {
		story.CommentsCount++
	}
	return comment, nil
}

// ExpandComments returns the comment thread for a story, fetching it on
// first expansion and serving the cached thread afterwards.
func (v *StoryList) ExpandComments(ctx context.Context, storyID uint) ([]*models.Comment, error) {
	v.mu.Lock()
	if thread, ok := v.threads[storyID]; ok {
		out := make([]*models.Comment, len(thread))
		copy(out, thread)
		v.mu.Unlock()
		return out, nil
	}
	v.mu.Unlock()

	thread, err := v.comments.ListComments(ctx, storyID)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.closed {
		v.threads[storyID] = thread
	}
	out := make([]*models.Comment, len(thread))
	copy(out, thread)
	return out, nil
}

// ToggleContent flips the expanded-text flag for a story and reports the
// new value.
func (v *StoryList) ToggleContent(storyID uint) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	v.contentOpen[storyID] = !v.contentOpen[storyID]
	return v.contentOpen[storyID]
}

// ContentOpen reports whether a story's full text is expanded.
func (v *StoryList) ContentOpen(storyID uint) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.contentOpen[storyID]
}

// Close marks the view unmounted. In-flight operations finish but no
// longer mutate state.
func (v *StoryList) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

// findLocked returns the cached story with the given ID. Caller holds v.mu.
func (v *StoryList) findLocked(storyID uint) *models.Story {
	for _, story := range v.items {
		if story.ID == storyID {
			return story
		}
	}
	return nil
}
