package server

import (
	"storyhive/internal/models"
	"storyhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

type storyRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GetStories returns the feed, newest first. Signed-in viewers get their
// own liked flags; anonymous viewers get liked=false everywhere.
func (s *Server) GetStories(c *fiber.Ctx) error {
	stories, err := s.storyService.ListStories(c.UserContext(), viewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"stories": stories})
}

// GetStory returns one story with its derived counts.
func (s *Server) GetStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id", "story ID")
	if err != nil {
		return nil
	}

	story, err := s.storyService.GetStory(c.UserContext(), storyID, viewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(story)
}

// CreateStory publishes a story. Admin only.
func (s *Server) CreateStory(c *fiber.Ctx) error {
	var req storyRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	story, err := s.storyService.CreateStory(c.UserContext(), service.CreateStoryInput{
		UserID:  currentUserID(c),
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(story)
}

// UpdateStory edits a story. Admin only.
func (s *Server) UpdateStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id", "story ID")
	if err != nil {
		return nil
	}

	var req storyRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	story, err := s.storyService.UpdateStory(c.UserContext(), service.UpdateStoryInput{
		UserID:  currentUserID(c),
		StoryID: storyID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(story)
}

// DeleteStory removes a story. Admin only.
func (s *Server) DeleteStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id", "story ID")
	if err != nil {
		return nil
	}

	if err := s.storyService.DeleteStory(c.UserContext(), currentUserID(c), storyID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Story deleted"})
}

// LikeStory records a like. Liking twice returns 409.
func (s *Server) LikeStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id", "story ID")
	if err != nil {
		return nil
	}

	story, err := s.storyService.LikeStory(c.UserContext(), currentUserID(c), storyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(story)
}

// UnlikeStory removes a like. Unliking an unliked story succeeds.
func (s *Server) UnlikeStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id", "story ID")
	if err != nil {
		return nil
	}

	story, err := s.storyService.UnlikeStory(c.UserContext(), currentUserID(c), storyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(story)
}

// GetLikeCount returns the current like count for a story.
func (s *Server) GetLikeCount(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id", "story ID")
	if err != nil {
		return nil
	}

	count, err := s.storyService.LikeCount(c.UserContext(), storyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"story_id": storyID, "likes_count": count})
}
