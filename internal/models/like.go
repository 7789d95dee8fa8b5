package models

import (
	"time"
)

// Like represents a user's like on a story.
// The combination of UserID and StoryID must be unique; existence of the row
// is the only state, counts are always derived by counting rows.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_story" json:"user_id"`
	StoryID   uint      `gorm:"not null;uniqueIndex:idx_user_story" json:"story_id"`
	CreatedAt time.Time `json:"created_at"`
}
