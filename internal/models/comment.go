package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a timestamped reply attached to a story. Comments are
// ordered by creation time ascending wherever they are listed.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	StoryID   uint           `gorm:"not null;index" json:"story_id"`
	UserID    uint           `gorm:"not null" json:"user_id"`
	UserName  string         `gorm:"not null" json:"user_name"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
