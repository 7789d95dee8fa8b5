package models

import (
	"time"

	"gorm.io/gorm"
)

// Story represents an admin-authored article in the Storyhive application.
type Story struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Title      string `gorm:"not null" json:"title"`
	Content    string `gorm:"type:text;not null" json:"content"`
	AuthorID   uint   `gorm:"not null;index" json:"author_id"`
	AuthorName string `gorm:"not null" json:"author_name"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this story (computed)
	Liked     bool           `gorm:"->" json:"user_liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
