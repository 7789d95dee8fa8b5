package models

import (
	"time"
)

// Profile is the authorization and display record associated with an account.
// Its primary key equals the account ID. The identity record only proves
// "who"; the profile supplies what they are allowed to do and how they are
// displayed.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"index" json:"email"`
	FullName  string    `json:"full_name"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
