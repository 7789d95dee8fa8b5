package models

// Role classifies what a signed-in user is allowed to do.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

// User is the application-level view of a signed-in identity, produced by the
// session mapper from an account record plus a profile lookup. It is never
// persisted; its lifecycle is bound to the active session.
type User struct {
	ID     uint   `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
