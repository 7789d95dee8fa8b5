// Package session turns raw credential-layer sessions into application
// users and manages the bootstrap lifecycle around them.
package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"storyhive/internal/identity"
	"storyhive/internal/middleware"
	"storyhive/internal/models"
	"storyhive/internal/observability"
	"storyhive/internal/repository"
)

// Mapper resolves an authenticated identity into an application user by
// joining the profile row onto it. Mapping never fails: when the profile
// cannot be fetched in time the identity degrades to a regular user built
// from identity metadata alone. Admin standing comes exclusively from the
// profile, so a degraded mapping is never an admin.
type Mapper struct {
	profiles repository.ProfileRepository
	timeout  time.Duration
}

// NewMapper creates a Mapper with the given profile lookup timeout.
func NewMapper(profiles repository.ProfileRepository, timeout time.Duration) *Mapper {
	return &Mapper{profiles: profiles, timeout: timeout}
}

// Map converts an identity into a user. A nil identity maps to nil.
func (m *Mapper) Map(ctx context.Context, id *identity.Identity) *models.User {
	if id == nil {
		return nil
	}

	user := &models.User{
		ID:     id.ID,
		Email:  id.Email,
		Role:   models.RoleUser,
		Name:   fallbackName(id),
		Avatar: id.Metadata.AvatarURL,
	}

	lookupCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	profile, err := m.profiles.GetByID(lookupCtx, id.ID)
	if err != nil {
		observability.ProfileLookupFailures.Inc()
		middleware.Logger.Warn("profile lookup failed, degrading to basic user",
			slog.Uint64("account_id", uint64(id.ID)),
			slog.String("error", err.Error()),
		)
		return user
	}

	if profile.IsAdmin {
		user.Role = models.RoleAdmin
	}
	if profile.FullName != "" {
		user.Name = profile.FullName
	}
	if profile.AvatarURL != "" {
		user.Avatar = profile.AvatarURL
	}
	return user
}

// fallbackName derives a display name without a profile: sign-up metadata
// first, then the email local part (the whole email when it has no "@"),
// then a generic placeholder.
func fallbackName(id *identity.Identity) string {
	if name := strings.TrimSpace(id.Metadata.FullName); name != "" {
		return name
	}
	local := id.Email
	if at := strings.Index(id.Email, "@"); at >= 0 {
		local = id.Email[:at]
	}
	if local != "" {
		return local
	}
	return "User"
}
