package session

import (
	"context"
	"testing"
	"time"

	"storyhive/internal/identity"
	"storyhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProfileRepo implements repository.ProfileRepository for tests.
type stubProfileRepo struct {
	profiles map[uint]*models.Profile
	err      error
	delay    time.Duration
}

func (s *stubProfileRepo) Create(_ context.Context, _ *models.Profile) error { return nil }

func (s *stubProfileRepo) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, models.NewTimeoutError("profile lookup timed out")
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	profile, ok := s.profiles[id]
	if !ok {
		return nil, models.NewNotFoundError("Profile", id)
	}
	return profile, nil
}

func (s *stubProfileRepo) GetByEmail(_ context.Context, _ string) (*models.Profile, error) {
	return nil, models.NewNotFoundError("Profile", 0)
}
func (s *stubProfileRepo) Update(_ context.Context, _ *models.Profile) error       { return nil }
func (s *stubProfileRepo) SetAdmin(_ context.Context, _ uint, _ bool) error        { return nil }
func (s *stubProfileRepo) List(_ context.Context, _, _ int) ([]*models.Profile, error) {
	return nil, nil
}
func (s *stubProfileRepo) ListAdmins(_ context.Context) ([]*models.Profile, error) {
	return nil, nil
}

func TestMapper_NilIdentity(t *testing.T) {
	m := NewMapper(&stubProfileRepo{}, time.Second)
	assert.Nil(t, m.Map(context.Background(), nil))
}

func TestMapper_AdminFromProfile(t *testing.T) {
	repo := &stubProfileRepo{profiles: map[uint]*models.Profile{
		1: {ID: 1, Email: "ada@example.com", FullName: "Ada Lovelace", IsAdmin: true, AvatarURL: "/ada.png"},
	}}
	m := NewMapper(repo, time.Second)

	user := m.Map(context.Background(), &identity.Identity{ID: 1, Email: "ada@example.com"})
	require.NotNil(t, user)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.True(t, user.IsAdmin())
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, "/ada.png", user.Avatar)
}

func TestMapper_DegradesOnProfileFailure(t *testing.T) {
	repo := &stubProfileRepo{err: models.NewInternalError(assert.AnError)}
	m := NewMapper(repo, time.Second)

	id := &identity.Identity{
		ID:       1,
		Email:    "ada@example.com",
		Metadata: identity.Metadata{FullName: "Ada from metadata"},
	}
	user := m.Map(context.Background(), id)
	require.NotNil(t, user)
	// Degraded users are never admins.
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.IsAdmin())
	assert.Equal(t, "Ada from metadata", user.Name)
}

func TestMapper_DegradesOnTimeout(t *testing.T) {
	repo := &stubProfileRepo{
		delay:    200 * time.Millisecond,
		profiles: map[uint]*models.Profile{1: {ID: 1, IsAdmin: true}},
	}
	m := NewMapper(repo, 10*time.Millisecond)

	start := time.Now()
	user := m.Map(context.Background(), &identity.Identity{ID: 1, Email: "ada@example.com"})
	require.NotNil(t, user)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestMapper_NameFallbacks(t *testing.T) {
	repo := &stubProfileRepo{profiles: map[uint]*models.Profile{
		1: {ID: 1, FullName: "Profile Name"},
		2: {ID: 2},
	}}
	m := NewMapper(repo, time.Second)

	tests := []struct {
		name     string
		id       *identity.Identity
		expected string
	}{
		{
			name:     "profile name wins",
			id:       &identity.Identity{ID: 1, Email: "x@example.com", Metadata: identity.Metadata{FullName: "Meta Name"}},
			expected: "Profile Name",
		},
		{
			name:     "metadata name when profile has none",
			id:       &identity.Identity{ID: 2, Email: "x@example.com", Metadata: identity.Metadata{FullName: "Meta Name"}},
			expected: "Meta Name",
		},
		{
			name:     "email local part",
			id:       &identity.Identity{ID: 2, Email: "grace@example.com"},
			expected: "grace",
		},
		{
			name:     "whole email when it has no at sign",
			id:       &identity.Identity{ID: 2, Email: "grace"},
			expected: "grace",
		},
		{
			name:     "generic placeholder",
			id:       &identity.Identity{ID: 2, Email: ""},
			expected: "User",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := m.Map(context.Background(), tt.id)
			require.NotNil(t, user)
			assert.Equal(t, tt.expected, user.Name)
		})
	}
}
