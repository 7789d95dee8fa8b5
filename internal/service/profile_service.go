package service

import (
	"context"

	"storyhive/internal/models"
	"storyhive/internal/repository"
)

const maxNameLen = 120

// ProfileService implements profile reads and updates plus admin role
// management. Role changes require an admin actor and a profile can never
// change its own admin flag through the self-service path.
type ProfileService struct {
	profileRepo repository.ProfileRepository
}

type UpdateProfileInput struct {
	UserID    uint
	FullName  string
	AvatarURL string
}

type SetAdminInput struct {
	ActorID  uint
	TargetID uint
	IsAdmin  bool
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// IsAdmin reports whether the user's profile carries the admin flag. It is
// the single authorization predicate shared by the other services.
func (s *ProfileService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return profile.IsAdmin, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, userID)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	if len(in.FullName) > maxNameLen {
		return nil, models.NewValidationError("Name too long (max 120 characters)")
	}

	profile, err := s.profileRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	profile.FullName = in.FullName
	profile.AvatarURL = in.AvatarURL
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return s.profileRepo.GetByID(ctx, in.UserID)
}

func (s *ProfileService) SetAdmin(ctx context.Context, in SetAdminInput) error {
	admin, err := s.IsAdmin(ctx, in.ActorID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewPermissionError("Only admins can change roles")
	}
	if in.ActorID == in.TargetID && !in.IsAdmin {
		return models.NewValidationError("Admins cannot revoke their own role")
	}
	return s.profileRepo.SetAdmin(ctx, in.TargetID, in.IsAdmin)
}

func (s *ProfileService) ListProfiles(ctx context.Context, actorID uint, limit, offset int) ([]*models.Profile, error) {
	admin, err := s.IsAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, models.NewPermissionError("Only admins can list profiles")
	}
	return s.profileRepo.List(ctx, limit, offset)
}

func (s *ProfileService) ListAdmins(ctx context.Context) ([]*models.Profile, error) {
	return s.profileRepo.ListAdmins(ctx)
}
