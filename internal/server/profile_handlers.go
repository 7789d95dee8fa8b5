package server

import (
	"storyhive/internal/models"
	"storyhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile returns the caller's profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile updates the caller's display fields. The admin flag is
// not writable through this path.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.profileService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:    currentUserID(c),
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetProfiles lists profiles. Admin only.
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	profiles, err := s.profileService.ListProfiles(c.UserContext(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"profiles": profiles})
}

// GetAdmins lists admin profiles. Admin only.
func (s *Server) GetAdmins(c *fiber.Ctx) error {
	admins, err := s.profileService.ListAdmins(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"admins": admins})
}

// GrantAdmin promotes a profile to admin. Admin only.
func (s *Server) GrantAdmin(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id", "profile ID")
	if err != nil {
		return nil
	}

	if err := s.profileService.SetAdmin(c.UserContext(), service.SetAdminInput{
		ActorID:  currentUserID(c),
		TargetID: targetID,
		IsAdmin:  true,
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Admin role granted"})
}

// RevokeAdmin demotes a profile from admin. Admin only, and admins cannot
// revoke themselves.
func (s *Server) RevokeAdmin(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id", "profile ID")
	if err != nil {
		return nil
	}

	if err := s.profileService.SetAdmin(c.UserContext(), service.SetAdminInput{
		ActorID:  currentUserID(c),
		TargetID: targetID,
		IsAdmin:  false,
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Admin role revoked"})
}
