package server

import (
	"strings"

	"storyhive/internal/identity"
	"storyhive/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Signup handles new account registration.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}
	if len(req.Password) < 8 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Password must be at least 8 characters"))
	}

	session, err := s.authenticator.Register(c.UserContext(), identity.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		Metadata: identity.Metadata{FullName: req.FullName},
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user":       session.Identity,
	})
}

// SignIn handles password authentication.
func (s *Server) SignIn(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	session, err := s.authenticator.Authenticate(c.UserContext(),
		strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user":       session.Identity,
	})
}

// SignOut denylists the presented token until its natural expiry. Sign-out
// never fails: a missing or invalid token means there is nothing to revoke,
// and the client drops its session state either way.
func (s *Server) SignOut(c *fiber.Ctx) error {
	if token, ok := bearerToken(c); ok {
		_ = s.authenticator.Revoke(c.UserContext(), token)
	}
	return c.JSON(fiber.Map{"message": "Signed out"})
}

// GetSessionInfo resolves the bearer token into the application user. An
// absent or invalid token is not an error: the response carries a null
// user, matching how clients probe for a persisted session.
func (s *Server) GetSessionInfo(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return c.JSON(fiber.Map{"user": nil})
	}

	id, err := s.authenticator.Resolve(c.UserContext(), token)
	if err != nil {
		if models.CodeOf(err) == models.CodeAuth {
			return c.JSON(fiber.Map{"user": nil})
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"user": s.mapper.Map(c.UserContext(), id),
	})
}
