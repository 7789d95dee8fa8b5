package server

import (
	"fmt"
	"testing"

	"storyhive/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMyProfile(t *testing.T) {
	_, app := setupTestServer(t)
	token, _ := signup(t, app, "ada@example.com", "Ada Lovelace")

	t.Run("Get", func(t *testing.T) {
		resp, body := doJSON(t, app, fiber.MethodGet, "/api/profiles/me", token, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "ada@example.com", body["email"])
		assert.Equal(t, "Ada Lovelace", body["full_name"])
		assert.Equal(t, false, body["is_admin"])
	})

	t.Run("Update", func(t *testing.T) {
		resp, body := doJSON(t, app, fiber.MethodPut, "/api/profiles/me", token, map[string]string{
			"full_name":  "Ada L.",
			"avatar_url": "https://example.com/ada.png",
		})
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Ada L.", body["full_name"])
		assert.Equal(t, "https://example.com/ada.png", body["avatar_url"])
		assert.Equal(t, false, body["is_admin"])
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/profiles/me", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAdminManagement(t *testing.T) {
	srv, app := setupTestServer(t)
	adminToken, adminID := signup(t, app, "admin@example.com", "Admin One")
	promote(t, srv, adminID)
	readerToken, readerID := signup(t, app, "reader@example.com", "Reader Two")

	t.Run("List profiles requires admin", func(t *testing.T) {
		resp, body := doJSON(t, app, fiber.MethodGet, "/api/profiles", readerToken, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, models.CodePermission, body["code"])
	})

	t.Run("Admin lists profiles", func(t *testing.T) {
		resp, body := doJSON(t, app, fiber.MethodGet, "/api/profiles", adminToken, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Len(t, body["profiles"].([]any), 2)
	})

	t.Run("Grant admin", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost,
			fmt.Sprintf("/api/profiles/%d/grant-admin", readerID), adminToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, body := doJSON(t, app, fiber.MethodGet, "/api/profiles/admins", adminToken, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Len(t, body["admins"].([]any), 2)
	})

	t.Run("Revoke admin", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost,
			fmt.Sprintf("/api/profiles/%d/revoke-admin", readerID), adminToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, body := doJSON(t, app, fiber.MethodGet, "/api/profiles/admins", adminToken, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Len(t, body["admins"].([]any), 1)
	})

	t.Run("Self revoke rejected", func(t *testing.T) {
		resp, body := doJSON(t, app, fiber.MethodPost,
			fmt.Sprintf("/api/profiles/%d/revoke-admin", adminID), adminToken, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeValidation, body["code"])
	})

	t.Run("Non-admin cannot grant", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost,
			fmt.Sprintf("/api/profiles/%d/grant-admin", readerID), readerToken, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("Grant to unknown profile", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/profiles/999/grant-admin", adminToken, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}
