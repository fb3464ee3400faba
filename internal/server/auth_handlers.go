package server

import (
	"time"

	"mingle/internal/auth"
	"mingle/internal/models"
	"mingle/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/auth/login.
//
// The two authentication failures keep their distinct codes
// (ACCOUNT_NOT_FOUND, WRONG_PASSWORD) so the join/login form can tell an
// unknown attendee from a bad admin password.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	user, err := s.authService.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		switch models.ErrorCode(err) {
		case models.CodeAccountNotFound:
			observability.LoginOutcomes.WithLabelValues("account_not_found").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		case models.CodeWrongPassword:
			observability.LoginOutcomes.WithLabelValues("wrong_password").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		default:
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	token, err := s.authService.IssueSession(user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	observability.LoginOutcomes.WithLabelValues("success").Inc()
	s.setSessionCookie(c, token, time.Now().Add(auth.SessionTTL))

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout. The session's token id is
// blacklisted for its remaining lifetime and the cookie cleared.
func (s *Server) Logout(c *fiber.Ctx) error {
	if sess := s.currentSession(c); sess != nil {
		s.authService.Revoke(c.Context(), sess)
	}

	s.setSessionCookie(c, "", time.Now().Add(-time.Hour))
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GetSession handles GET /api/auth/session: returns the current user or
// null without requiring authentication.
func (s *Server) GetSession(c *fiber.Ctx) error {
	sess := s.currentSession(c)
	user, err := s.authService.CurrentUser(c.Context(), sess)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Expires:  expires,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   s.config.Env == "production" || s.config.Env == "prod",
	})
}
