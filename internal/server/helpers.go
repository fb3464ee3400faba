package server

import (
	"errors"

	"mingle/internal/auth"
	"mingle/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// pageQuery holds parsed page/perPage query parameters.
type pageQuery struct {
	Page    int
	PerPage int
}

// parsePageQuery extracts page and perPage query parameters.
// perPage == -1 requests the full set; other non-positive values fall back
// to the default page size.
func parsePageQuery(c *fiber.Ctx) pageQuery {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	perPage := c.QueryInt("perPage", defaultPerPage)
	if perPage != -1 {
		if perPage <= 0 {
			perPage = defaultPerPage
		}
		if perPage > maxPerPage {
			perPage = maxPerPage
		}
	}

	return pageQuery{Page: page, PerPage: perPage}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// mapServiceError translates error kinds into HTTP statuses. Clients see the
// generic message; precise kinds stay in server-side logs and the code field.
func mapServiceError(err error) int {
	switch models.ErrorCode(err) {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusForbidden
	case models.CodeAccountNotFound, models.CodeWrongPassword:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// sessionToken extracts the raw session token from the request: the session
// cookie, or a Bearer Authorization header for non-browser clients.
func sessionToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(auth.SessionCookie); cookie != "" {
		return cookie
	}

	header := c.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

// currentSession resolves the request's session without enforcing it.
func (s *Server) currentSession(c *fiber.Ctx) *auth.Session {
	sess, err := s.authService.ParseSession(c.Context(), sessionToken(c))
	if err != nil {
		return nil
	}
	return sess
}
