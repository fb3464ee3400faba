package server

import (
	"github.com/gofiber/fiber/v2"

	"mingle/internal/models"
)

// Page data loaders. Each route resolves the session server-side before
// returning the props its client page renders; protected pages redirect
// unauthenticated visitors to /join instead of returning a 401.

// welcomeStep is the linear state machine behind the join/welcome flow.
// Steps advance only by explicit visitor action; a request naming an
// unknown step or skipping ahead restarts at WELCOME.
type welcomeStep string

const (
	stepWelcome  welcomeStep = "WELCOME"
	stepJoinPool welcomeStep = "JOIN_POOL"
	stepForm     welcomeStep = "FORM"
)

// nextWelcomeStep maps each step to the only step reachable from it.
var nextWelcomeStep = map[welcomeStep]welcomeStep{
	stepWelcome:  stepJoinPool,
	stepJoinPool: stepForm,
}

// LandingPage handles GET /: authenticated visitors go straight to the
// listing, everyone else to the join flow.
func (s *Server) LandingPage(c *fiber.Ctx) error {
	if s.currentSession(c) != nil {
		return c.Redirect("/listing", fiber.StatusFound)
	}
	return c.Redirect("/join", fiber.StatusFound)
}

// JoinPage handles GET /join (public).
func (s *Server) JoinPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page": "join",
		"step": stepWelcome,
	})
}

// LoginPage handles GET /login (public).
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page": "login",
	})
}

// GalleryPage handles GET /gallery (protected).
func (s *Server) GalleryPage(c *fiber.Ctx) error {
	user, redirected := s.pageUser(c)
	if redirected {
		return nil
	}
	return c.JSON(fiber.Map{
		"page":     "gallery",
		"authUser": user,
	})
}

// ListingPage handles GET /listing (protected). Ships the authUser so the
// client can show admin-only delete controls without a second round trip.
func (s *Server) ListingPage(c *fiber.Ctx) error {
	user, redirected := s.pageUser(c)
	if redirected {
		return nil
	}
	return c.JSON(fiber.Map{
		"page":     "listing",
		"authUser": user,
		"isAdmin":  user.IsAdmin(),
	})
}

// ProfilePage handles GET /profile (protected).
func (s *Server) ProfilePage(c *fiber.Ctx) error {
	user, redirected := s.pageUser(c)
	if redirected {
		return nil
	}
	return c.JSON(fiber.Map{
		"page":     "profile",
		"authUser": user,
	})
}

// WelcomePage handles GET /welcome (public). The ?step= parameter names the
// step the visitor is arriving from; the loader validates the transition and
// returns the step to render.
func (s *Server) WelcomePage(c *fiber.Ctx) error {
	from := welcomeStep(c.Query("step", string(stepWelcome)))

	step, ok := nextWelcomeStep[from]
	if from == stepWelcome {
		step = stepWelcome
		ok = true
	}
	if !ok {
		step = stepWelcome
	}

	return c.JSON(fiber.Map{
		"page": "welcome",
		"step": step,
	})
}

// PoolOfSinglesPage handles GET /welcome/pool-of-singles (public): the
// JOIN_POOL step of the welcome flow, reachable only from WELCOME.
func (s *Server) PoolOfSinglesPage(c *fiber.Ctx) error {
	from := welcomeStep(c.Query("step", string(stepWelcome)))
	if nextWelcomeStep[from] != stepJoinPool {
		return c.Redirect("/welcome", fiber.StatusFound)
	}

	return c.JSON(fiber.Map{
		"page": "welcome/pool-of-singles",
		"step": stepJoinPool,
		"next": stepForm,
	})
}

// pageUser resolves the visitor for a protected page. When no valid session
// exists the visitor is redirected to /join and (nil, true) is returned.
func (s *Server) pageUser(c *fiber.Ctx) (*models.User, bool) {
	sess := s.currentSession(c)
	user, err := s.authService.CurrentUser(c.Context(), sess)
	if err != nil || user == nil {
		_ = c.Redirect("/join", fiber.StatusFound)
		return nil, true
	}
	return user, false
}
