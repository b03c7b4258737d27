package server

import (
	"fmt"
	"log/slog"
	"time"

	"proxyshare/internal/middleware"
	"proxyshare/internal/models"
	"proxyshare/internal/observability"
	"proxyshare/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// stateTTL bounds how long a login attempt may sit between redirect and callback.
const stateTTL = 10 * time.Minute

func stateKey(state string) string {
	return fmt.Sprintf("oauth_state:%s", state)
}

// BeginLogin handles GET /api/auth/linuxdo.
// It stores a one-shot state token and redirects the browser to the provider's
// authorize endpoint.
func (s *Server) BeginLogin(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(fmt.Errorf("session store unavailable")))
	}

	state := uuid.New().String()
	if err := s.redis.Set(c.Context(), stateKey(state), "1", stateTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Redirect(s.provider.AuthCodeURL(state), fiber.StatusFound)
}

// CompleteLogin handles GET /api/auth/linuxdo/callback.
// On success a session is established and the browser is redirected to the
// front end; any identity failure redirects there with a failure flag and no
// session is created.
func (s *Server) CompleteLogin(c *fiber.Ctx) error {
	ctx := c.Context()

	state := c.Query("state")
	if state == "" || s.redis == nil {
		return s.failLogin(c, "state", fmt.Errorf("missing state parameter"))
	}
	// Single use: the state is consumed whether or not the rest succeeds.
	deleted, err := s.redis.Del(ctx, stateKey(state)).Result()
	if err != nil || deleted == 0 {
		return s.failLogin(c, "state", fmt.Errorf("unknown or expired state"))
	}

	code := c.Query("code")
	if code == "" {
		return s.failLogin(c, "code", fmt.Errorf("missing authorization code"))
	}

	user, err := s.resolver.Resolve(ctx, code)
	if err != nil {
		return s.failLogin(c, "resolve", err)
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return s.failLogin(c, "session", err)
	}

	s.setSessionCookie(c, token, session.TTL)

	middleware.Logger.InfoContext(c.UserContext(), "login completed",
		slog.String("user_id", user.ID))
	return c.Redirect(s.config.FrontendURL, fiber.StatusFound)
}

// failLogin records the failure and sends the browser back to the front end.
func (s *Server) failLogin(c *fiber.Ctx, stage string, err error) error {
	observability.LoginFailures.WithLabelValues(stage).Inc()
	middleware.Logger.WarnContext(c.UserContext(), "login failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
	return c.Redirect(s.config.FrontendURL+"?login=failed", fiber.StatusFound)
}

// Profile handles GET /api/auth/profile.
func (s *Server) Profile(c *fiber.Ctx) error {
	user, ok := s.currentUser(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Not logged in"))
	}
	return c.JSON(user)
}

// Logout handles GET /api/auth/logout.
// The session reference is invalidated server-side and the cookie cleared.
func (s *Server) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(sessionCookie); token != "" {
		if err := s.sessions.Destroy(c.Context(), token); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
	}

	s.setSessionCookie(c, "", -time.Hour)
	return c.Redirect(s.config.FrontendURL, fiber.StatusFound)
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string, maxAge time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
