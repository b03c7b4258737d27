package server

import (
	"context"
	"testing"

	"proxyshare/internal/config"
	"proxyshare/internal/identity"
	"proxyshare/internal/models"
	"proxyshare/internal/repository"
	"proxyshare/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerTest(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Proxy{}, &models.ValidityReport{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Env:         "test",
		FrontendURL: "http://127.0.0.1:5500/client",
	}

	userRepo := repository.NewUserRepository(db)
	provider := identity.NewProvider(cfg)
	s := &Server{
		config:     cfg,
		db:         db,
		redis:      rdb,
		userRepo:   userRepo,
		proxyRepo:  repository.NewProxyRepository(db),
		reportRepo: repository.NewReportRepository(db),
		sessions:   session.NewStore(rdb),
		provider:   provider,
		resolver:   identity.NewResolver(provider, userRepo),
	}

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app, db
}

// loginAs persists the user and opens a session; the returned token goes into
// the session cookie on test requests.
func loginAs(t *testing.T, s *Server, db *gorm.DB, user *models.User) string {
	t.Helper()
	require.NoError(t, db.Create(user).Error)
	token, err := s.sessions.Create(context.Background(), user.ID)
	require.NoError(t, err)
	return token
}

func sessionCookieHeader(token string) string {
	return sessionCookie + "=" + token
}
