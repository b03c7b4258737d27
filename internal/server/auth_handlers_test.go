package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"proxyshare/internal/identity"
	"proxyshare/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withOAuthProvider points the server at an httptest token endpoint that
// issues an access token carrying the given subject for code "good-code".
func withOAuthProvider(t *testing.T, s *Server, subject string) {
	t.Helper()

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"sub": subject}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.FormValue("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": accessToken,
			"token_type":   "bearer",
		})
	}))
	t.Cleanup(tokenServer.Close)

	s.config.OAuthClientID = "client-id"
	s.config.OAuthClientSecret = "client-secret"
	s.config.OAuthAuthURL = tokenServer.URL + "/authorize"
	s.config.OAuthTokenURL = tokenServer.URL + "/token"
	s.config.OAuthRedirectURL = "http://127.0.0.1:3001/api/auth/linuxdo/callback"
	s.provider = identity.NewProvider(s.config)
	s.resolver = identity.NewResolver(s.provider, s.userRepo)
}

func plantState(t *testing.T, s *Server, state string) {
	t.Helper()
	require.NoError(t, s.redis.Set(context.Background(), stateKey(state), "1", time.Minute).Err())
}

func sessionCookieFrom(resp *http.Response) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie {
			return ck
		}
	}
	return nil
}

func TestBeginLogin(t *testing.T) {
	s, app, _ := setupHandlerTest(t)
	withOAuthProvider(t, s, "u9")

	resp := doJSON(t, app, http.MethodGet, "/api/auth/linuxdo", "", nil)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Contains(t, loc.String(), s.config.OAuthAuthURL)

	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "client-id", loc.Query().Get("client_id"))

	// The redirect state must be stored for the callback to consume.
	exists, err := s.redis.Exists(context.Background(), stateKey(state)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestCompleteLogin(t *testing.T) {
	t.Run("Success establishes a session", func(t *testing.T) {
		s, app, db := setupHandlerTest(t)
		withOAuthProvider(t, s, "u9")
		plantState(t, s, "state-1")

		resp := doJSON(t, app, http.MethodGet,
			"/api/auth/linuxdo/callback?state=state-1&code=good-code", "", nil)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, s.config.FrontendURL, resp.Header.Get("Location"))

		ck := sessionCookieFrom(resp)
		require.NotNil(t, ck)
		require.NotEmpty(t, ck.Value)
		assert.True(t, ck.HttpOnly)

		var user models.User
		require.NoError(t, db.Where("id = ?", "u9").First(&user).Error)
		assert.Equal(t, "u9@linux.do", user.Email)
		assert.Equal(t, "user_u9", user.Name)

		// The cookie works against authenticated routes.
		profile := doJSON(t, app, http.MethodGet, "/api/auth/profile", ck.Value, nil)
		assert.Equal(t, http.StatusOK, profile.StatusCode)
		var got models.User
		decodeBody(t, profile, &got)
		assert.Equal(t, "u9", got.ID)
	})

	t.Run("State is single use", func(t *testing.T) {
		s, app, _ := setupHandlerTest(t)
		withOAuthProvider(t, s, "u9")
		plantState(t, s, "state-1")

		first := doJSON(t, app, http.MethodGet,
			"/api/auth/linuxdo/callback?state=state-1&code=good-code", "", nil)
		_ = first.Body.Close()
		require.Equal(t, http.StatusFound, first.StatusCode)

		replay := doJSON(t, app, http.MethodGet,
			"/api/auth/linuxdo/callback?state=state-1&code=good-code", "", nil)
		defer func() { _ = replay.Body.Close() }()
		assert.Equal(t, http.StatusFound, replay.StatusCode)
		assert.Equal(t, s.config.FrontendURL+"?login=failed", replay.Header.Get("Location"))
		assert.Nil(t, sessionCookieFrom(replay))
	})

	t.Run("Missing state fails without touching identity", func(t *testing.T) {
		s, app, _ := setupHandlerTest(t)
		withOAuthProvider(t, s, "u9")

		resp := doJSON(t, app, http.MethodGet,
			"/api/auth/linuxdo/callback?code=good-code", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, s.config.FrontendURL+"?login=failed", resp.Header.Get("Location"))
	})

	t.Run("Missing code consumes the state and fails", func(t *testing.T) {
		s, app, _ := setupHandlerTest(t)
		withOAuthProvider(t, s, "u9")
		plantState(t, s, "state-1")

		resp := doJSON(t, app, http.MethodGet,
			"/api/auth/linuxdo/callback?state=state-1", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, s.config.FrontendURL+"?login=failed", resp.Header.Get("Location"))

		exists, err := s.redis.Exists(context.Background(), stateKey("state-1")).Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})

	t.Run("Exchange failure creates neither user nor session", func(t *testing.T) {
		s, app, db := setupHandlerTest(t)
		withOAuthProvider(t, s, "u9")
		plantState(t, s, "state-1")

		resp := doJSON(t, app, http.MethodGet,
			"/api/auth/linuxdo/callback?state=state-1&code=bad-code", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, s.config.FrontendURL+"?login=failed", resp.Header.Get("Location"))
		assert.Nil(t, sessionCookieFrom(resp))

		var count int64
		require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestProfile(t *testing.T) {
	s, app, db := setupHandlerTest(t)

	t.Run("Without session", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/auth/profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHENTICATED", errorCode(t, resp))
	})

	t.Run("With session", func(t *testing.T) {
		token := loginAs(t, s, db, &models.User{ID: "u1", Email: "u1@linux.do", Name: "user_u1"})

		resp := doJSON(t, app, http.MethodGet, "/api/auth/profile", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got models.User
		decodeBody(t, resp, &got)
		assert.Equal(t, "u1", got.ID)
		assert.Equal(t, "u1@linux.do", got.Email)
	})

	t.Run("Stale token after session expiry", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/auth/profile", "no-such-token", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogout(t *testing.T) {
	s, app, db := setupHandlerTest(t)
	token := loginAs(t, s, db, &models.User{ID: "u1", Email: "u1@linux.do", Name: "user_u1"})

	resp := doJSON(t, app, http.MethodGet, "/api/auth/logout", token, nil)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, s.config.FrontendURL, resp.Header.Get("Location"))

	ck := sessionCookieFrom(resp)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)

	// The session is gone server-side, not just in the browser.
	after := doJSON(t, app, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, after.StatusCode)
}
