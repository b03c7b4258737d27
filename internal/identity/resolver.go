package identity

import (
	"context"
	"fmt"

	"proxyshare/internal/models"
	"proxyshare/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

// Resolver turns an OAuth2 authorization code into a durable local user record.
type Resolver struct {
	exchanger Exchanger
	users     repository.UserRepository
}

// NewResolver returns a Resolver backed by the given token exchanger and user store.
func NewResolver(exchanger Exchanger, users repository.UserRepository) *Resolver {
	return &Resolver{exchanger: exchanger, users: users}
}

// SubjectFromToken extracts the subject claim from the access token.
// The token payload is self-describing; claims are decoded locally and the
// subject is trusted as-is, so no signature verification is performed.
func SubjectFromToken(accessToken string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("malformed access token: %w", err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("access token has no subject claim")
	}
	return sub, nil
}

// Resolve exchanges the authorization code, extracts the subject identifier and
// returns the matching local user, creating a minimal record on first login.
// A failed exchange or a token without a subject yields an IDENTITY_ERROR and
// the caller must not establish a session.
func (r *Resolver) Resolve(ctx context.Context, code string) (*models.User, error) {
	accessToken, err := r.exchanger.Exchange(ctx, code)
	if err != nil {
		return nil, models.NewIdentityError("OAuth code exchange failed", err)
	}

	sub, err := SubjectFromToken(accessToken)
	if err != nil {
		return nil, models.NewIdentityError("Could not resolve user identity from token", err)
	}

	user, err := r.users.GetByID(ctx, sub)
	if err != nil {
		return nil, err
	}
	if user != nil {
		// Repeat login: the stored record is returned unchanged; email and
		// name are not refreshed from the provider.
		return user, nil
	}

	// First login for this subject. Only the id is known at this point, so
	// email and name are deterministic placeholders.
	fresh := &models.User{
		ID:    sub,
		Email: fmt.Sprintf("%s@linux.do", sub),
		Name:  fmt.Sprintf("user_%s", sub),
	}
	if err := r.users.CreateIfAbsent(ctx, fresh); err != nil {
		return nil, err
	}

	// Re-fetch so a concurrent first login resolves to the single stored row.
	user, err = r.users.GetByID(ctx, sub)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewInternalError(fmt.Errorf("user %s missing after upsert", sub))
	}
	return user, nil
}
