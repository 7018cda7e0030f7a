// Package identity resolves which cart a request operates on. Authentication
// itself is external: the user id is consumed from the request context where
// the auth layer placed it, never established here.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/mkorchagin/foodcart/internal/domain"
)

// CartTokenCookie stores the anonymous cart token for guest shoppers.
const CartTokenCookie = "cart_token"

// cartTokenTTL keeps the cookie shorter-lived than the cart cache entry, so
// a valid cookie always has a reachable cache slot behind it.
const cartTokenTTL = 14 * 24 * 60 * 60 // seconds

type contextKey string

// userIDKey is where the external auth middleware stores the authenticated
// user id.
const userIDKey contextKey = "user_id"

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) *int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return &id
	}
	return nil
}

// Resolver maps a request to a CartIdentity.
type Resolver interface {
	// Resolve returns the identity for the request, minting a cart token for
	// first-contact shoppers. When a token was minted, it is also set as a
	// cookie on the response.
	Resolve(w http.ResponseWriter, r *http.Request) (domain.CartIdentity, error)
}

// CookieResolver reads the cart token from a cookie and the user id from the
// request context.
type CookieResolver struct {
	secure bool
}

var _ Resolver = (*CookieResolver)(nil)

func NewCookieResolver(secure bool) *CookieResolver {
	return &CookieResolver{secure: secure}
}

func (cr *CookieResolver) Resolve(w http.ResponseWriter, r *http.Request) (domain.CartIdentity, error) {
	token := cookieValue(r, CartTokenCookie)
	if token == "" {
		newToken, err := generateCartToken()
		if err != nil {
			return domain.CartIdentity{}, fmt.Errorf("failed to generate cart token: %w", err)
		}
		token = newToken

		http.SetCookie(w, &http.Cookie{
			Name:     CartTokenCookie,
			Value:    token,
			Path:     "/",
			MaxAge:   cartTokenTTL,
			HttpOnly: true,
			Secure:   cr.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return domain.CartIdentity{
		CartToken: token,
		UserID:    UserIDFromContext(r.Context()),
	}, nil
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// generateCartToken generates a cryptographically secure cart token.
func generateCartToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
