package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CookieResolver_MintsTokenOnFirstContact(t *testing.T) {
	resolver := NewCookieResolver(false)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()

	id, err := resolver.Resolve(rec, req)
	require.NoError(t, err)
	assert.NotEmpty(t, id.CartToken)
	assert.Nil(t, id.UserID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, CartTokenCookie, cookie.Name)
	assert.Equal(t, id.CartToken, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, cartTokenTTL, cookie.MaxAge)
}

func Test_CookieResolver_ReusesExistingToken(t *testing.T) {
	resolver := NewCookieResolver(false)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartTokenCookie, Value: "existing-token"})
	rec := httptest.NewRecorder()

	id, err := resolver.Resolve(rec, req)
	require.NoError(t, err)
	assert.Equal(t, "existing-token", id.CartToken)
	assert.Empty(t, rec.Result().Cookies(), "no new cookie when one is already present")
}

func Test_CookieResolver_ReadsUserIDFromContext(t *testing.T) {
	resolver := NewCookieResolver(false)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartTokenCookie, Value: "existing-token"})
	req = req.WithContext(WithUserID(req.Context(), 42))
	rec := httptest.NewRecorder()

	id, err := resolver.Resolve(rec, req)
	require.NoError(t, err)
	require.NotNil(t, id.UserID)
	assert.Equal(t, int64(42), *id.UserID)
	assert.Equal(t, "existing-token", id.CartToken)
}

func Test_CookieResolver_SecureFlag(t *testing.T) {
	resolver := NewCookieResolver(true)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()

	_, err := resolver.Resolve(rec, req)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}

func Test_UserIDFromContext_Absent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, UserIDFromContext(req.Context()))
}

func Test_GeneratedTokensAreUnique(t *testing.T) {
	resolver := NewCookieResolver(false)
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		rec := httptest.NewRecorder()
		id, err := resolver.Resolve(rec, req)
		require.NoError(t, err)
		assert.False(t, seen[id.CartToken], "token collision")
		seen[id.CartToken] = true
	}
}
