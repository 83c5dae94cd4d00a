package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func token(t *testing.T, v *Verifier, sub, role string, exp time.Time) string {
	t.Helper()
	raw, err := v.Sign(Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "flight-booking",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	require.NoError(t, err)
	return raw
}

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(secret, "flight-booking")
	user := uuid.New()

	id, err := v.Verify(token(t, v, user.String(), "", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, user, id.UserID)
	assert.Equal(t, RoleUser, id.Role)
	assert.False(t, id.IsAdmin())

	id, err = v.Verify(token(t, v, user.String(), RoleAdmin, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(secret, "flight-booking")
	other := NewVerifier("another-secret", "flight-booking")
	user := uuid.NewString()

	wrongIssuer, err := v.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   user,
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	require.NoError(t, err)

	cases := map[string]string{
		"expired":      token(t, v, user, "", time.Now().Add(-time.Minute)),
		"wrong secret": token(t, other, user, "", time.Now().Add(time.Hour)),
		"bad subject":  token(t, v, "alice", "", time.Now().Add(time.Hour)),
		"garbage":      "not.a.jwt",
		"wrong issuer": wrongIssuer,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func newRouter(v *Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", v.Required(), func(c *gin.Context) {
		id, _ := FromContext(c)
		c.String(http.StatusOK, id.UserID.String())
	})
	r.GET("/admin", v.Required(), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/open", v.Optional(), func(c *gin.Context) {
		if _, ok := FromContext(c); ok {
			c.String(http.StatusOK, "known")
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	return r
}

func do(r *gin.Engine, path, raw string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if raw != "" {
		req.Header.Set("Authorization", "Bearer "+raw)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware(t *testing.T) {
	v := NewVerifier(secret, "flight-booking")
	r := newRouter(v)
	user := uuid.New()
	userToken := token(t, v, user.String(), "", time.Now().Add(time.Hour))
	adminToken := token(t, v, user.String(), RoleAdmin, time.Now().Add(time.Hour))

	w := do(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = do(r, "/me", userToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.String(), w.Body.String())

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", userToken).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", adminToken).Code)

	assert.Equal(t, "anonymous", do(r, "/open", "").Body.String())
	assert.Equal(t, "anonymous", do(r, "/open", "broken").Body.String())
	assert.Equal(t, "known", do(r, "/open", userToken).Body.String())
}
