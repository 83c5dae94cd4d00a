package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	identityKey = "auth.identity"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the caller as asserted by the identity provider.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Claims is the token payload issued by the identity provider. The subject
// holds the user id.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret, issuer string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{secret: []byte(secret), parser: jwt.NewParser(opts...)}
}

func (v *Verifier) Verify(raw string) (Identity, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	role := claims.Role
	if role == "" {
		role = RoleUser
	}
	return Identity{UserID: userID, Role: role}, nil
}

// Sign issues a token for claims. Used by tests and local tooling; production
// tokens come from the identity provider.
func (v *Verifier) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func bearer(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// Required rejects requests without a valid token.
func (v *Verifier) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearer(c)
		if err != nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			return
		}
		id, err := v.Verify(raw)
		if err != nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", ErrInvalidToken.Error())
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// Optional attaches the identity when a valid token is present and lets
// anonymous requests through. A malformed token is treated as anonymous.
func (v *Verifier) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := bearer(c); err == nil {
			if id, err := v.Verify(raw); err == nil {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// RequireRole must run after Required.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := FromContext(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", ErrMissingToken.Error())
			return
		}
		if id.Role != role {
			abort(c, http.StatusForbidden, "FORBIDDEN", "insufficient role")
			return
		}
		c.Next()
	}
}

func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// WithIdentity is for handler tests that bypass the middleware.
func WithIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":   false,
		"code":      code,
		"message":   message,
		"retryable": false,
	})
}
