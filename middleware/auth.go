package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"milk-delivery-api/models"
)

const identityKey = "identity"

type Claims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWT signs and verifies HS256 bearer tokens with a shared secret.
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWT(secret []byte, ttl time.Duration) *JWT {
	return &JWT{secret: secret, ttl: ttl, now: time.Now}
}

// GenerateToken creates a signed JWT for a given user
func (j *JWT) GenerateToken(user *models.User) (string, error) {
	now := j.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ParseToken verifies a token and returns the identity it carries.
func (j *JWT) ParseToken(tokenStr string) (models.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return models.Identity{}, err
	}
	if !token.Valid {
		return models.Identity{}, errors.New("invalid token")
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return models.Identity{}, fmt.Errorf("malformed claims")
	}
	return models.Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// IdentityCheck rejects a validly signed token whose identity is no longer acceptable,
// for example because the user was deleted.
type IdentityCheck func(ctx context.Context, identity models.Identity) error

// AuthRequired validates the JWT, runs checks, and injects the caller identity into context
func (j *JWT) AuthRequired(checks ...IdentityCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
			return
		}
		identity, err := j.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		for _, check := range checks {
			if err := check(c.Request.Context(), identity); err != nil {
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not found in context"})
			return
		}
		for _, r := range roles {
			if identity.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Access denied. Required role(s): " + rolesString(roles),
		})
	}
}

func rolesString(roles []models.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// GetIdentity extracts the authenticated caller from context
func GetIdentity(c *gin.Context) (models.Identity, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := val.(models.Identity)
	return identity, ok
}

// MustIdentity is GetIdentity for handlers mounted behind AuthRequired.
func MustIdentity(c *gin.Context) models.Identity {
	identity, _ := GetIdentity(c)
	return identity
}
