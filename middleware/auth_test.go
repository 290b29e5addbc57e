package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milk-delivery-api/models"
)

func newTestJWT() *JWT {
	return NewJWT([]byte("test-secret"), 7*24*time.Hour)
}

func testUser(role models.Role) *models.User {
	return &models.User{Base: models.Base{ID: "user-1"}, Email: "u@milk.com", Role: role}
}

func TestTokenRoundTrip(t *testing.T) {
	j := newTestJWT()
	token, err := j.GenerateToken(testUser(models.RoleWorker))
	require.NoError(t, err)

	identity, err := j.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: "user-1", Email: "u@milk.com", Role: models.RoleWorker}, identity)
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	j := newTestJWT()
	issued := time.Date(2024, 11, 1, 6, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return issued }
	token, err := j.GenerateToken(testUser(models.RoleCustomer))
	require.NoError(t, err)

	j.now = func() time.Time { return issued.Add(6 * 24 * time.Hour) }
	_, err = j.ParseToken(token)
	assert.NoError(t, err)

	j.now = func() time.Time { return issued.Add(8 * 24 * time.Hour) }
	_, err = j.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	token, err := NewJWT([]byte("other"), time.Hour).GenerateToken(testUser(models.RoleAdmin))
	require.NoError(t, err)
	_, err = newTestJWT().ParseToken(token)
	assert.Error(t, err)
}

func newAuthRouter(j *JWT, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{j.AuthRequired()}
	if len(roles) > 0 {
		handlers = append(handlers, RoleRequired(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, MustIdentity(c).UserID)
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuthRequired(t *testing.T) {
	j := newTestJWT()
	token, err := j.GenerateToken(testUser(models.RoleCustomer))
	require.NoError(t, err)
	r := newAuthRouter(j)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRoleRequired(t *testing.T) {
	j := newTestJWT()
	r := newAuthRouter(j, models.RoleAdmin)

	for role, status := range map[models.Role]int{
		models.RoleAdmin:    http.StatusOK,
		models.RoleWorker:   http.StatusForbidden,
		models.RoleCustomer: http.StatusForbidden,
	} {
		token, err := j.GenerateToken(testUser(role))
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, status, w.Code, string(role))
	}
}

func TestAuthRequiredRunsIdentityChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	j := newTestJWT()
	deleted := errors.New("user deleted")
	r := gin.New()
	r.GET("/me", j.AuthRequired(func(_ context.Context, id models.Identity) error {
		if id.UserID == "user-1" {
			return deleted
		}
		return nil
	}), func(c *gin.Context) {
		c.String(http.StatusOK, MustIdentity(c).UserID)
	})

	serve := func(user *models.User) int {
		token, err := j.GenerateToken(user)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(testUser(models.RoleCustomer)))
	other := testUser(models.RoleCustomer)
	other.ID = "user-2"
	assert.Equal(t, http.StatusOK, serve(other))
}
