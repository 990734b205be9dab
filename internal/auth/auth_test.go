package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	t.Run("Round trip", func(t *testing.T) {
		token, err := m.GenerateAccessToken("user-1", RoleAdmin)
		require.NoError(t, err)

		claims, err := m.ParseAndValidate(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, RoleAdmin, claims.Role)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := NewJWTManager("other", time.Hour).GenerateAccessToken("user-1", RoleUser)
		require.NoError(t, err)

		_, err = m.ParseAndValidate(token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := NewJWTManager("test-secret", -time.Minute).GenerateAccessToken("user-1", RoleUser)
		require.NoError(t, err)

		_, err = m.ParseAndValidate(token)
		assert.Error(t, err)
	})

	t.Run("Rejects none algorithm", func(t *testing.T) {
		claims := &Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.ParseAndValidate(token)
		assert.Error(t, err)
	})
}

func TestPasswordHasher(t *testing.T) {
	h := NewBcryptPasswordHasherWithCost(4)

	hash, err := h.Hash("123456")
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, "123456"))
	assert.ErrorIs(t, h.Compare(hash, "654321"), ErrPasswordMismatch)
}

func TestMiddleware(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	r := gin.New()
	r.GET("/me", AuthRequired(m), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "role": GetRole(c)})
	})
	r.GET("/admin", AuthRequired(m), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	userToken, err := m.GenerateAccessToken("user-1", RoleUser)
	require.NoError(t, err)
	adminToken, err := m.GenerateAccessToken("admin-1", RoleAdmin)
	require.NoError(t, err)

	t.Run("Missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("/me", "").Code)
	})

	t.Run("Bad scheme", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("/me", "Basic "+userToken).Code)
	})

	t.Run("Identity is stored", func(t *testing.T) {
		w := do("/me", "Bearer "+userToken)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "user-1", body["id"])
		assert.Equal(t, RoleUser, body["role"])
	})

	t.Run("Admin only", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do("/admin", "Bearer "+userToken).Code)
		assert.Equal(t, http.StatusOK, do("/admin", "Bearer "+adminToken).Code)
	})
}

func TestIdentity(t *testing.T) {
	owner := Identity{UserID: "a", Role: RoleUser}
	other := Identity{UserID: "b", Role: RoleUser}
	admin := Identity{UserID: "c", Role: RoleAdmin}

	assert.True(t, owner.CanAccess("a"))
	assert.False(t, other.CanAccess("a"))
	assert.True(t, admin.CanAccess("a"))
	assert.False(t, Identity{}.Owns(""))
}
