package auth

import "github.com/gin-gonic/gin"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	userIDKey = "userID"
	roleKey   = "userRole"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Owns reports whether the caller is the given owner.
func (i Identity) Owns(ownerID string) bool {
	return i.UserID != "" && i.UserID == ownerID
}

// CanAccess is the owner-or-admin rule shared by every owned resource.
func (i Identity) CanAccess(ownerID string) bool {
	return i.IsAdmin() || i.Owns(ownerID)
}

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetRole returns the authenticated user's role or empty string.
func GetRole(c *gin.Context) string {
	return c.GetString(roleKey)
}

// GetIdentity returns the caller stored by AuthRequired.
func GetIdentity(c *gin.Context) Identity {
	return Identity{
		UserID: GetUserID(c),
		Role:   GetRole(c),
	}
}

// SetIdentity stores the caller in the Gin context.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(userIDKey, id.UserID)
	c.Set(roleKey, id.Role)
}
