package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated caller. It abstracts identity
// extraction from the web framework so services never see gin.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() uuid.UUID
	// TenantID returns the caller's organization ID.
	TenantID() uuid.UUID
	// HasTenant reports whether a tenant claim was present.
	HasTenant() bool
	// HasRole checks if the user carries a specific role.
	HasRole(role string) bool
	// IsAuthenticated returns true if the caller is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	tenantID      uuid.UUID
	hasTenant     bool
	roles         []string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID   { return i.userID }
func (i *identity) TenantID() uuid.UUID { return i.tenantID }
func (i *identity) HasTenant() bool     { return i.hasTenant }

func (i *identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *identity) IsAuthenticated() bool { return i.authenticated }

// GetIdentity extracts the Identity from a gin context. Returns an
// unauthenticated identity if no user info is present.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	if !userOK {
		return &identity{}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	id := &identity{userID: uid, authenticated: true}

	if roles, ok := c.Get(ContextRolesKey); ok {
		id.roles, _ = roles.([]string)
	}
	if tenant, ok := c.Get(ContextTenantIDKey); ok {
		if tid, ok := tenant.(uuid.UUID); ok {
			id.tenantID = tid
			id.hasTenant = true
		}
	}

	return id
}

// MustGetTenant extracts the identity and requires a tenant claim. Aborts
// with 401 (unauthenticated) or 403 (no tenant) and returns false on failure.
func MustGetTenant(c *gin.Context) (uuid.UUID, bool) {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	if !id.HasTenant() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no organization in token"})
		return uuid.Nil, false
	}
	return id.TenantID(), true
}
