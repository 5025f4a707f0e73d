package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// extractClaims validates the JWT from cookie or Authorization header and
// returns (userID, role). Aborts the request on any failure.
func extractClaims(c *gin.Context) (string, string, bool) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return "", "", false
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return "", "", false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return "", "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return "", "", false
	}

	userID, _ := claims["sub"].(string)
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
		return "", "", false
	}

	return userID, role, true
}

// setIdentity records the caller on the gin context and attaches the actor
// id to the request context for audit attribution downstream.
func setIdentity(c *gin.Context, userID, role string) {
	c.Set("userID", userID)
	c.Set("userRole", role)

	if id, err := uuid.Parse(userID); err == nil {
		ctx := service.WithActor(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
	}
}

// RequireAuth validates the JWT without imposing any permission check.
// Used by endpoints every authenticated user may call (/me, /permissions).
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, ok := extractClaims(c)
		if !ok {
			return
		}
		setIdentity(c, userID, role)
		c.Next()
	}
}

// RequireAdmin restricts a route to users whose role is "Admin".
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, ok := extractClaims(c)
		if !ok {
			return
		}
		if role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied. Admin role required."))
			return
		}
		setIdentity(c, userID, role)
		c.Next()
	}
}

// --- Feature access gate ---

// snapshotCacheEntry stores a cached permission snapshot for a role with TTL
type snapshotCacheEntry struct {
	snapshot  []service.UserPermission
	expiresAt time.Time
}

var (
	snapshotCache    sync.Map // role name -> snapshotCacheEntry
	snapshotCacheTTL = 5 * time.Minute
)

// snapshotSource is the permission service backing the gate, set via InitAccessGate
var snapshotSource service.PermissionService

var errGateNotInitialized = errors.New("access gate not initialized")

// InitAccessGate wires the permission service into the RequireFeature middleware
func InitAccessGate(svc service.PermissionService) {
	snapshotSource = svc
}

// RequireFeature gates a route on the caller's access level for a dashboard
// feature path. Admin passes unconditionally without a store lookup. A
// failed snapshot fetch denies access: the gate fails closed, never open.
func RequireFeature(pagePath string, min model.AccessLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, ok := extractClaims(c)
		if !ok {
			return
		}
		setIdentity(c, userID, role)

		// Admin bypasses the store entirely
		if role == model.RoleAdmin {
			c.Next()
			return
		}

		snapshot, err := snapshotForRole(c, role)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
			return
		}

		decision := service.ResolvePermission(role, pagePath, snapshot)
		if !decision.HasAccess || !decision.AccessLevel.Satisfies(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Next()
	}
}

// snapshotForRole returns a cached or freshly fetched permission snapshot
func snapshotForRole(c *gin.Context, role string) ([]service.UserPermission, error) {
	if entry, ok := snapshotCache.Load(role); ok {
		cached := entry.(snapshotCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.snapshot, nil
		}
	}

	if snapshotSource == nil {
		return nil, errGateNotInitialized
	}

	snapshot, err := snapshotSource.GetSnapshot(c.Request.Context(), role)
	if err != nil {
		return nil, err
	}

	snapshotCache.Store(role, snapshotCacheEntry{
		snapshot:  snapshot,
		expiresAt: time.Now().Add(snapshotCacheTTL),
	})
	return snapshot, nil
}

// ClearPermissionCache drops the cached snapshot for a role (or all roles
// if empty) so permission edits take effect without waiting out the TTL.
func ClearPermissionCache(role string) {
	if role == "" {
		snapshotCache.Range(func(key, _ interface{}) bool {
			snapshotCache.Delete(key)
			return true
		})
	} else {
		snapshotCache.Delete(role)
	}
}
