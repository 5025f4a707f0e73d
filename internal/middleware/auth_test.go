package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPermissionService struct {
	snapshots map[string][]service.UserPermission
	err       error
}

func (s *stubPermissionService) GetSnapshot(_ context.Context, role string) ([]service.UserPermission, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshots[role], nil
}

func signTestToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "3c2e1f4a-9d1b-4a57-8d2e-5f0a6b7c8d9e",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(GetJWTSecret())
	require.NoError(t, err)
	return signed
}

func newGateRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/view", RequireFeature("/dashboard/customers", model.AccessView), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/edit", RequireFeature("/dashboard/customers", model.AccessEdit), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireFeatureMissingToken(t *testing.T) {
	ClearPermissionCache("")
	InitAccessGate(&stubPermissionService{})
	router := newGateRouter()

	w := doRequest(router, http.MethodGet, "/view", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireFeatureViewAndEdit(t *testing.T) {
	ClearPermissionCache("")
	InitAccessGate(&stubPermissionService{snapshots: map[string][]service.UserPermission{
		"Accountant": {
			{PageName: "Customers", PagePath: "/dashboard/customers", AccessLevel: model.AccessView},
		},
	}})
	router := newGateRouter()
	token := signTestToken(t, "Accountant")

	w := doRequest(router, http.MethodGet, "/view", token)
	assert.Equal(t, http.StatusOK, w.Code)

	// View access is not enough for an edit-gated route
	w = doRequest(router, http.MethodPost, "/edit", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireFeatureDefaultDeny(t *testing.T) {
	ClearPermissionCache("")
	InitAccessGate(&stubPermissionService{snapshots: map[string][]service.UserPermission{}})
	router := newGateRouter()

	w := doRequest(router, http.MethodGet, "/view", signTestToken(t, "Ghost"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireFeatureFailsClosed(t *testing.T) {
	ClearPermissionCache("")
	InitAccessGate(&stubPermissionService{err: errors.New("store down")})
	router := newGateRouter()

	w := doRequest(router, http.MethodGet, "/view", signTestToken(t, "Accountant"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireFeatureAdminOverride(t *testing.T) {
	ClearPermissionCache("")
	// Admin must pass even when the store is unreachable
	InitAccessGate(&stubPermissionService{err: errors.New("store down")})
	router := newGateRouter()
	token := signTestToken(t, model.RoleAdmin)

	w := doRequest(router, http.MethodGet, "/view", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/edit", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	ClearPermissionCache("")
	InitAccessGate(&stubPermissionService{})
	router := newGateRouter()

	w := doRequest(router, http.MethodGet, "/admin", signTestToken(t, model.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/admin", signTestToken(t, "Accountant"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestClearPermissionCache(t *testing.T) {
	ClearPermissionCache("")
	stub := &stubPermissionService{snapshots: map[string][]service.UserPermission{
		"Accountant": {
			{PageName: "Customers", PagePath: "/dashboard/customers", AccessLevel: model.AccessNone},
		},
	}}
	InitAccessGate(stub)
	router := newGateRouter()
	token := signTestToken(t, "Accountant")

	w := doRequest(router, http.MethodGet, "/view", token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Grant access; the stale cached snapshot still denies until cleared
	stub.snapshots["Accountant"] = []service.UserPermission{
		{PageName: "Customers", PagePath: "/dashboard/customers", AccessLevel: model.AccessView},
	}
	w = doRequest(router, http.MethodGet, "/view", token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	ClearPermissionCache("Accountant")
	w = doRequest(router, http.MethodGet, "/view", token)
	assert.Equal(t, http.StatusOK, w.Code)
}
