package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRoleService struct {
	createErr error
}

func (s *stubRoleService) ListRoles(context.Context) ([]service.RoleSummary, error) {
	return nil, nil
}

func (s *stubRoleService) GetRole(context.Context, string) (*service.RoleDetail, error) {
	return nil, service.ErrNotFound
}

func (s *stubRoleService) CreateRole(_ context.Context, req service.CreateRoleRequest) (*service.RoleDetail, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &service.RoleDetail{Name: req.Name, Description: req.Description}, nil
}

func (s *stubRoleService) DeleteRole(context.Context, string) error { return nil }

func (s *stubRoleService) UpdateRolePermissions(context.Context, string, service.UpdateRolePermissionsRequest) (*service.PermissionUpdateResult, error) {
	return &service.PermissionUpdateResult{}, nil
}

func (s *stubRoleService) ListFeatures() []service.FeatureResponse { return nil }

func (s *stubRoleService) SeedSystemRoles(context.Context) error { return nil }

func postCreateRole(t *testing.T, svc service.RoleService, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req, err := http.NewRequest(http.MethodPost, "/api/admin/roles", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	NewRoleHandler(svc).CreateRole(c)
	return w
}

func TestCreateRoleReturnsCreated(t *testing.T) {
	w := postCreateRole(t, &stubRoleService{}, `{"name":"Accountant"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Accountant")
}

func TestCreateRoleDuplicateIsBadRequest(t *testing.T) {
	w := postCreateRole(t, &stubRoleService{createErr: service.ErrRoleExists}, `{"name":"Accountant"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestCreateRoleMissingNameIsBadRequest(t *testing.T) {
	w := postCreateRole(t, &stubRoleService{}, `{"description":"no name"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
