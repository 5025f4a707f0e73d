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

type stubUserService struct {
	registerErr error
}

func (s *stubUserService) Register(_ context.Context, req service.RegisterRequest) (*service.AuthResponse, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &service.AuthResponse{
		Token:        "access",
		RefreshToken: "refresh",
		User:         service.UserResponse{Email: req.Email},
	}, nil
}

func (s *stubUserService) Login(context.Context, service.LoginRequest) (*service.AuthResponse, error) {
	return nil, service.ErrInvalidCredentials
}

func (s *stubUserService) Refresh(context.Context, string) (*service.TokenResponse, error) {
	return nil, service.ErrInvalidCredentials
}

func (s *stubUserService) Logout(context.Context, string) error { return nil }

func (s *stubUserService) GetUserByID(context.Context, string) (*service.UserResponse, error) {
	return nil, service.ErrNotFound
}

func (s *stubUserService) ListUsers(context.Context, int, int) ([]service.UserResponse, int64, error) {
	return nil, 0, nil
}

func (s *stubUserService) CreateUser(context.Context, service.CreateUserRequest) (*service.UserResponse, error) {
	return nil, nil
}

func (s *stubUserService) UpdateUser(context.Context, string, service.UpdateUserRequest) (*service.UserResponse, error) {
	return nil, nil
}

func (s *stubUserService) DeleteUser(context.Context, string) error { return nil }

func (s *stubUserService) SeedAdminUser(context.Context, string, string) error { return nil }

type stubSnapshotService struct{}

func (stubSnapshotService) GetSnapshot(context.Context, string) ([]service.UserPermission, error) {
	return nil, nil
}

func postRegister(t *testing.T, svc service.UserService, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req, err := http.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	NewAuthHandler(svc, stubSnapshotService{}).Register(c)
	return w
}

func TestRegisterReturnsCreated(t *testing.T) {
	w := postRegister(t, &stubUserService{}, `{"email":"new@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "new@example.com")
}

func TestRegisterDuplicateEmailIsBadRequest(t *testing.T) {
	w := postRegister(t, &stubUserService{registerErr: service.ErrEmailExists}, `{"email":"taken@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestRegisterInvalidPayloadIsBadRequest(t *testing.T) {
	w := postRegister(t, &stubUserService{}, `{"email":"not-an-email","password":"secret1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
