package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// --- DTOs ---

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

/// CreateUserRequest is the Admin Console variant of user creation: role and
// activation state are editable.
type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	Role        string `json:"role"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateUserRequest struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	Password    *string `json:"password" binding:"omitempty,min=6"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	CompanyName *string `json:"company_name"`
	Role        *string `json:"role"`
	IsActive    *bool   `json:"is_active"`
}

// UserResponse never exposes the password hash
type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	CompanyName string  `json:"company_name"`
	Role        string  `json:"role"`
	IsActive    bool    `json:"is_active"`
	LastLogin   *string `json:"last_login"`
	CreatedAt   string  `json:"created_at"`
}

// --- Interface ---

type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
	SeedAdminUser(ctx context.Context, email, password string) error
}

type userService struct {
	repo     repository.UserRepository
	permRepo repository.PermissionRepository
	audit    AuditService
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, permRepo repository.PermissionRepository, audit AuditService) UserService {
	return &userService{repo: repo, permRepo: permRepo, audit: audit}
}

// --- Helpers ---

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

func mapToResponse(user *model.User) *UserResponse {
	var lastLogin *string
	if user.LastLogin != nil {
		s := user.LastLogin.Format(time.RFC3339)
		lastLogin = &s
	}
	return &UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		CompanyName: user.CompanyName,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLogin:   lastLogin,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

func signAccessToken(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
	})
	return token.SignedString(jwtSecret())
}

func newRefreshTokenString() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// validateRole accepts system roles or any role present in the permission
// store; anything else would silently default-deny every page, so reject it
// at write time instead.
func (s *userService) validateRole(ctx context.Context, role string) error {
	if model.IsSystemRole(role) {
		return nil
	}
	exists, err := s.permRepo.RoleExists(ctx, role)
	if err != nil {
		return fmt.Errorf("failed to validate role '%s': %w", role, err)
	}
	if !exists {
		return ErrUnknownRole
	}
	return nil
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*AuthResponse, error) {
	accessToken, err := signAccessToken(user)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	refreshString, err := newRefreshTokenString()
	if err != nil {
		return nil, errors.New("failed to generate refresh token")
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshString,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.repo.SaveRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &AuthResponse{
		Token:        accessToken,
		RefreshToken: refreshString,
		User:         *mapToResponse(user),
	}, nil
}

// --- Implementation ---

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Email:       req.Email,
		Password:    string(hashedPassword),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
		Role:        model.RoleUser, // Self-registration never grants elevated roles
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	stored, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, refreshToken)
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByID(ctx, stored.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := signAccessToken(user)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &TokenResponse{Token: accessToken, RefreshToken: refreshToken}, nil
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}

	return responses, total, nil
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if err := s.validateRole(ctx, role); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user := &model.User{
		Email:       req.Email,
		Password:    string(hashedPassword),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
		Role:        role,
		IsActive:    isActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, model.ActionCreateUser, user.ID.String(), user.Email, map[string]string{"role": role})

	return mapToResponse(user), nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.Role != nil && *req.Role != user.Role {
		if err := s.validateRole(ctx, *req.Role); err != nil {
			return nil, err
		}
		user.Role = *req.Role
	}

	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.repo.GetByEmail(ctx, *req.Email); err == nil {
			return nil, ErrEmailExists
		}
		user.Email = *req.Email
	}

	if req.Password != nil && *req.Password != "" {
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, errors.New("failed to hash password")
		}
		user.Password = string(hashed)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.CompanyName != nil {
		user.CompanyName = *req.CompanyName
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, model.ActionUpdateUser, user.ID.String(), user.Email, req)

	return mapToResponse(user), nil
}

// DeleteUser removes an account; deleting one's own account is rejected.
func (s *userService) DeleteUser(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	if actor := ActorFromContext(ctx); actor != nil && *actor == userID {
		return ErrSelfDelete
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	s.audit.Record(ctx, model.ActionDeleteUser, userID.String(), user.Email, nil)
	return nil
}

// SeedAdminUser creates the initial Admin account when the users table is
// empty. No-op otherwise.
func (s *userService) SeedAdminUser(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash admin password")
	}

	admin := &model.User{
		Email:    email,
		Password: string(hashedPassword),
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	return s.repo.Create(ctx, admin)
}
