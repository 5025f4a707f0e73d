package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// PermissionEntry is one row of a batch permission update. Malformed entries
// (blank feature, blank path, or a level outside the enum) are skipped, not
// fatal to the batch.
type PermissionEntry struct {
	FeatureName string `json:"feature_name"`
	FeaturePath string `json:"feature_path"`
	AccessLevel string `json:"access_level"`
}

type UpdateRolePermissionsRequest struct {
	Permissions []PermissionEntry `json:"permissions" binding:"required"`
}

type PermissionUpdateResult struct {
	UpdatedCount   int `json:"updated_count"`
	SubmittedCount int `json:"submitted_count"`
}

type RoleSummary struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	IsSystem        bool   `json:"is_system"`
	UserCount       int64  `json:"user_count"`
	PermissionCount int    `json:"permission_count"`
}

type RolePermissionResponse struct {
	PageName    string            `json:"page_name"`
	PagePath    string            `json:"page_path"`
	AccessLevel model.AccessLevel `json:"access_level"`
}

type RoleDetail struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	IsSystem    bool                     `json:"is_system"`
	Permissions []RolePermissionResponse `json:"permissions"`
}

type FeatureResponse struct {
	PageName    string `json:"page_name"`
	PagePath    string `json:"page_path"`
	Description string `json:"description"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleSummary, error)
	GetRole(ctx context.Context, name string) (*RoleDetail, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleDetail, error)
	DeleteRole(ctx context.Context, name string) error
	UpdateRolePermissions(ctx context.Context, name string, req UpdateRolePermissionsRequest) (*PermissionUpdateResult, error)
	ListFeatures() []FeatureResponse
	SeedSystemRoles(ctx context.Context) error
}

type roleService struct {
	permRepo  repository.PermissionRepository
	userRepo  repository.UserRepository
	txManager repository.TransactionManager
	audit     AuditService
}

func NewRoleService(
	permRepo repository.PermissionRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
	audit AuditService,
) RoleService {
	return &roleService{
		permRepo:  permRepo,
		userRepo:  userRepo,
		txManager: txManager,
		audit:     audit,
	}
}

// --- Implementation ---

// roleDescription synthesizes the display description; only custom roles
// carry a free-form one and it is not persisted separately.
func roleDescription(name string) string {
	switch name {
	case model.RoleAdmin:
		return "Full system access with all permissions"
	case model.RoleUser:
		return "Standard user with basic permissions"
	}
	return "Custom role: " + name
}

// sortRoleNames orders "Admin" first, "User" second, then the remainder
// alphabetically. The fixed ordering is a UX convention the dashboard
// depends on for deterministic listing.
func sortRoleNames(names []string) {
	rank := func(name string) int {
		switch name {
		case model.RoleAdmin:
			return 0
		case model.RoleUser:
			return 1
		}
		return 2
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
}

func (s *roleService) ListRoles(ctx context.Context) ([]RoleSummary, error) {
	names, err := s.permRepo.DistinctRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}
	sortRoleNames(names)

	res := make([]RoleSummary, 0, len(names))
	for _, name := range names {
		users, err := s.userRepo.CountByRole(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to count users for role '%s': %w", name, err)
		}
		res = append(res, RoleSummary{
			Name:            name,
			Description:     roleDescription(name),
			IsSystem:        model.IsSystemRole(name),
			UserCount:       users,
			PermissionCount: model.FeatureCount,
		})
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, name string) (*RoleDetail, error) {
	perms, err := s.permRepo.ListForRole(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch role '%s': %w", name, err)
	}
	if len(perms) == 0 {
		return nil, ErrNotFound
	}

	res := make([]RolePermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, RolePermissionResponse{
			PageName:    p.Feature,
			PagePath:    p.FeaturePath,
			AccessLevel: p.AccessLevel,
		})
	}

	return &RoleDetail{
		Name:        name,
		Description: roleDescription(name),
		IsSystem:    model.IsSystemRole(name),
		Permissions: res,
	}, nil
}

// CreateRole provisions a custom role with the full default row-set: one
// entry per feature, all at "none".
func (s *roleService) CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}

	exists, err := s.permRepo.RoleExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check role '%s': %w", name, err)
	}
	if exists {
		return nil, ErrRoleExists
	}

	rows := defaultPermissionRows(name, model.AccessNone)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.permRepo.CreateBatch(txCtx, rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create role '%s': %w", name, err)
	}

	s.audit.Record(ctx, model.ActionCreateRole, name, name, req)

	return s.GetRole(ctx, name)
}

// DeleteRole removes a custom role and cascades deletion of all its
// permission rows. System roles are rejected with no state change.
func (s *roleService) DeleteRole(ctx context.Context, name string) error {
	if model.IsSystemRole(name) {
		return ErrSystemRole
	}

	exists, err := s.permRepo.RoleExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check role '%s': %w", name, err)
	}
	if !exists {
		return ErrNotFound
	}

	removed, err := s.permRepo.DeleteAllForRole(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to delete role '%s': %w", name, err)
	}

	s.audit.Record(ctx, model.ActionDeleteRole, name, name, map[string]interface{}{"rows_removed": removed})
	return nil
}

// UpdateRolePermissions applies a batch of access-level changes keyed on
// (role, feature). Malformed entries are excluded from the applied count
// without aborting the well-formed ones; a store failure aborts the batch.
func (s *roleService) UpdateRolePermissions(ctx context.Context, name string, req UpdateRolePermissionsRequest) (*PermissionUpdateResult, error) {
	exists, err := s.permRepo.RoleExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check role '%s': %w", name, err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows := make([]model.RolePermission, 0, len(req.Permissions))
	for _, entry := range req.Permissions {
		level, ok := model.ParseAccessLevel(entry.AccessLevel)
		if !ok || entry.FeatureName == "" || entry.FeaturePath == "" {
			continue
		}
		rows = append(rows, model.RolePermission{
			Role:        name,
			Feature:     entry.FeatureName,
			FeaturePath: entry.FeaturePath,
			AccessLevel: level,
		})
	}

	if err := s.permRepo.UpsertBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to update permissions for role '%s': %w", name, err)
	}

	s.audit.Record(ctx, model.ActionUpdateRolePermissions, name, name, map[string]interface{}{
		"updated":   len(rows),
		"submitted": len(req.Permissions),
	})

	return &PermissionUpdateResult{
		UpdatedCount:   len(rows),
		SubmittedCount: len(req.Permissions),
	}, nil
}

// ListFeatures returns the fixed feature catalog the Admin Console edits
// access levels against.
func (s *roleService) ListFeatures() []FeatureResponse {
	features := model.DefaultFeatures()
	res := make([]FeatureResponse, 0, len(features))
	for _, f := range features {
		res = append(res, FeatureResponse{
			PageName:    f.Name,
			PagePath:    f.Path,
			Description: "Access to " + f.Name + " feature",
		})
	}
	return res
}

// SeedSystemRoles provisions the built-in roles on first boot: Admin with
// full edit rows (informational only, Admin bypasses the store at resolve
// time) and User with a conservative Dashboard-view default.
func (s *roleService) SeedSystemRoles(ctx context.Context) error {
	adminExists, err := s.permRepo.RoleExists(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to check Admin role: %w", err)
	}
	if !adminExists {
		if err := s.permRepo.CreateBatch(ctx, defaultPermissionRows(model.RoleAdmin, model.AccessEdit)); err != nil {
			return fmt.Errorf("failed to seed Admin role: %w", err)
		}
	}

	userExists, err := s.permRepo.RoleExists(ctx, model.RoleUser)
	if err != nil {
		return fmt.Errorf("failed to check User role: %w", err)
	}
	if !userExists {
		rows := defaultPermissionRows(model.RoleUser, model.AccessNone)
		for i := range rows {
			if rows[i].Feature == "Dashboard" {
				rows[i].AccessLevel = model.AccessView
			}
		}
		if err := s.permRepo.CreateBatch(ctx, rows); err != nil {
			return fmt.Errorf("failed to seed User role: %w", err)
		}
	}

	return nil
}

func defaultPermissionRows(role string, level model.AccessLevel) []model.RolePermission {
	features := model.DefaultFeatures()
	rows := make([]model.RolePermission, 0, len(features))
	for _, f := range features {
		rows = append(rows, model.RolePermission{
			Role:        role,
			Feature:     f.Name,
			FeaturePath: f.Path,
			AccessLevel: level,
		})
	}
	return rows
}
