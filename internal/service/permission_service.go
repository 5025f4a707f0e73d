package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
)

// UserPermission is one entry of a role's permission snapshot, fetched once
// per session and used for all access decisions until the next refresh.
type UserPermission struct {
	PageName    string            `json:"page_name"`
	PagePath    string            `json:"page_path"`
	AccessLevel model.AccessLevel `json:"access_level"`
}

// PermissionDecision is the resolver's verdict for one (role, page) pair.
type PermissionDecision struct {
	HasAccess   bool              `json:"has_access"`
	CanView     bool              `json:"can_view"`
	CanEdit     bool              `json:"can_edit"`
	AccessLevel model.AccessLevel `json:"access_level"`
}

// ResolvePermission decides access for a role on a page given a permission
// snapshot. Pure and synchronous; performs no I/O.
//
// Order matters: the Admin override never consults the snapshot, and a
// missing entry is equivalent to "none": absence of data never grants
// access.
func ResolvePermission(role, pagePath string, snapshot []UserPermission) PermissionDecision {
	if role == model.RoleAdmin {
		return PermissionDecision{HasAccess: true, CanView: true, CanEdit: true, AccessLevel: model.AccessEdit}
	}

	for _, p := range snapshot {
		if p.PagePath != pagePath {
			continue
		}
		switch p.AccessLevel {
		case model.AccessView:
			return PermissionDecision{HasAccess: true, CanView: true, AccessLevel: model.AccessView}
		case model.AccessEdit:
			return PermissionDecision{HasAccess: true, CanView: true, CanEdit: true, AccessLevel: model.AccessEdit}
		}
		break
	}

	return PermissionDecision{AccessLevel: model.AccessNone}
}

// PermissionService serves permission snapshots for a role.
type PermissionService interface {
	GetSnapshot(ctx context.Context, role string) ([]UserPermission, error)
}

type permissionService struct {
	permRepo repository.PermissionRepository
}

func NewPermissionService(permRepo repository.PermissionRepository) PermissionService {
	return &permissionService{permRepo: permRepo}
}

// GetSnapshot returns the stored feature list for a role. The Admin role
// short-circuits to full edit access over the fixed feature catalog without
// touching the store.
func (s *permissionService) GetSnapshot(ctx context.Context, role string) ([]UserPermission, error) {
	if role == model.RoleAdmin {
		features := model.DefaultFeatures()
		snapshot := make([]UserPermission, 0, len(features))
		for _, f := range features {
			snapshot = append(snapshot, UserPermission{
				PageName:    f.Name,
				PagePath:    f.Path,
				AccessLevel: model.AccessEdit,
			})
		}
		return snapshot, nil
	}

	perms, err := s.permRepo.ListForRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions for role '%s': %w", role, err)
	}

	snapshot := make([]UserPermission, 0, len(perms))
	for _, p := range perms {
		snapshot = append(snapshot, UserPermission{
			PageName:    p.Feature,
			PagePath:    p.FeaturePath,
			AccessLevel: p.AccessLevel,
		})
	}
	return snapshot, nil
}
