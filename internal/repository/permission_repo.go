package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PermissionRepository is the data access layer for the permission store:
// role_permissions rows keyed (role, feature).
type PermissionRepository interface {
	ListForRole(ctx context.Context, role string) ([]model.RolePermission, error)
	DistinctRoles(ctx context.Context) ([]string, error)
	RoleExists(ctx context.Context, role string) (bool, error)
	CreateBatch(ctx context.Context, perms []model.RolePermission) error
	UpsertBatch(ctx context.Context, perms []model.RolePermission) error
	DeleteAllForRole(ctx context.Context, role string) (int64, error)
}

type permissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) ListForRole(ctx context.Context, role string) ([]model.RolePermission, error) {
	var perms []model.RolePermission
	if err := GetDB(ctx, r.db).Where("role = ?", role).Order("feature asc").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepository) DistinctRoles(ctx context.Context) ([]string, error) {
	var roles []string
	err := GetDB(ctx, r.db).Model(&model.RolePermission{}).
		Distinct("role").
		Pluck("role", &roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *permissionRepository) RoleExists(ctx context.Context, role string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.RolePermission{}).
		Where("role = ?", role).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *permissionRepository) CreateBatch(ctx context.Context, perms []model.RolePermission) error {
	if len(perms) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&perms).Error
}

// UpsertBatch replaces the access level for each (role, feature) pair in one
// statement; the store's unique index resolves the conflict target.
func (r *permissionRepository) UpsertBatch(ctx context.Context, perms []model.RolePermission) error {
	if len(perms) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role"}, {Name: "feature"}},
		DoUpdates: clause.AssignmentColumns([]string{"feature_path", "access_level", "updated_at"}),
	}).Create(&perms).Error
}

func (r *permissionRepository) DeleteAllForRole(ctx context.Context, role string) (int64, error) {
	res := GetDB(ctx, r.db).Where("role = ?", role).Delete(&model.RolePermission{})
	return res.RowsAffected, res.Error
}
