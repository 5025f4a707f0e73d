package service

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo implements repository.UserRepository with just enough state
// for role tests: per-role user counts.
type fakeUserRepo struct {
	roleCounts map[string]int64
}

func (f *fakeUserRepo) Create(context.Context, *model.User) error               { return nil }
func (f *fakeUserRepo) GetByID(context.Context, uuid.UUID) (*model.User, error) { return nil, ErrNotFound }
func (f *fakeUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, ErrNotFound
}
func (f *fakeUserRepo) List(context.Context, int, int) ([]model.User, int64, error) {
	return nil, 0, nil
}
func (f *fakeUserRepo) Update(context.Context, *model.User) error { return nil }
func (f *fakeUserRepo) Delete(context.Context, uuid.UUID) error   { return nil }
func (f *fakeUserRepo) Count(context.Context) (int64, error)      { return 0, nil }
func (f *fakeUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	return f.roleCounts[role], nil
}
func (f *fakeUserRepo) TouchLastLogin(context.Context, uuid.UUID) error { return nil }
func (f *fakeUserRepo) SaveRefreshToken(context.Context, *model.RefreshToken) error {
	return nil
}
func (f *fakeUserRepo) GetRefreshToken(context.Context, string) (*model.RefreshToken, error) {
	return nil, ErrNotFound
}
func (f *fakeUserRepo) DeleteRefreshToken(context.Context, string) error { return nil }

// fakeTxManager runs the callback without a real transaction.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeAudit records action names for assertion.
type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(_ context.Context, action, _, _ string, _ interface{}) {
	f.actions = append(f.actions, action)
}

func (f *fakeAudit) List(context.Context, int, int) ([]AuditLogResponse, int64, error) {
	return nil, 0, nil
}

func newRoleServiceForTest(permRepo *fakePermissionRepo) (RoleService, *fakeAudit) {
	audit := &fakeAudit{}
	svc := NewRoleService(permRepo, &fakeUserRepo{roleCounts: map[string]int64{"User": 3}}, fakeTxManager{}, audit)
	return svc, audit
}

func seedRole(t *testing.T, repo *fakePermissionRepo, role string, level model.AccessLevel) {
	t.Helper()
	require.NoError(t, repo.CreateBatch(context.Background(), defaultPermissionRows(role, level)))
}

func TestListRolesOrdering(t *testing.T) {
	repo := newFakePermissionRepo()
	seedRole(t, repo, "Zebra", model.AccessNone)
	seedRole(t, repo, model.RoleUser, model.AccessNone)
	seedRole(t, repo, "Accountant", model.AccessNone)
	seedRole(t, repo, model.RoleAdmin, model.AccessEdit)

	svc, _ := newRoleServiceForTest(repo)
	roles, err := svc.ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 4)

	// Admin first, User second, the rest alphabetical
	assert.Equal(t, model.RoleAdmin, roles[0].Name)
	assert.Equal(t, model.RoleUser, roles[1].Name)
	assert.Equal(t, "Accountant", roles[2].Name)
	assert.Equal(t, "Zebra", roles[3].Name)

	assert.True(t, roles[0].IsSystem)
	assert.True(t, roles[1].IsSystem)
	assert.False(t, roles[2].IsSystem)
	assert.Equal(t, int64(3), roles[1].UserCount)
	assert.Equal(t, model.FeatureCount, roles[0].PermissionCount)
}

func TestCreateRoleProvisionsAllFeatures(t *testing.T) {
	repo := newFakePermissionRepo()
	svc, audit := newRoleServiceForTest(repo)

	role, err := svc.CreateRole(context.Background(), CreateRoleRequest{Name: "Accountant"})
	require.NoError(t, err)
	require.Len(t, role.Permissions, model.FeatureCount)
	for _, p := range role.Permissions {
		assert.Equal(t, model.AccessNone, p.AccessLevel)
	}
	assert.False(t, role.IsSystem)
	assert.Contains(t, audit.actions, model.ActionCreateRole)

	// Duplicate names are rejected
	_, err = svc.CreateRole(context.Background(), CreateRoleRequest{Name: "Accountant"})
	assert.ErrorIs(t, err, ErrRoleExists)
}

func TestCreateRoleTrimsAndRejectsBlank(t *testing.T) {
	repo := newFakePermissionRepo()
	svc, _ := newRoleServiceForTest(repo)

	role, err := svc.CreateRole(context.Background(), CreateRoleRequest{Name: "  Sales  "})
	require.NoError(t, err)
	assert.Equal(t, "Sales", role.Name)

	_, err = svc.CreateRole(context.Background(), CreateRoleRequest{Name: "   "})
	assert.Error(t, err)
}

func TestDeleteRoleRejectsSystemRoles(t *testing.T) {
	repo := newFakePermissionRepo()
	seedRole(t, repo, model.RoleAdmin, model.AccessEdit)
	seedRole(t, repo, model.RoleUser, model.AccessNone)

	svc, _ := newRoleServiceForTest(repo)

	assert.ErrorIs(t, svc.DeleteRole(context.Background(), model.RoleAdmin), ErrSystemRole)
	assert.ErrorIs(t, svc.DeleteRole(context.Background(), model.RoleUser), ErrSystemRole)

	// No state change
	exists, err := repo.RoleExists(context.Background(), model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteRoleCascades(t *testing.T) {
	repo := newFakePermissionRepo()
	seedRole(t, repo, "Temp", model.AccessView)

	svc, audit := newRoleServiceForTest(repo)
	require.NoError(t, svc.DeleteRole(context.Background(), "Temp"))

	exists, err := repo.RoleExists(context.Background(), "Temp")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Contains(t, audit.actions, model.ActionDeleteRole)

	assert.ErrorIs(t, svc.DeleteRole(context.Background(), "Temp"), ErrNotFound)
}

func TestUpdateRolePermissionsSkipsMalformed(t *testing.T) {
	repo := newFakePermissionRepo()
	seedRole(t, repo, "Accountant", model.AccessNone)

	svc, _ := newRoleServiceForTest(repo)
	result, err := svc.UpdateRolePermissions(context.Background(), "Accountant", UpdateRolePermissionsRequest{
		Permissions: []PermissionEntry{
			{FeatureName: "Customers", FeaturePath: "/dashboard/customers", AccessLevel: "edit"},
			{FeatureName: "Invoices", FeaturePath: "/dashboard/invoices", AccessLevel: "supreme"},
			{FeatureName: "", FeaturePath: "/dashboard/expenses", AccessLevel: "view"},
			{FeatureName: "Vendors", FeaturePath: "/dashboard/vendors", AccessLevel: "view"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.UpdatedCount)
	assert.Equal(t, 4, result.SubmittedCount)

	detail, err := svc.GetRole(context.Background(), "Accountant")
	require.NoError(t, err)
	levels := make(map[string]model.AccessLevel)
	for _, p := range detail.Permissions {
		levels[p.PageName] = p.AccessLevel
	}
	assert.Equal(t, model.AccessEdit, levels["Customers"])
	assert.Equal(t, model.AccessView, levels["Vendors"])
	assert.Equal(t, model.AccessNone, levels["Invoices"], "malformed level leaves the row untouched")
}

func TestUpdateRolePermissionsUnknownRole(t *testing.T) {
	repo := newFakePermissionRepo()
	svc, _ := newRoleServiceForTest(repo)

	_, err := svc.UpdateRolePermissions(context.Background(), "Ghost", UpdateRolePermissionsRequest{
		Permissions: []PermissionEntry{
			{FeatureName: "Customers", FeaturePath: "/dashboard/customers", AccessLevel: "view"},
		},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeedSystemRoles(t *testing.T) {
	repo := newFakePermissionRepo()
	svc, _ := newRoleServiceForTest(repo)

	require.NoError(t, svc.SeedSystemRoles(context.Background()))

	admin, err := svc.GetRole(context.Background(), model.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admin.Permissions, model.FeatureCount)
	for _, p := range admin.Permissions {
		assert.Equal(t, model.AccessEdit, p.AccessLevel)
	}

	user, err := svc.GetRole(context.Background(), model.RoleUser)
	require.NoError(t, err)
	for _, p := range user.Permissions {
		if p.PageName == "Dashboard" {
			assert.Equal(t, model.AccessView, p.AccessLevel)
		} else {
			assert.Equal(t, model.AccessNone, p.AccessLevel)
		}
	}

	// Re-seeding an already provisioned store changes nothing
	require.NoError(t, repo.UpsertBatch(context.Background(), []model.RolePermission{
		{Role: model.RoleUser, Feature: "Customers", FeaturePath: "/dashboard/customers", AccessLevel: model.AccessEdit},
	}))
	require.NoError(t, svc.SeedSystemRoles(context.Background()))

	user, err = svc.GetRole(context.Background(), model.RoleUser)
	require.NoError(t, err)
	customers := model.AccessNone
	for _, p := range user.Permissions {
		if p.PageName == "Customers" {
			customers = p.AccessLevel
		}
	}
	assert.Equal(t, model.AccessEdit, customers)
}

func TestRoleDescriptionsAndFeatures(t *testing.T) {
	repo := newFakePermissionRepo()
	svc, _ := newRoleServiceForTest(repo)

	features := svc.ListFeatures()
	require.Len(t, features, model.FeatureCount)
	assert.Equal(t, "Dashboard", features[0].PageName)
	assert.Equal(t, "/dashboard", features[0].PagePath)
}
