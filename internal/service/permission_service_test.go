package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePermissionRepo is an in-memory permission store keyed on (role, feature).
type fakePermissionRepo struct {
	mu   sync.Mutex
	rows map[string]map[string]model.RolePermission // role -> feature -> row
	err  error
}

func newFakePermissionRepo() *fakePermissionRepo {
	return &fakePermissionRepo{rows: make(map[string]map[string]model.RolePermission)}
}

func (f *fakePermissionRepo) ListForRole(_ context.Context, role string) ([]model.RolePermission, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.RolePermission
	for _, row := range f.rows[role] {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Feature < out[j].Feature })
	return out, nil
}

func (f *fakePermissionRepo) DistinctRoles(_ context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var roles []string
	for role := range f.rows {
		roles = append(roles, role)
	}
	return roles, nil
}

func (f *fakePermissionRepo) RoleExists(_ context.Context, role string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[role]) > 0, nil
}

func (f *fakePermissionRepo) CreateBatch(_ context.Context, perms []model.RolePermission) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range perms {
		if f.rows[p.Role] == nil {
			f.rows[p.Role] = make(map[string]model.RolePermission)
		}
		f.rows[p.Role][p.Feature] = p
	}
	return nil
}

func (f *fakePermissionRepo) UpsertBatch(ctx context.Context, perms []model.RolePermission) error {
	return f.CreateBatch(ctx, perms)
}

func (f *fakePermissionRepo) DeleteAllForRole(_ context.Context, role string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	removed := int64(len(f.rows[role]))
	delete(f.rows, role)
	return removed, nil
}

func TestResolvePermissionAdminOverride(t *testing.T) {
	// Admin never consults the snapshot, even an explicitly denying one
	snapshot := []UserPermission{
		{PageName: "Invoices", PagePath: "/dashboard/invoices", AccessLevel: model.AccessNone},
	}

	decision := ResolvePermission(model.RoleAdmin, "/dashboard/invoices", snapshot)
	assert.True(t, decision.HasAccess)
	assert.True(t, decision.CanView)
	assert.True(t, decision.CanEdit)
	assert.Equal(t, model.AccessEdit, decision.AccessLevel)

	decision = ResolvePermission(model.RoleAdmin, "/dashboard/unknown", nil)
	assert.True(t, decision.HasAccess)
}

func TestResolvePermissionDefaultDeny(t *testing.T) {
	snapshot := []UserPermission{
		{PageName: "Customers", PagePath: "/dashboard/customers", AccessLevel: model.AccessView},
	}

	// No entry for the requested page: denied
	decision := ResolvePermission("Accountant", "/dashboard/invoices", snapshot)
	assert.False(t, decision.HasAccess)
	assert.False(t, decision.CanView)
	assert.False(t, decision.CanEdit)
	assert.Equal(t, model.AccessNone, decision.AccessLevel)

	// Empty snapshot: denied
	decision = ResolvePermission("Accountant", "/dashboard/customers", nil)
	assert.False(t, decision.HasAccess)
}

func TestResolvePermissionLevels(t *testing.T) {
	snapshot := []UserPermission{
		{PageName: "Customers", PagePath: "/dashboard/customers", AccessLevel: model.AccessView},
		{PageName: "Invoices", PagePath: "/dashboard/invoices", AccessLevel: model.AccessEdit},
		{PageName: "Expenses", PagePath: "/dashboard/expenses", AccessLevel: model.AccessNone},
	}

	view := ResolvePermission("Accountant", "/dashboard/customers", snapshot)
	assert.True(t, view.HasAccess)
	assert.True(t, view.CanView)
	assert.False(t, view.CanEdit)

	edit := ResolvePermission("Accountant", "/dashboard/invoices", snapshot)
	assert.True(t, edit.HasAccess)
	assert.True(t, edit.CanView)
	assert.True(t, edit.CanEdit)

	none := ResolvePermission("Accountant", "/dashboard/expenses", snapshot)
	assert.False(t, none.HasAccess)
	assert.Equal(t, model.AccessNone, none.AccessLevel)
}

func TestGetSnapshotAdminBypassesStore(t *testing.T) {
	repo := newFakePermissionRepo()
	repo.err = errors.New("store down")
	svc := NewPermissionService(repo)

	// Admin snapshot is synthesized, so a broken store must not matter
	snapshot, err := svc.GetSnapshot(context.Background(), model.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, snapshot, model.FeatureCount)
	for _, p := range snapshot {
		assert.Equal(t, model.AccessEdit, p.AccessLevel)
	}
}

func TestGetSnapshotReadsStore(t *testing.T) {
	repo := newFakePermissionRepo()
	require.NoError(t, repo.CreateBatch(context.Background(), []model.RolePermission{
		{Role: "Accountant", Feature: "Customers", FeaturePath: "/dashboard/customers", AccessLevel: model.AccessEdit},
		{Role: "Accountant", Feature: "Dashboard", FeaturePath: "/dashboard", AccessLevel: model.AccessView},
	}))
	svc := NewPermissionService(repo)

	snapshot, err := svc.GetSnapshot(context.Background(), "Accountant")
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, "Customers", snapshot[0].PageName)
	assert.Equal(t, model.AccessEdit, snapshot[0].AccessLevel)
	assert.Equal(t, "/dashboard", snapshot[1].PagePath)
}
