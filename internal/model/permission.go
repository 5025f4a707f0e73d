package model

import (
	"time"

	"github.com/google/uuid"
)

// System role names. "Admin" bypasses the permission store entirely;
// neither system role can be renamed or deleted.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// IsSystemRole reports whether name is one of the built-in roles.
func IsSystemRole(name string) bool {
	return name == RoleAdmin || name == RoleUser
}

// AccessLevel is the granularity of permission granted per (role, feature).
// Levels are totally ordered: none < view < edit.
type AccessLevel string

const (
	AccessNone AccessLevel = "none"
	AccessView AccessLevel = "view"
	AccessEdit AccessLevel = "edit"
)

// ParseAccessLevel validates a raw level string.
func ParseAccessLevel(s string) (AccessLevel, bool) {
	switch AccessLevel(s) {
	case AccessNone, AccessView, AccessEdit:
		return AccessLevel(s), true
	}
	return AccessNone, false
}

func (l AccessLevel) rank() int {
	switch l {
	case AccessView:
		return 1
	case AccessEdit:
		return 2
	}
	return 0
}

// Satisfies reports whether l grants at least the min level.
// Unknown levels rank as none, so a typo'd literal can only deny.
func (l AccessLevel) Satisfies(min AccessLevel) bool {
	return l.rank() >= min.rank()
}

// RolePermission is one row of the permission store: the access level a role
// holds on a single dashboard feature. Unique per (role, feature); upserting
// a new level for an existing pair replaces it.
type RolePermission struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Role        string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_role_feature" json:"role"`
	Feature     string      `gorm:"type:varchar(100);not null;uniqueIndex:idx_role_feature" json:"feature"`
	FeaturePath string      `gorm:"type:varchar(255);not null" json:"feature_path"`
	AccessLevel AccessLevel `gorm:"type:varchar(10);not null;default:'none'" json:"access_level"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Feature is a named dashboard capability with a fixed routable path.
type Feature struct {
	Name string
	Path string
}

// DefaultFeatures returns the closed set of dashboard features permissions
// are granted against. Every role is provisioned with exactly these rows.
func DefaultFeatures() []Feature {
	return []Feature{
		{Name: "Dashboard", Path: "/dashboard"},
		{Name: "Customers", Path: "/dashboard/customers"},
		{Name: "Products", Path: "/dashboard/products"},
		{Name: "Invoices", Path: "/dashboard/invoices"},
		{Name: "Expenses", Path: "/dashboard/expenses"},
		{Name: "Vendors", Path: "/dashboard/vendors"},
		{Name: "Transactions", Path: "/dashboard/transactions"},
		{Name: "Reports", Path: "/dashboard/reports"},
		{Name: "Admin Panel", Path: "/dashboard/admin"},
	}
}

// FeatureCount is the size of the fixed feature set.
const FeatureCount = 9
