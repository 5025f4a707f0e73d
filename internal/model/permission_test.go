package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAccessLevel(t *testing.T) {
	for _, valid := range []string{"none", "view", "edit"} {
		level, ok := ParseAccessLevel(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, AccessLevel(valid), level)
	}

	for _, invalid := range []string{"", "admin", "VIEW", "write", "full"} {
		_, ok := ParseAccessLevel(invalid)
		assert.False(t, ok, invalid)
	}
}

func TestAccessLevelSatisfies(t *testing.T) {
	assert.True(t, AccessEdit.Satisfies(AccessView))
	assert.True(t, AccessEdit.Satisfies(AccessEdit))
	assert.True(t, AccessView.Satisfies(AccessView))
	assert.True(t, AccessNone.Satisfies(AccessNone))

	assert.False(t, AccessView.Satisfies(AccessEdit))
	assert.False(t, AccessNone.Satisfies(AccessView))
	assert.False(t, AccessNone.Satisfies(AccessEdit))

	// Unknown literals rank as none and can only deny
	assert.False(t, AccessLevel("full").Satisfies(AccessView))
	assert.True(t, AccessView.Satisfies(AccessLevel("full")))
}

func TestDefaultFeatures(t *testing.T) {
	features := DefaultFeatures()
	assert.Len(t, features, FeatureCount)

	paths := make(map[string]bool, len(features))
	for _, f := range features {
		assert.NotEmpty(t, f.Name)
		assert.NotEmpty(t, f.Path)
		paths[f.Path] = true
	}
	assert.Len(t, paths, FeatureCount, "feature paths must be unique")
	assert.True(t, paths["/dashboard"])
	assert.True(t, paths["/dashboard/admin"])
}

func TestIsSystemRole(t *testing.T) {
	assert.True(t, IsSystemRole(RoleAdmin))
	assert.True(t, IsSystemRole(RoleUser))
	assert.False(t, IsSystemRole("Accountant"))
	assert.False(t, IsSystemRole("admin"))
}
