package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"user", "admin", "superadmin"} {
		got, ok := ParseRole(s)
		assert.True(t, ok, "role=%q", s)
		assert.Equal(t, Role(s), got)
	}

	//ロールは小文字のみ
	for _, s := range []string{"", "Admin", "ADMIN", "root", "super_admin"} {
		_, ok := ParseRole(s)
		assert.False(t, ok, "role=%q", s)
	}
}

func TestRole_OneOf(t *testing.T) {
	assert.True(t, RoleAdmin.OneOf(RoleAdmin, RoleSuperadmin))
	assert.True(t, RoleSuperadmin.OneOf(RoleAdmin, RoleSuperadmin))
	assert.False(t, RoleUser.OneOf(RoleAdmin, RoleSuperadmin))
	assert.False(t, RoleUser.OneOf())
}
