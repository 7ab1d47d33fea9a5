package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRoleIsValid(t *testing.T) {
	assert.True(t, RoleMember.IsValid())
	assert.True(t, RoleOrganizer.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, UserRole("superuser").IsValid())
	assert.False(t, UserRole("").IsValid())
}

func TestUserPasswordNeverSerialized(t *testing.T) {
	out, err := json.Marshal(User{ID: "u1", Email: "a@b.c", Password: "hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hash")
}
