package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_SetPassword(t *testing.T) {
	var usr User
	require.NoError(t, usr.SetPassword("s3cret"))
	assert.NotEmpty(t, usr.PasswordHash)

	assert.NoError(t, usr.CheckPassword("s3cret"))
	assert.Error(t, usr.CheckPassword("wrong"))
}

func TestRole_IsValid(t *testing.T) {
	for _, r := range []Role{RoleStudent, RoleSupervisor, RoleCommitteeMember, RoleManagingCommittee} {
		assert.True(t, r.IsValid(), r)
	}
	assert.False(t, Role("DEAN").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestRole_IsCommittee(t *testing.T) {
	assert.True(t, RoleCommitteeMember.IsCommittee())
	assert.True(t, RoleManagingCommittee.IsCommittee())
	assert.False(t, RoleStudent.IsCommittee())
	assert.False(t, RoleSupervisor.IsCommittee())
}
