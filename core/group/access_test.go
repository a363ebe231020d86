package group

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/fyptrack/core/user"
)

func intp(i int) *int { return &i }

func TestCanAccess(t *testing.T) {
	grp := Group{ID: 1, Name: "G1", SupervisorID: intp(10)}

	tests := []struct {
		name    string
		usr     user.User
		grp     Group
		members []user.User
		want    bool
	}{
		{
			name: "student in own group",
			usr:  user.User{ID: 2, Role: user.RoleStudent, GroupID: intp(1)},
			grp:  grp,
			want: true,
		},
		{
			name: "student in another group",
			usr:  user.User{ID: 2, Role: user.RoleStudent, GroupID: intp(9)},
			grp:  grp,
			want: false,
		},
		{
			name: "student without a group",
			usr:  user.User{ID: 2, Role: user.RoleStudent},
			grp:  grp,
			want: false,
		},
		{
			name:    "student listed in member set",
			usr:     user.User{ID: 2, Role: user.RoleStudent, GroupID: intp(1)},
			grp:     grp,
			members: []user.User{{ID: 2}, {ID: 3}},
			want:    true,
		},
		{
			name:    "student with stale group assignment",
			usr:     user.User{ID: 2, Role: user.RoleStudent, GroupID: intp(1)},
			grp:     grp,
			members: []user.User{{ID: 3}, {ID: 4}},
			want:    false,
		},
		{
			name: "assigned supervisor",
			usr:  user.User{ID: 10, Role: user.RoleSupervisor},
			grp:  grp,
			want: true,
		},
		{
			name: "other supervisor",
			usr:  user.User{ID: 11, Role: user.RoleSupervisor},
			grp:  grp,
			want: false,
		},
		{
			name: "supervisor of unsupervised group",
			usr:  user.User{ID: 10, Role: user.RoleSupervisor},
			grp:  Group{ID: 2, Name: "G2"},
			want: false,
		},
		{
			name: "committee member",
			usr:  user.User{ID: 20, Role: user.RoleCommitteeMember},
			grp:  grp,
			want: true,
		},
		{
			name: "managing committee",
			usr:  user.User{ID: 21, Role: user.RoleManagingCommittee},
			grp:  grp,
			want: true,
		},
		{
			name: "unknown role",
			usr:  user.User{ID: 22, Role: "DEAN", GroupID: intp(1)},
			grp:  grp,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.usr, tt.grp, tt.members))
		})
	}
}
