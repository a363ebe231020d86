package group

import "github.com/trezcool/fyptrack/core/user"

// CanAccess decides whether usr may act on grp. It is evaluated before every
// group-scoped workflow operation and has no side effects.
//
// members is the group's member set when the caller already has it loaded;
// pass nil otherwise. When present it is checked in addition to the user's
// group assignment, guarding against a stale foreign key.
func CanAccess(usr user.User, grp Group, members []user.User) bool {
	switch usr.Role {
	case user.RoleStudent:
		if usr.GroupID == nil || *usr.GroupID != grp.ID {
			return false
		}
		if len(members) > 0 {
			for _, m := range members {
				if m.ID == usr.ID {
					return true
				}
			}
			return false
		}
		// member set not materialized: trust the foreign key checked above
		return true
	case user.RoleSupervisor:
		return grp.SupervisorID != nil && *grp.SupervisorID == usr.ID
	case user.RoleCommitteeMember, user.RoleManagingCommittee:
		return true
	default:
		return false
	}
}
