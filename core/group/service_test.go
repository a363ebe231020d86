package group_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/group"
	"github.com/trezcool/fyptrack/core/user"
	inmemdb "github.com/trezcool/fyptrack/storage/database/inmem"
)

func setup(t *testing.T) (*group.Service, user.Repository) {
	t.Helper()
	db := inmemdb.NewDB()
	userRepo := inmemdb.NewUserRepository(db)
	return group.NewService(nil, inmemdb.NewGroupRepository(db), userRepo), userRepo
}

func createUser(t *testing.T, repo user.Repository, name string, role user.Role, groupID *int, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr, err := repo.CreateUser(user.User{
		Name: name, Email: name + "@test.cd", Role: role, GroupID: groupID, IsActive: isActive,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return usr
}

var chair = user.User{ID: 1000, Name: "Chair", Role: user.RoleManagingCommittee, IsActive: true}

func TestService_Create(t *testing.T) {
	svc, userRepo := setup(t)
	sup := createUser(t, userRepo, "sup", user.RoleSupervisor, nil, true)

	t.Run("managing committee creates a group", func(t *testing.T) {
		grp, err := svc.Create(chair, group.NewGroup{
			Name: "Team Alpha", ProjectTitle: "Smart Irrigation", SupervisorID: &sup.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Team Alpha", grp.Name)
		require.NotNil(t, grp.SupervisorID)
		assert.Equal(t, sup.ID, *grp.SupervisorID)
	})

	t.Run("other roles are denied", func(t *testing.T) {
		for _, role := range []user.Role{user.RoleStudent, user.RoleSupervisor, user.RoleCommitteeMember} {
			actor := user.User{ID: 99, Role: role}
			_, err := svc.Create(actor, group.NewGroup{Name: "X", ProjectTitle: "Y"})
			assert.Equal(t, core.ErrForbidden, err, role)
		}
	})

	t.Run("supervisor must hold the role", func(t *testing.T) {
		student := createUser(t, userRepo, "notasup", user.RoleStudent, nil, true)
		_, err := svc.Create(chair, group.NewGroup{Name: "Z", ProjectTitle: "Y", SupervisorID: &student.ID})
		var verr *core.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("taken names conflict", func(t *testing.T) {
		ng := group.NewGroup{Name: "Team Alpha", ProjectTitle: "Other"}
		assert.Equal(t, group.ErrNameExists, ng.Validate(svc))

		ng.Name = "team alpha" // case-insensitive
		assert.Equal(t, group.ErrNameExists, ng.Validate(svc))
	})
}

func TestService_membership(t *testing.T) {
	svc, userRepo := setup(t)
	grp, err := svc.Create(chair, group.NewGroup{Name: "Team Alpha", ProjectTitle: "P"})
	require.NoError(t, err)
	other, err := svc.Create(chair, group.NewGroup{Name: "Team Beta", ProjectTitle: "Q"})
	require.NoError(t, err)

	student := createUser(t, userRepo, "stu", user.RoleStudent, nil, true)

	t.Run("adds a student", func(t *testing.T) {
		_, err := svc.AddMember(chair, grp.ID, student.ID)
		require.NoError(t, err)

		refreshed, err := userRepo.GetUserByID(student.ID)
		require.NoError(t, err)
		require.NotNil(t, refreshed.GroupID)
		assert.Equal(t, grp.ID, *refreshed.GroupID)
	})

	t.Run("a student joins at most one group", func(t *testing.T) {
		_, err := svc.AddMember(chair, grp.ID, student.ID)
		assert.Equal(t, group.ErrAlreadyMember, err)
		_, err = svc.AddMember(chair, other.ID, student.ID)
		assert.Equal(t, group.ErrOtherGroup, err)
	})

	t.Run("only students can be members", func(t *testing.T) {
		sup := createUser(t, userRepo, "sup", user.RoleSupervisor, nil, true)
		_, err := svc.AddMember(chair, grp.ID, sup.ID)
		var verr *core.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("inactive students are rejected", func(t *testing.T) {
		inactive := createUser(t, userRepo, "inactive", user.RoleStudent, nil, false)
		_, err := svc.AddMember(chair, grp.ID, inactive.ID)
		var verr *core.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("removal clears the membership", func(t *testing.T) {
		_, err := svc.RemoveMember(chair, grp.ID, student.ID)
		require.NoError(t, err)

		refreshed, err := userRepo.GetUserByID(student.ID)
		require.NoError(t, err)
		assert.Nil(t, refreshed.GroupID)

		_, err = svc.RemoveMember(chair, grp.ID, student.ID)
		assert.Equal(t, group.ErrNotMember, err)
	})

	t.Run("only the managing committee manages membership", func(t *testing.T) {
		committee := user.User{ID: 98, Role: user.RoleCommitteeMember}
		_, err := svc.AddMember(committee, grp.ID, student.ID)
		assert.Equal(t, core.ErrForbidden, err)
		_, err = svc.RemoveMember(committee, grp.ID, student.ID)
		assert.Equal(t, core.ErrForbidden, err)
	})
}

func TestService_AssignSupervisor(t *testing.T) {
	svc, userRepo := setup(t)
	grp, err := svc.Create(chair, group.NewGroup{Name: "Team Alpha", ProjectTitle: "P"})
	require.NoError(t, err)
	sup := createUser(t, userRepo, "sup", user.RoleSupervisor, nil, true)

	t.Run("assigns an active supervisor", func(t *testing.T) {
		grp, err := svc.AssignSupervisor(chair, grp.ID, sup.ID)
		require.NoError(t, err)
		require.NotNil(t, grp.SupervisorID)
		assert.Equal(t, sup.ID, *grp.SupervisorID)
	})

	t.Run("rejects non-supervisors and inactive supervisors", func(t *testing.T) {
		student := createUser(t, userRepo, "stu", user.RoleStudent, nil, true)
		inactive := createUser(t, userRepo, "oldsup", user.RoleSupervisor, nil, false)

		var verr *core.ValidationError
		_, err := svc.AssignSupervisor(chair, grp.ID, student.ID)
		assert.ErrorAs(t, err, &verr)
		_, err = svc.AssignSupervisor(chair, grp.ID, inactive.ID)
		assert.ErrorAs(t, err, &verr)
	})
}

func TestService_Delete(t *testing.T) {
	svc, userRepo := setup(t)
	grp, err := svc.Create(chair, group.NewGroup{Name: "Team Alpha", ProjectTitle: "P"})
	require.NoError(t, err)
	student := createUser(t, userRepo, "stu", user.RoleStudent, nil, true)
	_, err = svc.AddMember(chair, grp.ID, student.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), chair, grp.ID))

	_, err = svc.GetByID(chair, grp.ID)
	assert.Equal(t, group.ErrNotFound, err)

	// the member no longer points at the dead group
	refreshed, err := userRepo.GetUserByID(student.ID)
	require.NoError(t, err)
	assert.Nil(t, refreshed.GroupID)
}

func TestService_QueryAll(t *testing.T) {
	svc, userRepo := setup(t)
	sup := createUser(t, userRepo, "sup", user.RoleSupervisor, nil, true)
	grpA, err := svc.Create(chair, group.NewGroup{Name: "Team Alpha", ProjectTitle: "P", SupervisorID: &sup.ID})
	require.NoError(t, err)
	_, err = svc.Create(chair, group.NewGroup{Name: "Team Beta", ProjectTitle: "Q"})
	require.NoError(t, err)
	student := createUser(t, userRepo, "stu", user.RoleStudent, &grpA.ID, true)

	t.Run("committee sees all groups", func(t *testing.T) {
		groups, err := svc.QueryAll(chair)
		require.NoError(t, err)
		assert.Len(t, groups, 2)
	})

	t.Run("supervisor sees supervised groups", func(t *testing.T) {
		groups, err := svc.QueryAll(sup)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, grpA.ID, groups[0].ID)
	})

	t.Run("student sees their own group", func(t *testing.T) {
		groups, err := svc.QueryAll(student)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, grpA.ID, groups[0].ID)
	})

	t.Run("groupless student sees nothing", func(t *testing.T) {
		loner := createUser(t, userRepo, "loner", user.RoleStudent, nil, true)
		groups, err := svc.QueryAll(loner)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})
}
