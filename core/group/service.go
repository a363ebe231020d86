package group

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("group not found")
	ErrNameExists    = errors.New("a group with this name already exists")
	ErrOtherGroup    = errors.New("user is already a member of another group")
	ErrAlreadyMember = errors.New("user is already a member of this group")
	ErrNotMember     = errors.New("user is not a member of this group")
)

type (
	Repository interface {
		CheckNameUniqueness(name string, excludedGroups ...Group) error
		CreateGroup(grp Group, exec ...core.DBExecutor) (Group, error)
		QueryAllGroups() ([]Group, error)
		GetGroupByID(id int) (Group, error)
		FilterGroupsBySupervisorID(supervisorID int) ([]Group, error)
		UpdateGroup(grp Group, exec ...core.DBExecutor) (Group, error)
		DeleteGroup(id int, exec ...core.DBExecutor) error
	}

	Service struct {
		db       core.DB
		repo     Repository
		userRepo user.Repository
	}
)

func NewService(db core.DB, repo Repository, userRepo user.Repository) *Service {
	return &Service{db: db, repo: repo, userRepo: userRepo}
}

// checkUniqueness surfaces a taken name as ErrNameExists so the API can
// report a conflict rather than a validation failure.
func (svc *Service) checkUniqueness(name string, exclGroups ...Group) error {
	return svc.repo.CheckNameUniqueness(name, exclGroups...)
}

// Create creates a new group. Only the managing committee may do so.
func (svc *Service) Create(actor user.User, ng NewGroup) (Group, error) {
	if !actor.IsManagingCommittee() {
		return Group{}, core.ErrForbidden
	}

	now := time.Now().UTC()
	grp := Group{
		Name:               ng.Name,
		ProjectTitle:       ng.ProjectTitle,
		ProjectDescription: ng.ProjectDescription,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if ng.SupervisorID != nil {
		if err := svc.checkSupervisor(*ng.SupervisorID); err != nil {
			return Group{}, err
		}
		grp.SupervisorID = ng.SupervisorID
	}
	return svc.repo.CreateGroup(grp)
}

func (svc *Service) Update(actor user.User, id int, ug UpdateGroup) (Group, error) {
	if !actor.IsManagingCommittee() {
		return Group{}, core.ErrForbidden
	}

	grp, err := svc.repo.GetGroupByID(id)
	if err != nil {
		return Group{}, err
	}

	grp.Name = ug.Name
	grp.ProjectTitle = ug.ProjectTitle
	grp.ProjectDescription = ug.ProjectDescription
	grp.UpdatedAt = time.Now().UTC()
	if ug.SupervisorID != nil {
		if err := svc.checkSupervisor(*ug.SupervisorID); err != nil {
			return Group{}, err
		}
	}
	grp.SupervisorID = ug.SupervisorID
	return svc.repo.UpdateGroup(grp)
}

// Delete removes a group, dissociating its members first so no user row is
// left pointing at a dead group.
func (svc *Service) Delete(ctx context.Context, actor user.User, id int) error {
	if !actor.IsManagingCommittee() {
		return core.ErrForbidden
	}

	if _, err := svc.repo.GetGroupByID(id); err != nil {
		return err
	}

	members, err := svc.userRepo.FilterUsersByGroupID(id)
	if err != nil {
		return err
	}

	return core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		for _, m := range members {
			if err := svc.userRepo.SetUserGroup(m.ID, nil, tx); err != nil {
				return err
			}
		}
		return svc.repo.DeleteGroup(id, tx)
	})
}

// AddMember assigns a student to a group. A student belongs to at most one
// group at a time.
func (svc *Service) AddMember(actor user.User, groupID, userID int) (Group, error) {
	if !actor.IsManagingCommittee() {
		return Group{}, core.ErrForbidden
	}

	grp, err := svc.repo.GetGroupByID(groupID)
	if err != nil {
		return Group{}, err
	}
	usr, err := svc.userRepo.GetUserByID(userID)
	if err != nil {
		return Group{}, err
	}

	if !usr.IsStudent() {
		return Group{}, core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "only students can be added to groups"})
	}
	if !usr.IsActive {
		return Group{}, core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "cannot add inactive user to group"})
	}
	if usr.GroupID != nil {
		if *usr.GroupID == groupID {
			return Group{}, ErrAlreadyMember
		}
		return Group{}, ErrOtherGroup
	}

	if err := svc.userRepo.SetUserGroup(userID, &groupID); err != nil {
		return Group{}, err
	}
	return grp, nil
}

func (svc *Service) RemoveMember(actor user.User, groupID, userID int) (Group, error) {
	if !actor.IsManagingCommittee() {
		return Group{}, core.ErrForbidden
	}

	grp, err := svc.repo.GetGroupByID(groupID)
	if err != nil {
		return Group{}, err
	}
	usr, err := svc.userRepo.GetUserByID(userID)
	if err != nil {
		return Group{}, err
	}

	if usr.GroupID == nil || *usr.GroupID != groupID {
		return Group{}, ErrNotMember
	}

	if err := svc.userRepo.SetUserGroup(userID, nil); err != nil {
		return Group{}, err
	}
	return grp, nil
}

// AssignSupervisor sets the group's supervisor. The user must hold the
// Supervisor role and be active.
func (svc *Service) AssignSupervisor(actor user.User, groupID, supervisorID int) (Group, error) {
	if !actor.IsManagingCommittee() {
		return Group{}, core.ErrForbidden
	}

	grp, err := svc.repo.GetGroupByID(groupID)
	if err != nil {
		return Group{}, err
	}
	if err := svc.checkSupervisor(supervisorID); err != nil {
		return Group{}, err
	}

	grp.SupervisorID = &supervisorID
	grp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGroup(grp)
}

func (svc *Service) checkSupervisor(supervisorID int) error {
	sup, err := svc.userRepo.GetUserByID(supervisorID)
	if err != nil {
		return err
	}
	if !sup.IsSupervisor() {
		return core.NewValidationError(nil, core.FieldError{Field: "supervisor_id", Error: "user is not a supervisor"})
	}
	if !sup.IsActive {
		return core.NewValidationError(nil, core.FieldError{Field: "supervisor_id", Error: "cannot assign inactive supervisor to group"})
	}
	return nil
}

// GetByID returns a group, enforcing the access predicate.
func (svc *Service) GetByID(actor user.User, id int) (Group, error) {
	grp, err := svc.repo.GetGroupByID(id)
	if err != nil {
		return Group{}, err
	}
	if !CanAccess(actor, grp, nil) {
		return Group{}, core.ErrForbidden
	}
	return grp, nil
}

// Members returns a group's member set, enforcing the access predicate.
func (svc *Service) Members(actor user.User, groupID int) ([]user.User, error) {
	grp, err := svc.repo.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if !CanAccess(actor, grp, nil) {
		return nil, core.ErrForbidden
	}
	return svc.userRepo.FilterUsersByGroupID(groupID)
}

// QueryAll lists the groups visible to the actor: committee roles see all,
// supervisors their supervised groups, students their own group.
func (svc *Service) QueryAll(actor user.User) ([]Group, error) {
	switch actor.Role {
	case user.RoleCommitteeMember, user.RoleManagingCommittee:
		return svc.repo.QueryAllGroups()
	case user.RoleSupervisor:
		return svc.repo.FilterGroupsBySupervisorID(actor.ID)
	case user.RoleStudent:
		if actor.GroupID == nil {
			return []Group{}, nil
		}
		grp, err := svc.repo.GetGroupByID(*actor.GroupID)
		if err != nil {
			return nil, err
		}
		return []Group{grp}, nil
	default:
		return nil, core.ErrForbidden
	}
}
