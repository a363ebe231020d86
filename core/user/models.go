package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/fyptrack/core"
)

// Role is the closed set of actor roles. Every role-based decision in the
// engine switches over it exhaustively; an unknown role is always denied.
type Role string

const (
	RoleStudent           Role = "STUDENT"
	RoleSupervisor        Role = "SUPERVISOR"
	RoleCommitteeMember   Role = "COMMITTEE_MEMBER"
	RoleManagingCommittee Role = "FYP_COMMITTEE"
)

var Roles = []RoleInfo{
	{Name: "Student", Value: RoleStudent},
	{Name: "Supervisor", Value: RoleSupervisor},
	{Name: "Committee Member", Value: RoleCommitteeMember},
	{Name: "FYP Committee", Value: RoleManagingCommittee},
}

type RoleInfo struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleSupervisor, RoleCommitteeMember, RoleManagingCommittee:
		return true
	default:
		return false
	}
}

// IsCommittee reports whether the role has committee-level (administrative) scope.
func (r Role) IsCommittee() bool {
	return r == RoleCommitteeMember || r == RoleManagingCommittee
}

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	GroupID      *int      `json:"group_id"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsStudent() bool           { return u.Role == RoleStudent }
func (u *User) IsSupervisor() bool        { return u.Role == RoleSupervisor }
func (u *User) IsCommitteeMember() bool   { return u.Role == RoleCommitteeMember }
func (u *User) IsManagingCommittee() bool { return u.Role == RoleManagingCommittee }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            Role   `json:"role" validate:"required,role"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            Role   `json:"role" validate:"omitempty,role"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User, svc *Service) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.checkUniqueness(uu.Email, origUsr)
}
