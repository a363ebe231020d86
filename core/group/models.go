package group

import (
	"time"

	"github.com/trezcool/fyptrack/core"
)

// Group is a student project team. Membership is held on the user rows
// (users.group_id) and queried on demand; the group row never carries a
// member collection.
type Group struct {
	ID                 int       `json:"id"`
	Name               string    `json:"name"`
	ProjectTitle       string    `json:"project_title"`
	ProjectDescription string    `json:"project_description"`
	SupervisorID       *int      `json:"supervisor_id"`
	CreatedAt          time.Time `json:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at"` // UTC
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name               string `json:"name" validate:"required"`
	ProjectTitle       string `json:"project_title" validate:"required"`
	ProjectDescription string `json:"project_description"`
	SupervisorID       *int   `json:"supervisor_id"`
}

func (ng *NewGroup) Validate(svc *Service) error {
	ng.Name = core.CleanString(ng.Name)
	ng.ProjectTitle = core.CleanString(ng.ProjectTitle)
	ng.ProjectDescription = core.CleanString(ng.ProjectDescription)

	if err := core.Validate.Struct(ng); err != nil {
		return err
	}
	return svc.checkUniqueness(ng.Name)
}

// UpdateGroup defines what information may be provided to modify an existing Group.
type UpdateGroup struct {
	Name               string `json:"name" validate:"required"`
	ProjectTitle       string `json:"project_title" validate:"required"`
	ProjectDescription string `json:"project_description"`
	SupervisorID       *int   `json:"supervisor_id"`
}

func (ug *UpdateGroup) Validate(origGrp Group, svc *Service) error {
	ug.Name = core.CleanString(ug.Name)
	ug.ProjectTitle = core.CleanString(ug.ProjectTitle)
	ug.ProjectDescription = core.CleanString(ug.ProjectDescription)

	if err := core.Validate.Struct(ug); err != nil {
		return err
	}
	return svc.checkUniqueness(ug.Name, origGrp)
}
