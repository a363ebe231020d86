package document

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/notification"
	"github.com/trezcool/fyptrack/core/user"
)

var ErrDeadlineNotFound = errors.New("deadline not found")

// Deadline is a submission cut-off for a document type. At most one active
// deadline per type is honored at upload time; uploads made without an
// explicit deadline are linked to it automatically.
type Deadline struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DocumentType Type      `json:"document_type"`
	DueDate      time.Time `json:"due_date"` // UTC
	IsActive     bool      `json:"is_active"`
	CreatedByID  int       `json:"created_by_id"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// Passed reports whether the deadline's due date lies before now.
func (d Deadline) Passed(now time.Time) bool {
	return now.After(d.DueDate)
}

// NewDeadline contains information needed to create a deadline.
type NewDeadline struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	DocumentType Type      `json:"document_type" validate:"required,doctype"`
	DueDate      time.Time `json:"due_date" validate:"required"`
}

func (nd *NewDeadline) Validate() error {
	nd.Title = core.CleanString(nd.Title)
	nd.Description = core.CleanString(nd.Description)
	if err := core.Validate.Struct(nd); err != nil {
		return err
	}
	if nd.DueDate.Before(time.Now()) {
		return core.NewValidationError(nil, core.FieldError{Field: "due_date", Error: "due date cannot be in the past"})
	}
	return nil
}

type DeadlineRepository interface {
	CreateDeadline(dl Deadline, exec ...core.DBExecutor) (Deadline, error)
	QueryAllDeadlines() ([]Deadline, error)
	FilterActiveDeadlines() ([]Deadline, error)
	GetDeadlineByID(id int) (Deadline, error)
	// GetActiveDeadlineByType returns the active deadline for a document
	// type, or ErrDeadlineNotFound when none is active.
	GetActiveDeadlineByType(typ Type) (Deadline, error)
	UpdateDeadline(dl Deadline, exec ...core.DBExecutor) (Deadline, error)
	DeleteDeadline(id int) error
}

// DeadlineService manages submission deadlines. All mutations are reserved
// for the managing committee.
type DeadlineService struct {
	repo     DeadlineRepository
	userRepo user.Repository
	notifSvc *notification.Service
}

func NewDeadlineService(repo DeadlineRepository, userRepo user.Repository, notifSvc *notification.Service) *DeadlineService {
	return &DeadlineService{
		repo:     repo,
		userRepo: userRepo,
		notifSvc: notifSvc,
	}
}

// Create opens a new active deadline and notifies every student.
func (svc *DeadlineService) Create(ctx context.Context, actor user.User, nd NewDeadline) (Deadline, error) {
	if !actor.IsManagingCommittee() {
		return Deadline{}, core.ErrForbidden
	}

	dl := Deadline{
		Title:        nd.Title,
		Description:  nd.Description,
		DocumentType: nd.DocumentType,
		DueDate:      nd.DueDate.UTC(),
		IsActive:     true,
		CreatedByID:  actor.ID,
	}
	dl, err := svc.repo.CreateDeadline(dl)
	if err != nil {
		return Deadline{}, errors.Wrap(err, "creating deadline")
	}

	students, err := svc.userRepo.FilterUsersByRole(user.RoleStudent)
	if err != nil {
		return dl, errors.Wrap(err, "querying students")
	}
	msg := fmt.Sprintf("New deadline %q for %s due on %s", dl.Title, dl.DocumentType, dl.DueDate.Format("Jan 2, 2006 15:04 MST"))
	svc.notifSvc.NotifyAll(ctx, students, msg, notification.TypeDeadlineCreated, "DEADLINE", dl.ID)
	return dl, nil
}

func (svc *DeadlineService) QueryAll() ([]Deadline, error) {
	return svc.repo.QueryAllDeadlines()
}

func (svc *DeadlineService) QueryActive() ([]Deadline, error) {
	return svc.repo.FilterActiveDeadlines()
}

func (svc *DeadlineService) GetByID(id int) (Deadline, error) {
	return svc.repo.GetDeadlineByID(id)
}

// Deactivate closes a deadline without deleting it; documents already
// linked to it keep their reference.
func (svc *DeadlineService) Deactivate(actor user.User, id int) (Deadline, error) {
	if !actor.IsManagingCommittee() {
		return Deadline{}, core.ErrForbidden
	}
	dl, err := svc.repo.GetDeadlineByID(id)
	if err != nil {
		return Deadline{}, err
	}
	dl.IsActive = false
	return svc.repo.UpdateDeadline(dl)
}

func (svc *DeadlineService) Delete(actor user.User, id int) error {
	if !actor.IsManagingCommittee() {
		return core.ErrForbidden
	}
	if _, err := svc.repo.GetDeadlineByID(id); err != nil {
		return err
	}
	return svc.repo.DeleteDeadline(id)
}
