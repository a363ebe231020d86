package grade

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/document"
	"github.com/trezcool/fyptrack/core/group"
	"github.com/trezcool/fyptrack/core/notification"
	"github.com/trezcool/fyptrack/core/user"
)

var ErrNotFound = errors.New("grade not found")

type Repository interface {
	CreateGrade(g Grade, exec ...core.DBExecutor) (Grade, error)
	GetGradeByID(id int) (Grade, error)
	// FilterGradesByGroupID returns grades newest first.
	FilterGradesByGroupID(groupID int) ([]Grade, error)
	FilterFinalGradesByGroupID(groupID int) ([]Grade, error)
	UpdateGrade(g Grade, exec ...core.DBExecutor) (Grade, error)
}

// Service manages the grade ledger. Grading is reserved for committee
// roles; students only ever see final grades for their own group.
type Service struct {
	db        core.DB
	repo      Repository
	groupRepo group.Repository
	userRepo  user.Repository
	docRepo   document.Repository
	docSvc    *document.Service
	notifSvc  *notification.Service
}

func NewService(
	db core.DB,
	repo Repository,
	groupRepo group.Repository,
	userRepo user.Repository,
	docRepo document.Repository,
	docSvc *document.Service,
	notifSvc *notification.Service,
) *Service {
	return &Service{
		db:        db,
		repo:      repo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		docRepo:   docRepo,
		docSvc:    docSvc,
		notifSvc:  notifSvc,
	}
}

// Assign appends a grade row for a group. A final grade aimed at an
// approved document also promotes that document to Graded, in the same
// transaction as the grade row. The row is recorded even when the
// promotion is skipped because the document moved out of Approved first.
func (svc *Service) Assign(ctx context.Context, actor user.User, ng NewGrade) (Grade, error) {
	if !actor.IsCommitteeMember() && !actor.IsManagingCommittee() {
		return Grade{}, core.ErrForbidden
	}

	grp, err := svc.groupRepo.GetGroupByID(ng.GroupID)
	if err != nil {
		return Grade{}, err
	}

	var doc document.Document
	if ng.DocumentID != nil {
		if doc, err = svc.docRepo.GetDocumentByID(*ng.DocumentID); err != nil {
			return Grade{}, err
		}
		if doc.GroupID != grp.ID {
			return Grade{}, core.NewValidationError(nil,
				core.FieldError{Field: "document_id", Error: "document does not belong to this group"})
		}
	}

	g := Grade{
		GroupID:    ng.GroupID,
		DocumentID: ng.DocumentID,
		Score:      ng.Score,
		Feedback:   ng.Feedback,
		GradedByID: actor.ID,
		IsFinal:    ng.IsFinal,
	}
	err = core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if ng.IsFinal && ng.DocumentID != nil {
			if _, _, err := svc.docSvc.MarkGraded(ctx, *ng.DocumentID, tx); err != nil {
				return err
			}
		}
		g, err = svc.repo.CreateGrade(g, tx)
		return err
	})
	if err != nil {
		return Grade{}, errors.Wrap(err, "assigning grade")
	}

	if g.IsFinal {
		svc.notifyFinal(ctx, grp, g)
	}
	return g, nil
}

// MarkFinal releases a provisional grade to the group's students.
func (svc *Service) MarkFinal(ctx context.Context, actor user.User, id int) (Grade, error) {
	if !actor.IsManagingCommittee() {
		return Grade{}, core.ErrForbidden
	}

	g, err := svc.repo.GetGradeByID(id)
	if err != nil {
		return Grade{}, err
	}
	grp, err := svc.groupRepo.GetGroupByID(g.GroupID)
	if err != nil {
		return Grade{}, err
	}

	g.IsFinal = true
	err = core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if g.DocumentID != nil {
			if _, _, err := svc.docSvc.MarkGraded(ctx, *g.DocumentID, tx); err != nil {
				return err
			}
		}
		g, err = svc.repo.UpdateGrade(g, tx)
		return err
	})
	if err != nil {
		return Grade{}, errors.Wrap(err, "finalizing grade")
	}

	svc.notifyFinal(ctx, grp, g)
	return g, nil
}

func (svc *Service) notifyFinal(ctx context.Context, grp group.Group, g Grade) {
	members, err := svc.userRepo.FilterUsersByGroupID(grp.ID)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("Final grade released for %s: %.2f", grp.Name, g.Score)
	svc.notifSvc.NotifyAll(ctx, members, msg, notification.TypeGradeReleased, "GRADE", g.ID)
}

func (svc *Service) GetByID(actor user.User, id int) (Grade, error) {
	g, err := svc.repo.GetGradeByID(id)
	if err != nil {
		return Grade{}, err
	}
	if err := svc.checkRead(actor, g.GroupID, g.IsFinal); err != nil {
		return Grade{}, err
	}
	return g, nil
}

// QueryByGroup lists a group's grades subject to the actor's visibility:
// committee roles see everything, the supervising supervisor sees all rows
// for their group, students see only final grades for their own group.
func (svc *Service) QueryByGroup(actor user.User, groupID int) ([]Grade, error) {
	grp, err := svc.groupRepo.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.IsCommitteeMember() || actor.IsManagingCommittee():
		return svc.repo.FilterGradesByGroupID(groupID)
	case actor.IsSupervisor():
		if grp.SupervisorID == nil || *grp.SupervisorID != actor.ID {
			return nil, core.ErrForbidden
		}
		return svc.repo.FilterGradesByGroupID(groupID)
	case actor.IsStudent():
		if actor.GroupID == nil || *actor.GroupID != groupID {
			return nil, core.ErrForbidden
		}
		return svc.repo.FilterFinalGradesByGroupID(groupID)
	}
	return nil, core.ErrForbidden
}

func (svc *Service) checkRead(actor user.User, groupID int, isFinal bool) error {
	switch {
	case actor.IsCommitteeMember() || actor.IsManagingCommittee():
		return nil
	case actor.IsSupervisor():
		grp, err := svc.groupRepo.GetGroupByID(groupID)
		if err != nil {
			return err
		}
		if grp.SupervisorID == nil || *grp.SupervisorID != actor.ID {
			return core.ErrForbidden
		}
		return nil
	case actor.IsStudent():
		if !isFinal || actor.GroupID == nil || *actor.GroupID != groupID {
			return core.ErrForbidden
		}
		return nil
	}
	return core.ErrForbidden
}
