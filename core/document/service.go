package document

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/group"
	"github.com/trezcool/fyptrack/core/notification"
	"github.com/trezcool/fyptrack/core/user"
)

var ErrNotFound = errors.New("document not found")

type Repository interface {
	CreateDocument(doc Document, exec ...core.DBExecutor) (Document, error)
	GetDocumentByID(id int) (Document, error)
	// GetDocumentByGroupAndType returns the group's document of the given
	// type, or ErrNotFound when the group has none yet.
	GetDocumentByGroupAndType(groupID int, typ Type) (Document, error)
	FilterDocumentsByGroupID(groupID int) ([]Document, error)
	FilterDocumentsBySupervisorID(supervisorID int) ([]Document, error)
	FilterDocumentsByStatus(status Status) ([]Document, error)
	UpdateDocument(doc Document, exec ...core.DBExecutor) (Document, error)
	CreateVersionHistory(vh VersionHistory, exec ...core.DBExecutor) (VersionHistory, error)
	// FilterVersionHistoryByDocumentID returns entries newest first.
	FilterVersionHistoryByDocumentID(documentID int) ([]VersionHistory, error)
	CreateReview(rev Review, exec ...core.DBExecutor) (Review, error)
	// FilterReviewsByDocumentID returns reviews newest first.
	FilterReviewsByDocumentID(documentID int) ([]Review, error)
}

// Service drives the document lifecycle. Every mutation serializes on the
// document's (group, type) lock, runs in a single transaction, and fans out
// notifications only after the transaction commits.
type Service struct {
	db           core.DB
	repo         Repository
	groupRepo    group.Repository
	userRepo     user.Repository
	deadlineRepo DeadlineRepository
	notifSvc     *notification.Service
	blob         core.BlobStore
	locks        *keyedLocks
}

func NewService(
	db core.DB,
	repo Repository,
	groupRepo group.Repository,
	userRepo user.Repository,
	deadlineRepo DeadlineRepository,
	notifSvc *notification.Service,
	blob core.BlobStore,
) *Service {
	return &Service{
		db:           db,
		repo:         repo,
		groupRepo:    groupRepo,
		userRepo:     userRepo,
		deadlineRepo: deadlineRepo,
		notifSvc:     notifSvc,
		blob:         blob,
		locks:        newKeyedLocks(),
	}
}

// checkAccess loads a group with its members and verifies that actor may
// touch its documents.
func (svc *Service) checkAccess(actor user.User, groupID int) (group.Group, []user.User, error) {
	grp, err := svc.groupRepo.GetGroupByID(groupID)
	if err != nil {
		return group.Group{}, nil, err
	}
	members, err := svc.userRepo.FilterUsersByGroupID(grp.ID)
	if err != nil {
		return group.Group{}, nil, errors.Wrap(err, "querying group members")
	}
	if !group.CanAccess(actor, grp, members) {
		return group.Group{}, nil, core.ErrForbidden
	}
	return grp, members, nil
}

// Upload stores a new document, or a new version of an existing one, in
// Draft status. A version bump happens only on the RevisionRequested ->
// Draft path; re-uploading a Draft replaces the file in place.
func (svc *Service) Upload(ctx context.Context, actor user.User, up NewUpload) (Document, error) {
	grp, _, err := svc.checkAccess(actor, up.GroupID)
	if err != nil {
		return Document{}, err
	}

	m := svc.locks.lock(lockKey(up.GroupID, up.Type))
	defer m.Unlock()

	doc, err := svc.repo.GetDocumentByGroupAndType(up.GroupID, up.Type)
	isNew := errors.Cause(err) == ErrNotFound
	if err != nil && !isNew {
		return Document{}, err
	}

	if isNew {
		doc = Document{
			GroupID:      up.GroupID,
			Type:         up.Type,
			Version:      1,
			Status:       StatusDraft,
			UploadedByID: actor.ID,
		}
	} else {
		switch doc.Status {
		case StatusDraft:
			// replaced in place, same version
		case StatusRevisionRequested:
			doc.Version++
		default:
			return Document{}, &StatusConflictError{Status: doc.Status}
		}
	}
	doc.Title = up.Title
	doc.Status = StatusDraft
	doc.SubmittedAt = nil
	doc.IsLate = false

	if err := svc.resolveDeadline(&doc, up.DeadlineID); err != nil {
		return Document{}, err
	}

	path, err := svc.blob.Store(up.Content, up.Filename, up.GroupID, string(up.Type), doc.Version)
	if err != nil {
		return Document{}, errors.Wrap(err, "storing file")
	}
	doc.FilePath = path

	err = core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if isNew {
			doc, err = svc.repo.CreateDocument(doc, tx)
		} else {
			doc, err = svc.repo.UpdateDocument(doc, tx)
		}
		if err != nil {
			return err
		}
		_, err = svc.repo.CreateVersionHistory(VersionHistory{
			DocumentID:        doc.ID,
			VersionNumber:     doc.Version,
			FilePath:          doc.FilePath,
			ChangeDescription: up.ChangeDescription,
			UploadedByID:      actor.ID,
		}, tx)
		return err
	})
	if err != nil {
		return Document{}, errors.Wrap(err, "saving document")
	}

	svc.notifySupervisorUpload(ctx, grp, doc)
	return doc, nil
}

// resolveDeadline links doc to its deadline: the explicitly requested one,
// the one already linked, or the active deadline for the document type. A
// resolved deadline that has already passed rejects the upload.
func (svc *Service) resolveDeadline(doc *Document, requestedID *int) error {
	var dl Deadline
	var err error

	switch {
	case requestedID != nil:
		if dl, err = svc.deadlineRepo.GetDeadlineByID(*requestedID); err != nil {
			return err
		}
	case doc.DeadlineID != nil:
		if dl, err = svc.deadlineRepo.GetDeadlineByID(*doc.DeadlineID); err != nil {
			return err
		}
	default:
		dl, err = svc.deadlineRepo.GetActiveDeadlineByType(doc.Type)
		if errors.Cause(err) == ErrDeadlineNotFound {
			return nil // no deadline governs this type
		}
		if err != nil {
			return err
		}
	}

	if dl.Passed(time.Now().UTC()) {
		return &DeadlinePassedError{Deadline: dl}
	}
	doc.DeadlineID = &dl.ID
	return nil
}

func (svc *Service) notifySupervisorUpload(ctx context.Context, grp group.Group, doc Document) {
	if grp.SupervisorID == nil {
		return
	}
	sup, err := svc.userRepo.GetUserByID(*grp.SupervisorID)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("New document uploaded by %s: %q", grp.Name, doc.Title)
	typ := notification.TypeDocumentUploaded
	if doc.Version > 1 {
		msg = fmt.Sprintf("Document resubmitted by %s: %q (version %d)", grp.Name, doc.Title, doc.Version)
		typ = notification.TypeDocumentResubmitted
	}
	svc.notifSvc.Notify(ctx, sup, msg, typ, "DOCUMENT", doc.ID)
}

// Submit moves a Draft document to Submitted, stamping the submission time
// and freezing its lateness against the linked deadline.
func (svc *Service) Submit(ctx context.Context, actor user.User, documentID int) (Document, error) {
	doc, err := svc.repo.GetDocumentByID(documentID)
	if err != nil {
		return Document{}, err
	}
	grp, _, err := svc.checkAccess(actor, doc.GroupID)
	if err != nil {
		return Document{}, err
	}

	m := svc.locks.lock(lockKey(doc.GroupID, doc.Type))
	defer m.Unlock()

	// the status may have moved while we waited on the lock
	if doc, err = svc.repo.GetDocumentByID(documentID); err != nil {
		return Document{}, err
	}
	if doc.Status != StatusDraft {
		return Document{}, &InvalidTransitionError{From: doc.Status, To: StatusSubmitted}
	}

	now := time.Now().UTC()
	doc.Status = StatusSubmitted
	doc.SubmittedAt = &now
	if doc.DeadlineID != nil {
		dl, err := svc.deadlineRepo.GetDeadlineByID(*doc.DeadlineID)
		if err != nil {
			return Document{}, err
		}
		doc.IsLate = dl.Passed(now)
	}

	err = core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		doc, err = svc.repo.UpdateDocument(doc, tx)
		return err
	})
	if err != nil {
		return Document{}, errors.Wrap(err, "submitting document")
	}

	if grp.SupervisorID != nil {
		if sup, err := svc.userRepo.GetUserByID(*grp.SupervisorID); err == nil {
			msg := fmt.Sprintf("Document submitted by %s: %q", grp.Name, doc.Title)
			svc.notifSvc.Notify(ctx, sup, msg, notification.TypeGeneral, "DOCUMENT", doc.ID)
		}
	}
	return doc, nil
}

// UpdateStatus moves a document along the edges open to the generic update
// path. Supervisors may only touch documents of groups they supervise.
func (svc *Service) UpdateStatus(ctx context.Context, actor user.User, documentID int, newStatus Status) (Document, error) {
	if !actor.IsSupervisor() && !actor.IsCommitteeMember() && !actor.IsManagingCommittee() {
		return Document{}, core.ErrForbidden
	}
	if !newStatus.IsValid() {
		return Document{}, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid status"})
	}

	doc, err := svc.repo.GetDocumentByID(documentID)
	if err != nil {
		return Document{}, err
	}
	grp, _, err := svc.checkAccess(actor, doc.GroupID)
	if err != nil {
		return Document{}, err
	}

	m := svc.locks.lock(lockKey(doc.GroupID, doc.Type))
	defer m.Unlock()

	if doc, err = svc.repo.GetDocumentByID(documentID); err != nil {
		return Document{}, err
	}
	if err := validateStatusUpdate(doc.Status, newStatus); err != nil {
		return Document{}, err
	}

	doc.Status = newStatus
	err = core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		doc, err = svc.repo.UpdateDocument(doc, tx)
		return err
	})
	if err != nil {
		return Document{}, errors.Wrap(err, "updating document status")
	}

	svc.notifyStatusChange(ctx, grp, doc)
	return doc, nil
}

// Review records a review outcome and moves the document accordingly, both
// in one transaction. Supervisors review Submitted documents and may
// approve or request revisions; committee members review Approved
// documents and may only push them back to RevisionRequested.
func (svc *Service) Review(ctx context.Context, actor user.User, documentID int, nr NewReview) (Document, error) {
	if !actor.IsSupervisor() && !actor.IsCommitteeMember() {
		return Document{}, core.ErrForbidden
	}

	doc, err := svc.repo.GetDocumentByID(documentID)
	if err != nil {
		return Document{}, err
	}
	grp, _, err := svc.checkAccess(actor, doc.GroupID)
	if err != nil {
		return Document{}, err
	}

	m := svc.locks.lock(lockKey(doc.GroupID, doc.Type))
	defer m.Unlock()

	if doc, err = svc.repo.GetDocumentByID(documentID); err != nil {
		return Document{}, err
	}

	var newStatus Status
	var revStatus ReviewStatus
	switch nr.Action {
	case ActionApprove:
		newStatus, revStatus = StatusApproved, ReviewApproved
	case ActionRevision:
		newStatus, revStatus = StatusRevisionRequested, ReviewRevisionRequested
	default:
		return Document{}, core.NewValidationError(nil, core.FieldError{Field: "action", Error: "invalid review action"})
	}

	fromCommittee := actor.IsCommitteeMember()
	if fromCommittee {
		if doc.Status != StatusApproved || nr.Action == ActionApprove {
			return Document{}, &InvalidTransitionError{From: doc.Status, To: newStatus}
		}
	} else if doc.Status != StatusSubmitted {
		return Document{}, &InvalidTransitionError{From: doc.Status, To: newStatus}
	}

	doc.Status = newStatus
	err = core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if doc, err = svc.repo.UpdateDocument(doc, tx); err != nil {
			return err
		}
		_, err = svc.repo.CreateReview(Review{
			DocumentID: doc.ID,
			ReviewerID: actor.ID,
			Comments:   nr.Comments,
			Status:     revStatus,
			ReviewedAt: time.Now().UTC(),
		}, tx)
		return err
	})
	if err != nil {
		return Document{}, errors.Wrap(err, "recording review")
	}

	svc.notifyStatusChange(ctx, grp, doc)
	if fromCommittee && grp.SupervisorID != nil {
		if sup, err := svc.userRepo.GetUserByID(*grp.SupervisorID); err == nil {
			msg := fmt.Sprintf("Committee requested revisions on %q (%s)", doc.Title, grp.Name)
			svc.notifSvc.Notify(ctx, sup, msg, notification.TypeCommitteeRevisionRequested, "DOCUMENT", doc.ID)
		}
	}
	return doc, nil
}

func (svc *Service) notifyStatusChange(ctx context.Context, grp group.Group, doc Document) {
	members, err := svc.userRepo.FilterUsersByGroupID(grp.ID)
	if err != nil {
		return
	}
	typ := notification.TypeGeneral
	switch doc.Status {
	case StatusApproved:
		typ = notification.TypeDocumentApproved
	case StatusRevisionRequested:
		typ = notification.TypeRevisionRequested
	}
	msg := fmt.Sprintf("Document %q status updated to %s", doc.Title, doc.Status)
	svc.notifSvc.NotifyAll(ctx, members, msg, typ, "DOCUMENT", doc.ID)
}

// MarkGraded promotes an Approved document to Graded using the caller's
// transaction. It is the grading path's half of the lifecycle; the generic
// update path cannot reach Graded. A document no longer Approved when the
// lock is acquired is left untouched.
func (svc *Service) MarkGraded(ctx context.Context, documentID int, exec ...core.DBExecutor) (Document, bool, error) {
	doc, err := svc.repo.GetDocumentByID(documentID)
	if err != nil {
		return Document{}, false, err
	}

	m := svc.locks.lock(lockKey(doc.GroupID, doc.Type))
	defer m.Unlock()

	if doc, err = svc.repo.GetDocumentByID(documentID); err != nil {
		return Document{}, false, err
	}
	if doc.Status != StatusApproved {
		return doc, false, nil
	}
	doc.Status = StatusGraded
	if doc, err = svc.repo.UpdateDocument(doc, exec...); err != nil {
		return Document{}, false, err
	}
	return doc, true, nil
}

func (svc *Service) GetByID(actor user.User, id int) (Document, error) {
	doc, err := svc.repo.GetDocumentByID(id)
	if err != nil {
		return Document{}, err
	}
	if _, _, err = svc.checkAccess(actor, doc.GroupID); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (svc *Service) QueryByGroup(actor user.User, groupID int) ([]Document, error) {
	if _, _, err := svc.checkAccess(actor, groupID); err != nil {
		return nil, err
	}
	return svc.repo.FilterDocumentsByGroupID(groupID)
}

func (svc *Service) QueryBySupervisor(actor user.User, supervisorID int) ([]Document, error) {
	if !actor.IsCommitteeMember() && !actor.IsManagingCommittee() && actor.ID != supervisorID {
		return nil, core.ErrForbidden
	}
	return svc.repo.FilterDocumentsBySupervisorID(supervisorID)
}

func (svc *Service) QueryByStatus(actor user.User, status Status) ([]Document, error) {
	if !actor.IsCommitteeMember() && !actor.IsManagingCommittee() {
		return nil, core.ErrForbidden
	}
	if !status.IsValid() {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid status"})
	}
	return svc.repo.FilterDocumentsByStatus(status)
}

// VersionsByDocument returns the document's upload log, newest first.
func (svc *Service) VersionsByDocument(actor user.User, documentID int) ([]VersionHistory, error) {
	if _, err := svc.GetByID(actor, documentID); err != nil {
		return nil, err
	}
	return svc.repo.FilterVersionHistoryByDocumentID(documentID)
}

func (svc *Service) ReviewsByDocument(actor user.User, documentID int) ([]Review, error) {
	if _, err := svc.GetByID(actor, documentID); err != nil {
		return nil, err
	}
	return svc.repo.FilterReviewsByDocumentID(documentID)
}
