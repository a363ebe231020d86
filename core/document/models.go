package document

import (
	"time"

	"github.com/trezcool/fyptrack/core"
)

// Type is the kind of deliverable a document represents. A group owns at
// most one document per type; re-uploads version it in place.
type Type string

const (
	TypeProposal       Type = "PROPOSAL"
	TypeProgressReport Type = "PROGRESS_REPORT"
	TypeFinalReport    Type = "FINAL_REPORT"
	TypePresentation   Type = "PRESENTATION"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeProposal, TypeProgressReport, TypeFinalReport, TypePresentation:
		return true
	default:
		return false
	}
}

// Status is a document's position in the review lifecycle. Transitions are
// validated against the table in states.go; Graded is terminal.
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusSubmitted         Status = "SUBMITTED"
	StatusUnderReview       Status = "UNDER_REVIEW"
	StatusApproved          Status = "APPROVED"
	StatusRevisionRequested Status = "REVISION_REQUESTED"
	StatusGraded            Status = "GRADED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRevisionRequested, StatusGraded:
		return true
	default:
		return false
	}
}

type Document struct {
	ID           int        `json:"id"`
	GroupID      int        `json:"group_id"`
	Title        string     `json:"title"`
	Type         Type       `json:"type"`
	Version      int        `json:"version"`
	FilePath     string     `json:"file_path"`
	Status       Status     `json:"status"`
	UploadedByID int        `json:"uploaded_by_id"`
	DeadlineID   *int       `json:"deadline_id"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	IsLate       bool       `json:"is_late"`
	CreatedAt    time.Time  `json:"created_at"` // UTC
	UpdatedAt    time.Time  `json:"updated_at"` // UTC
}

// VersionHistory is an append-only log entry recorded once per successful
// upload. Entries are never mutated or deleted while the document exists.
type VersionHistory struct {
	ID                int       `json:"id"`
	DocumentID        int       `json:"document_id"`
	VersionNumber     int       `json:"version_number"`
	FilePath          string    `json:"file_path"`
	ChangeDescription string    `json:"change_description"`
	UploadedByID      int       `json:"uploaded_by_id"`
	CreatedAt         time.Time `json:"created_at"` // UTC
}

type ReviewStatus string

const (
	ReviewApproved          ReviewStatus = "APPROVED"
	ReviewRevisionRequested ReviewStatus = "REVISION_REQUESTED"
	ReviewRejected          ReviewStatus = "REJECTED"
)

// Review is an append-only record of a review action on a document.
type Review struct {
	ID         int          `json:"id"`
	DocumentID int          `json:"document_id"`
	ReviewerID int          `json:"reviewer_id"`
	Comments   string       `json:"comments"`
	Status     ReviewStatus `json:"status"`
	ReviewedAt time.Time    `json:"reviewed_at"` // UTC
}

// ReviewAction is the requested outcome of a review.
type ReviewAction string

const (
	ActionApprove  ReviewAction = "APPROVE"
	ActionRevision ReviewAction = "REVISION"
)

func (a ReviewAction) IsValid() bool {
	return a == ActionApprove || a == ActionRevision
}

// NewUpload contains information needed to upload a document (or a new
// version of one).
type NewUpload struct {
	GroupID           int    `json:"group_id" validate:"required"`
	Title             string `json:"title" validate:"required"`
	Type              Type   `json:"type" validate:"required,doctype"`
	Content           []byte `json:"-" validate:"required"`
	Filename          string `json:"filename"`
	ChangeDescription string `json:"change_description"`
	DeadlineID        *int   `json:"deadline_id"`
}

func (nu *NewUpload) Validate() error {
	nu.Title = core.CleanString(nu.Title)
	nu.ChangeDescription = core.CleanString(nu.ChangeDescription)
	return core.Validate.Struct(nu)
}

// NewReview contains information needed to review a document.
type NewReview struct {
	Action   ReviewAction `json:"action" validate:"required,reviewaction"`
	Comments string       `json:"comments"`
}

func (nr *NewReview) Validate() error {
	nr.Comments = core.CleanString(nr.Comments)
	return core.Validate.Struct(nr)
}
