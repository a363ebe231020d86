package notification

import "time"

// Type categorizes a notification for the recipient's inbox.
type Type string

const (
	// student notifications
	TypeGradeReleased     Type = "GRADE_RELEASED"
	TypeDeadlineCreated   Type = "DEADLINE_CREATED"
	TypeDocumentApproved  Type = "DOCUMENT_APPROVED"
	TypeRevisionRequested Type = "REVISION_REQUESTED"

	// supervisor notifications
	TypeDocumentUploaded           Type = "DOCUMENT_UPLOADED"
	TypeDocumentResubmitted        Type = "DOCUMENT_RESUBMITTED"
	TypeCommitteeRevisionRequested Type = "COMMITTEE_REVISION_REQUESTED"

	TypeGeneral Type = "GENERAL"
)

type Notification struct {
	ID                int       `json:"id"`
	UserID            int       `json:"user_id"`
	Message           string    `json:"message"`
	Type              Type      `json:"type"`
	IsRead            bool      `json:"is_read"`
	RelatedEntityType string    `json:"related_entity_type"`
	RelatedEntityID   int       `json:"related_entity_id"`
	CreatedAt         time.Time `json:"created_at"` // UTC
}

// Event is the shape published on the notification stream for external
// consumers (mobile push, digests).
type Event struct {
	UserID            int       `json:"user_id"`
	Message           string    `json:"message"`
	Type              Type      `json:"type"`
	RelatedEntityType string    `json:"related_entity_type"`
	RelatedEntityID   int       `json:"related_entity_id"`
	CreatedAt         time.Time `json:"created_at"`
}
