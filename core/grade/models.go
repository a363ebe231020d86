package grade

import (
	"time"

	"github.com/trezcool/fyptrack/core"
)

// Grade scores a group's work, optionally tied to a specific document.
// Several provisional grades may exist for a group; marking one final
// releases it to the students and, when it targets an approved document,
// closes that document's lifecycle.
type Grade struct {
	ID         int       `json:"id"`
	GroupID    int       `json:"group_id"`
	DocumentID *int      `json:"document_id"`
	Score      float64   `json:"score"`
	Feedback   string    `json:"feedback"`
	GradedByID int       `json:"graded_by_id"`
	IsFinal    bool      `json:"is_final"`
	GradedAt   time.Time `json:"graded_at"` // UTC
}

// NewGrade contains information needed to assign a grade.
type NewGrade struct {
	GroupID    int     `json:"group_id" validate:"required"`
	DocumentID *int    `json:"document_id"`
	Score      float64 `json:"score" validate:"gte=0,lte=100"`
	Feedback   string  `json:"feedback"`
	IsFinal    bool    `json:"is_final"`
}

func (ng *NewGrade) Validate() error {
	ng.Feedback = core.CleanString(ng.Feedback)
	return core.Validate.Struct(ng)
}
