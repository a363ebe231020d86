package document

import "fmt"

// transitions is the full lifecycle graph. Each edge is reachable through
// exactly one path: Draft -> Submitted through submission, Submitted ->
// Approved/RevisionRequested through a supervisor review, Approved ->
// RevisionRequested through a committee review, Approved -> Graded through
// final grading, RevisionRequested -> Draft through a re-upload. The
// remaining edges belong to the generic status update.
var transitions = map[Status][]Status{
	StatusDraft:             {StatusSubmitted},
	StatusSubmitted:         {StatusUnderReview, StatusApproved, StatusRevisionRequested},
	StatusUnderReview:       {StatusApproved, StatusRevisionRequested},
	StatusApproved:          {StatusRevisionRequested, StatusGraded},
	StatusRevisionRequested: {StatusDraft},
	StatusGraded:            nil, // terminal
}

// CanTransition reports whether the edge from -> to exists in the lifecycle
// graph, regardless of which path is allowed to take it.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// validateStatusUpdate guards the generic status update. Edges reserved for
// the submission, review, upload and grading paths are rejected even though
// they exist in the graph.
func validateStatusUpdate(from, to Status) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	switch {
	case to == StatusGraded, // grading path only
		to == StatusDraft,     // re-upload path only
		to == StatusSubmitted, // submission path only
		from == StatusSubmitted && to != StatusUnderReview, // supervisor review path only
		from == StatusApproved: // committee review / grading paths only
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// InvalidTransitionError is returned when a requested status change is not
// permitted from the document's current status.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// StatusConflictError is returned when an upload targets a document whose
// status does not accept new versions.
type StatusConflictError struct {
	Status Status
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("cannot upload a new version while the document is %s", e.Status)
}

// DeadlinePassedError is returned when an upload resolves to a deadline
// whose due date is already in the past.
type DeadlinePassedError struct {
	Deadline Deadline
}

func (e *DeadlinePassedError) Error() string {
	return fmt.Sprintf("the deadline %q has passed", e.Deadline.Title)
}
