package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusDraft, StatusUnderReview, false},
		{StatusDraft, StatusApproved, false},
		{StatusSubmitted, StatusUnderReview, true},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusRevisionRequested, true},
		{StatusSubmitted, StatusDraft, false},
		{StatusUnderReview, StatusApproved, true},
		{StatusUnderReview, StatusRevisionRequested, true},
		{StatusUnderReview, StatusSubmitted, false},
		{StatusApproved, StatusRevisionRequested, true},
		{StatusApproved, StatusGraded, true},
		{StatusApproved, StatusDraft, false},
		{StatusRevisionRequested, StatusDraft, true},
		{StatusRevisionRequested, StatusSubmitted, false},
		{StatusGraded, StatusDraft, false},
		{StatusGraded, StatusApproved, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func Test_validateStatusUpdate(t *testing.T) {
	// the only edges the generic status update may take
	assert.NoError(t, validateStatusUpdate(StatusSubmitted, StatusUnderReview))
	assert.NoError(t, validateStatusUpdate(StatusUnderReview, StatusApproved))
	assert.NoError(t, validateStatusUpdate(StatusUnderReview, StatusRevisionRequested))

	reserved := []struct{ from, to Status }{
		{StatusDraft, StatusSubmitted},             // submission path
		{StatusSubmitted, StatusApproved},          // supervisor review path
		{StatusSubmitted, StatusRevisionRequested}, // supervisor review path
		{StatusApproved, StatusRevisionRequested},  // committee review path
		{StatusApproved, StatusGraded},             // grading path
		{StatusRevisionRequested, StatusDraft},     // re-upload path
	}
	for _, tt := range reserved {
		t.Run("reserved "+string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			var terr *InvalidTransitionError
			err := validateStatusUpdate(tt.from, tt.to)
			if assert.ErrorAs(t, err, &terr) {
				assert.Equal(t, tt.from, terr.From)
				assert.Equal(t, tt.to, terr.To)
			}
		})
	}

	t.Run("edge not in graph", func(t *testing.T) {
		var terr *InvalidTransitionError
		assert.ErrorAs(t, validateStatusUpdate(StatusGraded, StatusDraft), &terr)
	})
}
