package document_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/document"
	"github.com/trezcool/fyptrack/core/notification"
	"github.com/trezcool/fyptrack/core/user"
)

func TestDeadlineService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and notifies every student", func(t *testing.T) {
		env := setup(t)
		chair := env.createUser(t, "Chair", "chair@test.cd", user.RoleManagingCommittee, nil)
		stu1 := env.createUser(t, "Stu1", "stu1@test.cd", user.RoleStudent, nil)
		stu2 := env.createUser(t, "Stu2", "stu2@test.cd", user.RoleStudent, nil)
		sup := env.createUser(t, "Sup", "sup@test.cd", user.RoleSupervisor, nil)

		due := time.Now().UTC().Add(7 * 24 * time.Hour)
		dl, err := env.deadlineSvc.Create(ctx, chair, document.NewDeadline{
			Title: "Proposal cut-off", DocumentType: document.TypeProposal, DueDate: due,
		})
		require.NoError(t, err)
		assert.True(t, dl.IsActive)
		assert.Equal(t, chair.ID, dl.CreatedByID)

		for _, stu := range []user.User{stu1, stu2} {
			notifs := env.notificationsFor(t, stu)
			require.Len(t, notifs, 1)
			assert.Equal(t, notification.TypeDeadlineCreated, notifs[0].Type)
			assert.Equal(t, "DEADLINE", notifs[0].RelatedEntityType)
			assert.Equal(t, dl.ID, notifs[0].RelatedEntityID)
		}
		assert.Empty(t, env.notificationsFor(t, sup))
	})

	t.Run("only the managing committee creates deadlines", func(t *testing.T) {
		env := setup(t)
		committee := env.createUser(t, "Committee", "com@test.cd", user.RoleCommitteeMember, nil)

		_, err := env.deadlineSvc.Create(ctx, committee, document.NewDeadline{
			Title: "x", DocumentType: document.TypeProposal, DueDate: time.Now().Add(time.Hour),
		})
		assert.Equal(t, core.ErrForbidden, err)
	})
}

func TestNewDeadline_Validate(t *testing.T) {
	nd := document.NewDeadline{
		Title: "Cut-off", DocumentType: document.TypeProposal, DueDate: time.Now().Add(-time.Hour),
	}
	var verr *core.ValidationError
	assert.ErrorAs(t, nd.Validate(), &verr)

	nd.DueDate = time.Now().Add(time.Hour)
	assert.NoError(t, nd.Validate())
}

func TestDeadlineService_Deactivate(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	chair := env.createUser(t, "Chair", "chair@test.cd", user.RoleManagingCommittee, nil)

	dl, err := env.deadlineSvc.Create(ctx, chair, document.NewDeadline{
		Title: "Cut-off", DocumentType: document.TypeProposal, DueDate: time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	dl, err = env.deadlineSvc.Deactivate(chair, dl.ID)
	require.NoError(t, err)
	assert.False(t, dl.IsActive)

	// no longer picked up at upload time
	_, student, grp := env.seed(t)
	doc, err := env.docSvc.Upload(ctx, student, document.NewUpload{
		GroupID: grp.ID, Title: "Proposal", Type: document.TypeProposal, Content: []byte("x"),
	})
	require.NoError(t, err)
	assert.Nil(t, doc.DeadlineID)

	t.Run("only the managing committee", func(t *testing.T) {
		_, err := env.deadlineSvc.Deactivate(student, dl.ID)
		assert.Equal(t, core.ErrForbidden, err)
	})
}

func TestDeadlineService_Delete(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	chair := env.createUser(t, "Chair", "chair@test.cd", user.RoleManagingCommittee, nil)

	dl, err := env.deadlineSvc.Create(ctx, chair, document.NewDeadline{
		Title: "Cut-off", DocumentType: document.TypeProposal, DueDate: time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, env.deadlineSvc.Delete(chair, dl.ID))
	_, err = env.deadlineSvc.GetByID(dl.ID)
	assert.Equal(t, document.ErrDeadlineNotFound, err)

	assert.Equal(t, document.ErrDeadlineNotFound, env.deadlineSvc.Delete(chair, dl.ID))
}
