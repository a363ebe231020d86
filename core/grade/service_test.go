package grade_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/document"
	"github.com/trezcool/fyptrack/core/grade"
	"github.com/trezcool/fyptrack/core/group"
	"github.com/trezcool/fyptrack/core/notification"
	"github.com/trezcool/fyptrack/core/user"
	emailsvc "github.com/trezcool/fyptrack/services/email"
	eventsvc "github.com/trezcool/fyptrack/services/events"
	logsvc "github.com/trezcool/fyptrack/services/logger"
	inmemdb "github.com/trezcool/fyptrack/storage/database/inmem"
)

type blobStub struct{}

func (blobStub) Store(_ []byte, _ string, groupID int, docType string, version int) (string, error) {
	return fmt.Sprintf("mem://%d/%s/v%d", groupID, docType, version), nil
}

type testEnv struct {
	gradeSvc  *grade.Service
	docSvc    *document.Service
	userRepo  user.Repository
	groupRepo group.Repository
	docRepo   document.Repository
	notifRepo notification.Repository
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	emailsvc.ClearSentMessages()

	db := inmemdb.NewDB()
	env := &testEnv{
		userRepo:  inmemdb.NewUserRepository(db),
		groupRepo: inmemdb.NewGroupRepository(db),
		docRepo:   inmemdb.NewDocumentRepository(db),
		notifRepo: inmemdb.NewNotificationRepository(db),
	}
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	notifSvc := notification.NewService(env.notifRepo, emailsvc.NewConsoleServiceMock(), eventsvc.NewCapturePublisher(), logger)

	deadlineRepo := inmemdb.NewDeadlineRepository(db)
	env.docSvc = document.NewService(nil, env.docRepo, env.groupRepo, env.userRepo, deadlineRepo, notifSvc, blobStub{})
	env.gradeSvc = grade.NewService(nil, inmemdb.NewGradeRepository(db), env.groupRepo, env.userRepo, env.docRepo, env.docSvc, notifSvc)
	return env
}

func (env *testEnv) createUser(t *testing.T, name, email string, role user.Role, groupID *int) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr, err := env.userRepo.CreateUser(user.User{
		Name: name, Email: email, Role: role, GroupID: groupID, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return usr
}

// seed creates a supervised group with one student and a committee member,
// plus an approved document ready for grading.
func (env *testEnv) seed(t *testing.T) (committee, student user.User, grp group.Group, doc document.Document) {
	t.Helper()
	ctx := context.Background()

	sup := env.createUser(t, "Supervisor", "sup@test.cd", user.RoleSupervisor, nil)
	now := time.Now().UTC()
	grp, err := env.groupRepo.CreateGroup(group.Group{
		Name: "Team Alpha", ProjectTitle: "Project", SupervisorID: &sup.ID, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	student = env.createUser(t, "Student", "stu@test.cd", user.RoleStudent, &grp.ID)
	committee = env.createUser(t, "Committee", "com@test.cd", user.RoleCommitteeMember, nil)

	doc, err = env.docSvc.Upload(ctx, student, document.NewUpload{
		GroupID: grp.ID, Title: "Final Report", Type: document.TypeFinalReport, Content: []byte("x"),
	})
	require.NoError(t, err)
	doc, err = env.docSvc.Submit(ctx, student, doc.ID)
	require.NoError(t, err)
	doc, err = env.docSvc.Review(ctx, sup, doc.ID, document.NewReview{Action: document.ActionApprove})
	require.NoError(t, err)
	return committee, student, grp, doc
}

func TestService_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("committee assigns a provisional grade", func(t *testing.T) {
		env := setup(t)
		committee, _, grp, doc := env.seed(t)

		g, err := env.gradeSvc.Assign(ctx, committee, grade.NewGrade{
			GroupID: grp.ID, DocumentID: &doc.ID, Score: 72.5, Feedback: "solid work",
		})
		require.NoError(t, err)
		assert.Equal(t, 72.5, g.Score)
		assert.Equal(t, committee.ID, g.GradedByID)
		assert.False(t, g.IsFinal)

		// a provisional grade does not touch the document
		doc, err = env.docRepo.GetDocumentByID(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, document.StatusApproved, doc.Status)
	})

	t.Run("final grade promotes the approved document", func(t *testing.T) {
		env := setup(t)
		committee, student, grp, doc := env.seed(t)

		g, err := env.gradeSvc.Assign(ctx, committee, grade.NewGrade{
			GroupID: grp.ID, DocumentID: &doc.ID, Score: 85, IsFinal: true,
		})
		require.NoError(t, err)
		assert.True(t, g.IsFinal)

		doc, err = env.docRepo.GetDocumentByID(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, document.StatusGraded, doc.Status)

		notifs, err := env.notifRepo.FilterNotificationsByUserID(student.ID)
		require.NoError(t, err)
		require.NotEmpty(t, notifs)
		assert.Equal(t, notification.TypeGradeReleased, notifs[0].Type)
	})

	t.Run("grade row survives a skipped promotion", func(t *testing.T) {
		env := setup(t)
		committee, _, grp, doc := env.seed(t)

		// the committee pushed the document back before grading committed
		_, err := env.docSvc.Review(ctx, committee, doc.ID, document.NewReview{
			Action: document.ActionRevision, Comments: "late findings",
		})
		require.NoError(t, err)

		g, err := env.gradeSvc.Assign(ctx, committee, grade.NewGrade{
			GroupID: grp.ID, DocumentID: &doc.ID, Score: 60, IsFinal: true,
		})
		require.NoError(t, err)
		assert.True(t, g.IsFinal)

		doc, err = env.docRepo.GetDocumentByID(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, document.StatusRevisionRequested, doc.Status)
	})

	t.Run("group level grade needs no document", func(t *testing.T) {
		env := setup(t)
		committee, _, grp, _ := env.seed(t)

		g, err := env.gradeSvc.Assign(ctx, committee, grade.NewGrade{GroupID: grp.ID, Score: 90, IsFinal: true})
		require.NoError(t, err)
		assert.Nil(t, g.DocumentID)
	})

	t.Run("document from another group is rejected", func(t *testing.T) {
		env := setup(t)
		committee, _, _, doc := env.seed(t)
		now := time.Now().UTC()
		otherGrp, err := env.groupRepo.CreateGroup(group.Group{
			Name: "Team Beta", ProjectTitle: "Other", CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)

		_, err = env.gradeSvc.Assign(ctx, committee, grade.NewGrade{
			GroupID: otherGrp.ID, DocumentID: &doc.ID, Score: 50,
		})
		var verr *core.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("supervisors and students may not grade", func(t *testing.T) {
		env := setup(t)
		_, student, grp, _ := env.seed(t)
		sup := env.createUser(t, "Sup2", "sup2@test.cd", user.RoleSupervisor, nil)

		_, err := env.gradeSvc.Assign(ctx, sup, grade.NewGrade{GroupID: grp.ID, Score: 50})
		assert.Equal(t, core.ErrForbidden, err)
		_, err = env.gradeSvc.Assign(ctx, student, grade.NewGrade{GroupID: grp.ID, Score: 50})
		assert.Equal(t, core.ErrForbidden, err)
	})
}

func TestService_MarkFinal(t *testing.T) {
	ctx := context.Background()

	t.Run("managing committee finalizes a provisional grade", func(t *testing.T) {
		env := setup(t)
		committee, student, grp, doc := env.seed(t)
		mc := env.createUser(t, "Chair", "chair@test.cd", user.RoleManagingCommittee, nil)

		g, err := env.gradeSvc.Assign(ctx, committee, grade.NewGrade{
			GroupID: grp.ID, DocumentID: &doc.ID, Score: 78,
		})
		require.NoError(t, err)

		g, err = env.gradeSvc.MarkFinal(ctx, mc, g.ID)
		require.NoError(t, err)
		assert.True(t, g.IsFinal)

		doc, err = env.docRepo.GetDocumentByID(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, document.StatusGraded, doc.Status)

		notifs, err := env.notifRepo.FilterNotificationsByUserID(student.ID)
		require.NoError(t, err)
		require.NotEmpty(t, notifs)
		assert.Equal(t, notification.TypeGradeReleased, notifs[0].Type)
	})

	t.Run("committee members may not finalize", func(t *testing.T) {
		env := setup(t)
		committee, _, grp, _ := env.seed(t)

		g, err := env.gradeSvc.Assign(ctx, committee, grade.NewGrade{GroupID: grp.ID, Score: 78})
		require.NoError(t, err)

		_, err = env.gradeSvc.MarkFinal(ctx, committee, g.ID)
		assert.Equal(t, core.ErrForbidden, err)
	})
}

func TestService_visibility(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	committee, student, grp, doc := env.seed(t)
	sup := env.createUser(t, "Other Sup", "sup2@test.cd", user.RoleSupervisor, nil)

	provisional, err := env.gradeSvc.Assign(ctx, committee, grade.NewGrade{
		GroupID: grp.ID, DocumentID: &doc.ID, Score: 70,
	})
	require.NoError(t, err)
	final, err := env.gradeSvc.Assign(ctx, committee, grade.NewGrade{
		GroupID: grp.ID, Score: 82, IsFinal: true,
	})
	require.NoError(t, err)

	t.Run("committee sees everything", func(t *testing.T) {
		grades, err := env.gradeSvc.QueryByGroup(committee, grp.ID)
		require.NoError(t, err)
		assert.Len(t, grades, 2)
	})

	t.Run("students only see final grades of their group", func(t *testing.T) {
		grades, err := env.gradeSvc.QueryByGroup(student, grp.ID)
		require.NoError(t, err)
		require.Len(t, grades, 1)
		assert.Equal(t, final.ID, grades[0].ID)

		_, err = env.gradeSvc.GetByID(student, provisional.ID)
		assert.Equal(t, core.ErrForbidden, err)
		got, err := env.gradeSvc.GetByID(student, final.ID)
		require.NoError(t, err)
		assert.Equal(t, final.ID, got.ID)
	})

	t.Run("non-supervising supervisor is denied", func(t *testing.T) {
		_, err := env.gradeSvc.QueryByGroup(sup, grp.ID)
		assert.Equal(t, core.ErrForbidden, err)
		_, err = env.gradeSvc.GetByID(sup, final.ID)
		assert.Equal(t, core.ErrForbidden, err)
	})

	t.Run("student of another group is denied", func(t *testing.T) {
		now := time.Now().UTC()
		otherGrp, err := env.groupRepo.CreateGroup(group.Group{
			Name: "Team Beta", ProjectTitle: "Other", CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
		outsider := env.createUser(t, "Outsider", "out@test.cd", user.RoleStudent, &otherGrp.ID)

		_, err = env.gradeSvc.QueryByGroup(outsider, grp.ID)
		assert.Equal(t, core.ErrForbidden, err)
	})
}
