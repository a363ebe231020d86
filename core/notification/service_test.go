package notification_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/notification"
	"github.com/trezcool/fyptrack/core/user"
	emailsvc "github.com/trezcool/fyptrack/services/email"
	eventsvc "github.com/trezcool/fyptrack/services/events"
	logsvc "github.com/trezcool/fyptrack/services/logger"
	inmemdb "github.com/trezcool/fyptrack/storage/database/inmem"
)

// failingRepo always fails on create, to exercise the swallow path.
type failingRepo struct {
	notification.Repository
}

func (failingRepo) CreateNotification(notification.Notification, ...core.DBExecutor) (notification.Notification, error) {
	return notification.Notification{}, assert.AnError
}

// failingPublisher always fails on publish.
type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, notification.Event) error { return assert.AnError }

func setup(t *testing.T) (*notification.Service, notification.Repository, *eventsvc.CapturePublisher) {
	t.Helper()
	emailsvc.ClearSentMessages()

	repo := inmemdb.NewNotificationRepository(inmemdb.NewDB())
	events := eventsvc.NewCapturePublisher()
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	svc := notification.NewService(repo, emailsvc.NewConsoleServiceMock(), events, logger)
	return svc, repo, events
}

func testUser(id int, email string) user.User {
	return user.User{ID: id, Name: "U" + email, Email: email, Role: user.RoleStudent, IsActive: true}
}

func TestService_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("records, mails and publishes", func(t *testing.T) {
		svc, repo, events := setup(t)
		usr := testUser(1, "one@test.cd")

		svc.Notify(ctx, usr, "Document approved", notification.TypeDocumentApproved, "DOCUMENT", 7)

		notifs, err := repo.FilterNotificationsByUserID(usr.ID)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Equal(t, "Document approved", notifs[0].Message)
		assert.Equal(t, notification.TypeDocumentApproved, notifs[0].Type)
		assert.Equal(t, "DOCUMENT", notifs[0].RelatedEntityType)
		assert.Equal(t, 7, notifs[0].RelatedEntityID)
		assert.False(t, notifs[0].IsRead)

		require.Len(t, emailsvc.SentMessages, 1)
		assert.Equal(t, "one@test.cd", emailsvc.SentMessages[0].To[0].Address)

		published := events.Published()
		require.Len(t, published, 1)
		assert.Equal(t, usr.ID, published[0].UserID)
	})

	t.Run("a failed save is swallowed", func(t *testing.T) {
		emailsvc.ClearSentMessages()
		events := eventsvc.NewCapturePublisher()
		logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
		svc := notification.NewService(failingRepo{}, emailsvc.NewConsoleServiceMock(), events, logger)

		// must not panic nor propagate; no delivery happens either
		svc.Notify(ctx, testUser(1, "one@test.cd"), "msg", notification.TypeGeneral, "DOCUMENT", 1)
		assert.Empty(t, emailsvc.SentMessages)
		assert.Empty(t, events.Published())
	})

	t.Run("a failed publish is swallowed", func(t *testing.T) {
		emailsvc.ClearSentMessages()
		repo := inmemdb.NewNotificationRepository(inmemdb.NewDB())
		logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
		svc := notification.NewService(repo, emailsvc.NewConsoleServiceMock(), failingPublisher{}, logger)
		usr := testUser(1, "one@test.cd")

		svc.Notify(ctx, usr, "msg", notification.TypeGeneral, "DOCUMENT", 1)

		// the notification row and the email still went through
		notifs, err := repo.FilterNotificationsByUserID(usr.ID)
		require.NoError(t, err)
		assert.Len(t, notifs, 1)
		assert.Len(t, emailsvc.SentMessages, 1)
	})
}

func TestService_NotifyAll(t *testing.T) {
	svc, repo, events := setup(t)
	recipients := []user.User{testUser(1, "one@test.cd"), testUser(2, "two@test.cd"), testUser(3, "three@test.cd")}

	svc.NotifyAll(context.Background(), recipients, "New deadline", notification.TypeDeadlineCreated, "DEADLINE", 4)

	for _, r := range recipients {
		notifs, err := repo.FilterNotificationsByUserID(r.ID)
		require.NoError(t, err)
		assert.Len(t, notifs, 1)
	}
	assert.Len(t, events.Published(), 3)
	assert.Len(t, emailsvc.SentMessages, 3)
}

func TestService_inbox(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)
	usr := testUser(1, "one@test.cd")
	other := testUser(2, "two@test.cd")

	svc.Notify(ctx, usr, "first", notification.TypeGeneral, "DOCUMENT", 1)
	svc.Notify(ctx, usr, "second", notification.TypeGeneral, "DOCUMENT", 2)
	svc.Notify(ctx, other, "theirs", notification.TypeGeneral, "DOCUMENT", 3)

	t.Run("query is scoped to the actor, newest first", func(t *testing.T) {
		notifs, err := svc.QueryByUser(usr)
		require.NoError(t, err)
		require.Len(t, notifs, 2)
		assert.Equal(t, "second", notifs[0].Message)
		assert.Equal(t, "first", notifs[1].Message)
	})

	t.Run("unread tracking", func(t *testing.T) {
		count, err := svc.UnreadCount(usr)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		notifs, err := svc.QueryUnread(usr)
		require.NoError(t, err)
		require.Len(t, notifs, 2)

		read, err := svc.MarkAsRead(usr, notifs[0].ID)
		require.NoError(t, err)
		assert.True(t, read.IsRead)

		count, err = svc.UnreadCount(usr)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.NoError(t, svc.MarkAllAsRead(usr))
		count, err = svc.UnreadCount(usr)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("cannot touch another user's notification", func(t *testing.T) {
		theirs, err := svc.QueryByUser(other)
		require.NoError(t, err)
		require.Len(t, theirs, 1)

		_, err = svc.MarkAsRead(usr, theirs[0].ID)
		assert.Equal(t, core.ErrForbidden, err)
		err = svc.Delete(usr, theirs[0].ID)
		assert.Equal(t, core.ErrForbidden, err)
	})

	t.Run("delete", func(t *testing.T) {
		notifs, err := svc.QueryByUser(usr)
		require.NoError(t, err)
		require.Len(t, notifs, 2)

		require.NoError(t, svc.Delete(usr, notifs[0].ID))
		notifs, err = svc.QueryByUser(usr)
		require.NoError(t, err)
		assert.Len(t, notifs, 1)

		require.NoError(t, svc.DeleteAll(usr))
		notifs, err = svc.QueryByUser(usr)
		require.NoError(t, err)
		assert.Empty(t, notifs)

		// the other user's inbox is untouched
		theirs, err := svc.QueryByUser(other)
		require.NoError(t, err)
		assert.Len(t, theirs, 1)
	})
}
