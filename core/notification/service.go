package notification

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("notification not found")
)

type (
	Repository interface {
		CreateNotification(notif Notification, exec ...core.DBExecutor) (Notification, error)
		// FilterNotificationsByUserID returns a user's notifications, newest first.
		FilterNotificationsByUserID(userID int) ([]Notification, error)
		FilterUnreadByUserID(userID int) ([]Notification, error)
		CountUnreadByUserID(userID int) (int, error)
		GetNotificationByID(id int) (Notification, error)
		MarkNotificationRead(id int) (Notification, error)
		MarkAllReadByUserID(userID int) error
		DeleteNotification(id int) error
		DeleteAllByUserID(userID int) error
	}

	// EventPublisher pushes notification events to an external stream.
	EventPublisher interface {
		Publish(ctx context.Context, event Event) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		events  EventPublisher
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, events EventPublisher, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, events: events, logger: logger}
}

// Notify records a notification for recipient and hands it to the delivery
// sinks (email, event stream). It never returns an error: a delivery failure
// must not undo the workflow transition that triggered it, so failures are
// logged and swallowed.
func (svc *Service) Notify(ctx context.Context, recipient user.User, message string, typ Type, relatedType string, relatedID int) {
	notif := Notification{
		UserID:            recipient.ID,
		Message:           message,
		Type:              typ,
		RelatedEntityType: relatedType,
		RelatedEntityID:   relatedID,
		CreatedAt:         time.Now().UTC(),
	}
	saved, err := svc.repo.CreateNotification(notif)
	if err != nil {
		svc.logger.Error("saving notification", err, recipient)
		return
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: recipient.Name, Address: recipient.Email}},
		Subject: string(typ),
		BodyStr: message,
	})

	if err := svc.events.Publish(ctx, Event{
		UserID:            saved.UserID,
		Message:           saved.Message,
		Type:              saved.Type,
		RelatedEntityType: saved.RelatedEntityType,
		RelatedEntityID:   saved.RelatedEntityID,
		CreatedAt:         saved.CreatedAt,
	}); err != nil {
		svc.logger.Error("publishing notification event", err, recipient)
	}
}

// NotifyAll fans a notification out to each recipient.
func (svc *Service) NotifyAll(ctx context.Context, recipients []user.User, message string, typ Type, relatedType string, relatedID int) {
	for _, r := range recipients {
		svc.Notify(ctx, r, message, typ, relatedType, relatedID)
	}
}

// Inbox accessors. All reads are side-effect free.

func (svc *Service) QueryByUser(actor user.User) ([]Notification, error) {
	return svc.repo.FilterNotificationsByUserID(actor.ID)
}

func (svc *Service) QueryUnread(actor user.User) ([]Notification, error) {
	return svc.repo.FilterUnreadByUserID(actor.ID)
}

func (svc *Service) UnreadCount(actor user.User) (int, error) {
	return svc.repo.CountUnreadByUserID(actor.ID)
}

func (svc *Service) MarkAsRead(actor user.User, id int) (Notification, error) {
	notif, err := svc.repo.GetNotificationByID(id)
	if err != nil {
		return Notification{}, err
	}
	if notif.UserID != actor.ID {
		return Notification{}, core.ErrForbidden
	}
	return svc.repo.MarkNotificationRead(id)
}

func (svc *Service) MarkAllAsRead(actor user.User) error {
	return svc.repo.MarkAllReadByUserID(actor.ID)
}

func (svc *Service) Delete(actor user.User, id int) error {
	notif, err := svc.repo.GetNotificationByID(id)
	if err != nil {
		return err
	}
	if notif.UserID != actor.ID {
		return core.ErrForbidden
	}
	return svc.repo.DeleteNotification(id)
}

func (svc *Service) DeleteAll(actor user.User) error {
	return svc.repo.DeleteAllByUserID(actor.ID)
}
