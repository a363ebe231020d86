package sqlxrepos

import (
	"github.com/friendsofgo/errors"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

type notificationRow struct {
	ID                int       `db:"id"`
	UserID            int       `db:"user_id"`
	Message           string    `db:"message"`
	Type              string    `db:"type"`
	IsRead            bool      `db:"is_read"`
	RelatedEntityType string    `db:"related_entity_type"`
	RelatedEntityID   int       `db:"related_entity_id"`
	CreatedAt         null.Time `db:"created_at"`
}

func (r notificationRow) unpack() notification.Notification {
	return notification.Notification{
		ID:                r.ID,
		UserID:            r.UserID,
		Message:           r.Message,
		Type:              notification.Type(r.Type),
		IsRead:            r.IsRead,
		RelatedEntityType: r.RelatedEntityType,
		RelatedEntityID:   r.RelatedEntityID,
		CreatedAt:         r.CreatedAt.Time,
	}
}

func unpackNotifications(rows []notificationRow) []notification.Notification {
	notifs := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		notifs = append(notifs, r.unpack())
	}
	return notifs
}

const notificationCols = `id, user_id, message, type, is_read, related_entity_type, related_entity_id, created_at`

func (repo notificationRepository) CreateNotification(notif notification.Notification, exec ...core.DBExecutor) (notification.Notification, error) {
	q := `INSERT INTO notifications (user_id, message, type, is_read, related_entity_type, related_entity_id, created_at)
		  VALUES ($1, $2, $3, $4, $5, $6, NOW() AT TIME ZONE 'utc') RETURNING id, created_at`
	err := getExec(repo.db, exec).QueryRow(
		q, notif.UserID, notif.Message, notif.Type, notif.IsRead, notif.RelatedEntityType, notif.RelatedEntityID,
	).Scan(&notif.ID, &notif.CreatedAt)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (repo notificationRepository) FilterNotificationsByUserID(userID int) ([]notification.Notification, error) {
	var rows []notificationRow
	q := `SELECT ` + notificationCols + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	if err := repo.db.Select(&rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "filtering notifications")
	}
	return unpackNotifications(rows), nil
}

func (repo notificationRepository) FilterUnreadByUserID(userID int) ([]notification.Notification, error) {
	var rows []notificationRow
	q := `SELECT ` + notificationCols + ` FROM notifications WHERE user_id = $1 AND NOT is_read ORDER BY created_at DESC`
	if err := repo.db.Select(&rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "filtering unread notifications")
	}
	return unpackNotifications(rows), nil
}

func (repo notificationRepository) CountUnreadByUserID(userID int) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`
	if err := repo.db.Get(&count, q, userID); err != nil {
		return 0, errors.Wrap(err, "counting unread notifications")
	}
	return count, nil
}

func (repo notificationRepository) GetNotificationByID(id int) (notification.Notification, error) {
	var r notificationRow
	if err := repo.db.Get(&r, `SELECT `+notificationCols+` FROM notifications WHERE id = $1`, id); err != nil {
		return notification.Notification{}, trapNoRowsErr(err, notification.ErrNotFound, "getting notification")
	}
	return r.unpack(), nil
}

func (repo notificationRepository) MarkNotificationRead(id int) (notification.Notification, error) {
	res, err := repo.db.Exec(`UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "marking notification read")
	}
	if err := checkAffected(res, notification.ErrNotFound); err != nil {
		return notification.Notification{}, err
	}
	return repo.GetNotificationByID(id)
}

func (repo notificationRepository) MarkAllReadByUserID(userID int) error {
	if _, err := repo.db.Exec(`UPDATE notifications SET is_read = TRUE WHERE user_id = $1`, userID); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return nil
}

func (repo notificationRepository) DeleteNotification(id int) error {
	res, err := repo.db.Exec(`DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return checkAffected(res, notification.ErrNotFound)
}

func (repo notificationRepository) DeleteAllByUserID(userID int) error {
	if _, err := repo.db.Exec(`DELETE FROM notifications WHERE user_id = $1`, userID); err != nil {
		return errors.Wrap(err, "deleting notifications")
	}
	return nil
}
