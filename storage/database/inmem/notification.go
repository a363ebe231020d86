package inmemdb

import (
	"sort"
	"time"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notifications}
}

func (repo *notificationRepository) query() []notification.Notification {
	notifs := make([]notification.Notification, 0, len(repo.db.table))
	for _, n := range repo.db.table {
		notifs = append(notifs, *n)
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].ID > notifs[j].ID })
	return notifs
}

func (repo *notificationRepository) CreateNotification(notif notification.Notification, _ ...core.DBExecutor) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pkCount++
	notif.ID = repo.db.pkCount
	notif.CreatedAt = time.Now().UTC()
	repo.db.table[notif.ID] = &notif
	return notif, nil
}

func (repo *notificationRepository) FilterNotificationsByUserID(userID int) ([]notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var notifs []notification.Notification
	for _, n := range repo.query() {
		if n.UserID == userID {
			notifs = append(notifs, n)
		}
	}
	return notifs, nil
}

func (repo *notificationRepository) FilterUnreadByUserID(userID int) ([]notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var notifs []notification.Notification
	for _, n := range repo.query() {
		if n.UserID == userID && !n.IsRead {
			notifs = append(notifs, n)
		}
	}
	return notifs, nil
}

func (repo *notificationRepository) CountUnreadByUserID(userID int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, n := range repo.db.table {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (repo *notificationRepository) GetNotificationByID(id int) (notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if n, ok := repo.db.table[id]; ok {
		return *n, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) MarkNotificationRead(id int) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n, ok := repo.db.table[id]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	n.IsRead = true
	return *n, nil
}

func (repo *notificationRepository) MarkAllReadByUserID(userID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, n := range repo.db.table {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (repo *notificationRepository) DeleteNotification(id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return notification.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *notificationRepository) DeleteAllByUserID(userID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, n := range repo.db.table {
		if n.UserID == userID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
