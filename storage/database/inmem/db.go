// Package inmemdb provides in-memory repository implementations, used by
// tests and local development. Executors passed by services are ignored;
// each table guards itself with its own lock.
package inmemdb

import (
	"sync"

	"github.com/trezcool/fyptrack/core/document"
	"github.com/trezcool/fyptrack/core/grade"
	"github.com/trezcool/fyptrack/core/group"
	"github.com/trezcool/fyptrack/core/notification"
	"github.com/trezcool/fyptrack/core/user"
)

type DB struct {
	users         *userTable
	groups        *groupTable
	documents     *documentTable
	deadlines     *deadlineTable
	grades        *gradeTable
	notifications *notificationTable
}

func NewDB() *DB {
	return &DB{
		users:         &userTable{table: make(map[int]*user.User)},
		groups:        &groupTable{table: make(map[int]*group.Group)},
		documents:     &documentTable{table: make(map[int]*document.Document)},
		deadlines:     &deadlineTable{table: make(map[int]*document.Deadline)},
		grades:        &gradeTable{table: make(map[int]*grade.Grade)},
		notifications: &notificationTable{table: make(map[int]*notification.Notification)},
	}
}

type userTable struct {
	mutex   sync.RWMutex
	pkCount int
	table   map[int]*user.User
}

type groupTable struct {
	mutex   sync.RWMutex
	pkCount int
	table   map[int]*group.Group
}

type documentTable struct {
	mutex    sync.RWMutex
	pkCount  int
	vhCount  int
	revCount int
	table    map[int]*document.Document
	versions []document.VersionHistory
	reviews  []document.Review
}

type deadlineTable struct {
	mutex   sync.RWMutex
	pkCount int
	table   map[int]*document.Deadline
}

type gradeTable struct {
	mutex   sync.RWMutex
	pkCount int
	table   map[int]*grade.Grade
}

type notificationTable struct {
	mutex   sync.RWMutex
	pkCount int
	table   map[int]*notification.Notification
}
