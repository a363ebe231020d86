package inmemdb

import (
	"sort"
	"time"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/document"
)

type deadlineRepository struct {
	db *deadlineTable
}

func NewDeadlineRepository(db *DB) document.DeadlineRepository {
	return &deadlineRepository{db: db.deadlines}
}

func (repo *deadlineRepository) query() []document.Deadline {
	dls := make([]document.Deadline, 0, len(repo.db.table))
	for _, dl := range repo.db.table {
		dls = append(dls, *dl)
	}
	sort.Slice(dls, func(i, j int) bool { return dls[i].DueDate.Before(dls[j].DueDate) })
	return dls
}

func (repo *deadlineRepository) CreateDeadline(dl document.Deadline, _ ...core.DBExecutor) (document.Deadline, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pkCount++
	dl.ID = repo.db.pkCount
	dl.CreatedAt = time.Now().UTC()
	repo.db.table[dl.ID] = &dl
	return dl, nil
}

func (repo *deadlineRepository) QueryAllDeadlines() ([]document.Deadline, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *deadlineRepository) FilterActiveDeadlines() ([]document.Deadline, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var dls []document.Deadline
	for _, dl := range repo.query() {
		if dl.IsActive {
			dls = append(dls, dl)
		}
	}
	return dls, nil
}

func (repo *deadlineRepository) GetDeadlineByID(id int) (document.Deadline, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if dl, ok := repo.db.table[id]; ok {
		return *dl, nil
	}
	return document.Deadline{}, document.ErrDeadlineNotFound
}

func (repo *deadlineRepository) GetActiveDeadlineByType(typ document.Type) (document.Deadline, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, dl := range repo.query() {
		if dl.IsActive && dl.DocumentType == typ {
			return dl, nil
		}
	}
	return document.Deadline{}, document.ErrDeadlineNotFound
}

func (repo *deadlineRepository) UpdateDeadline(dl document.Deadline, _ ...core.DBExecutor) (document.Deadline, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[dl.ID]; !ok {
		return document.Deadline{}, document.ErrDeadlineNotFound
	}
	repo.db.table[dl.ID] = &dl
	return dl, nil
}

func (repo *deadlineRepository) DeleteDeadline(id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return document.ErrDeadlineNotFound
	}
	delete(repo.db.table, id)
	return nil
}
