package inmemdb

import (
	"sort"
	"strings"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/group"
)

type groupRepository struct {
	db *groupTable
}

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db.groups}
}

func (repo *groupRepository) query() []group.Group {
	groups := make([]group.Group, 0, len(repo.db.table))
	for _, g := range repo.db.table {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

func (repo *groupRepository) CheckNameUniqueness(name string, excludedGroups ...group.Group) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, grp := range repo.query() {
		if !strings.EqualFold(grp.Name, name) {
			continue
		}
		excluded := false
		for _, ex := range excludedGroups {
			if ex.ID == grp.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return group.ErrNameExists
		}
	}
	return nil
}

func (repo *groupRepository) CreateGroup(grp group.Group, _ ...core.DBExecutor) (group.Group, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pkCount++
	grp.ID = repo.db.pkCount
	repo.db.table[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) QueryAllGroups() ([]group.Group, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *groupRepository) GetGroupByID(id int) (group.Group, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if grp, ok := repo.db.table[id]; ok {
		return *grp, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) FilterGroupsBySupervisorID(supervisorID int) ([]group.Group, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var groups []group.Group
	for _, grp := range repo.query() {
		if grp.SupervisorID != nil && *grp.SupervisorID == supervisorID {
			groups = append(groups, grp)
		}
	}
	return groups, nil
}

func (repo *groupRepository) UpdateGroup(grp group.Group, _ ...core.DBExecutor) (group.Group, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[grp.ID]; !ok {
		return group.Group{}, group.ErrNotFound
	}
	repo.db.table[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) DeleteGroup(id int, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return group.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
