package inmemdb

import (
	"sort"
	"time"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/grade"
)

type gradeRepository struct {
	db *gradeTable
}

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db.grades}
}

func (repo *gradeRepository) query() []grade.Grade {
	grades := make([]grade.Grade, 0, len(repo.db.table))
	for _, g := range repo.db.table {
		grades = append(grades, *g)
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID > grades[j].ID })
	return grades
}

func (repo *gradeRepository) CreateGrade(g grade.Grade, _ ...core.DBExecutor) (grade.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pkCount++
	g.ID = repo.db.pkCount
	g.GradedAt = time.Now().UTC()
	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *gradeRepository) GetGradeByID(id int) (grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if g, ok := repo.db.table[id]; ok {
		return *g, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) FilterGradesByGroupID(groupID int) ([]grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var grades []grade.Grade
	for _, g := range repo.query() {
		if g.GroupID == groupID {
			grades = append(grades, g)
		}
	}
	return grades, nil
}

func (repo *gradeRepository) FilterFinalGradesByGroupID(groupID int) ([]grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var grades []grade.Grade
	for _, g := range repo.query() {
		if g.GroupID == groupID && g.IsFinal {
			grades = append(grades, g)
		}
	}
	return grades, nil
}

func (repo *gradeRepository) UpdateGrade(g grade.Grade, _ ...core.DBExecutor) (grade.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[g.ID]
	if !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	g.GradedAt = orig.GradedAt
	repo.db.table[g.ID] = &g
	return g, nil
}
