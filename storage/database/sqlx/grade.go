package sqlxrepos

import (
	"github.com/friendsofgo/errors"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/grade"
)

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

type gradeRow struct {
	ID         int       `db:"id"`
	GroupID    int       `db:"group_id"`
	DocumentID null.Int  `db:"document_id"`
	Score      float64   `db:"score"`
	Feedback   string    `db:"feedback"`
	GradedByID int       `db:"graded_by_id"`
	IsFinal    bool      `db:"is_final"`
	GradedAt   null.Time `db:"graded_at"`
}

func (r gradeRow) unpack() grade.Grade {
	g := grade.Grade{
		ID:         r.ID,
		GroupID:    r.GroupID,
		Score:      r.Score,
		Feedback:   r.Feedback,
		GradedByID: r.GradedByID,
		IsFinal:    r.IsFinal,
		GradedAt:   r.GradedAt.Time,
	}
	if r.DocumentID.Valid {
		did := r.DocumentID.Int
		g.DocumentID = &did
	}
	return g
}

func unpackGrades(rows []gradeRow) []grade.Grade {
	grades := make([]grade.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, r.unpack())
	}
	return grades
}

const gradeCols = `id, group_id, document_id, score, feedback, graded_by_id, is_final, graded_at`

func (repo gradeRepository) CreateGrade(g grade.Grade, exec ...core.DBExecutor) (grade.Grade, error) {
	q := `INSERT INTO grades (group_id, document_id, score, feedback, graded_by_id, is_final, graded_at)
		  VALUES ($1, $2, $3, $4, $5, $6, NOW() AT TIME ZONE 'utc') RETURNING id, graded_at`
	err := getExec(repo.db, exec).QueryRow(
		q, g.GroupID, intPtr(g.DocumentID), g.Score, g.Feedback, g.GradedByID, g.IsFinal,
	).Scan(&g.ID, &g.GradedAt)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo gradeRepository) GetGradeByID(id int) (grade.Grade, error) {
	var r gradeRow
	if err := repo.db.Get(&r, `SELECT `+gradeCols+` FROM grades WHERE id = $1`, id); err != nil {
		return grade.Grade{}, trapNoRowsErr(err, grade.ErrNotFound, "getting grade")
	}
	return r.unpack(), nil
}

func (repo gradeRepository) FilterGradesByGroupID(groupID int) ([]grade.Grade, error) {
	var rows []gradeRow
	q := `SELECT ` + gradeCols + ` FROM grades WHERE group_id = $1 ORDER BY graded_at DESC`
	if err := repo.db.Select(&rows, q, groupID); err != nil {
		return nil, errors.Wrap(err, "filtering grades by group")
	}
	return unpackGrades(rows), nil
}

func (repo gradeRepository) FilterFinalGradesByGroupID(groupID int) ([]grade.Grade, error) {
	var rows []gradeRow
	q := `SELECT ` + gradeCols + ` FROM grades WHERE group_id = $1 AND is_final ORDER BY graded_at DESC`
	if err := repo.db.Select(&rows, q, groupID); err != nil {
		return nil, errors.Wrap(err, "filtering final grades by group")
	}
	return unpackGrades(rows), nil
}

func (repo gradeRepository) UpdateGrade(g grade.Grade, exec ...core.DBExecutor) (grade.Grade, error) {
	q := `UPDATE grades SET score = $1, feedback = $2, is_final = $3 WHERE id = $4`
	res, err := getExec(repo.db, exec).Exec(q, g.Score, g.Feedback, g.IsFinal, g.ID)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "updating grade")
	}
	if err := checkAffected(res, grade.ErrNotFound); err != nil {
		return grade.Grade{}, err
	}
	return g, nil
}
