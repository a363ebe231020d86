package sqlxrepos

import (
	"github.com/friendsofgo/errors"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/document"
)

type deadlineRepository struct {
	db *sqlx.DB
}

var _ document.DeadlineRepository = (*deadlineRepository)(nil) // interface compliance check

func NewDeadlineRepository(db *sqlx.DB) *deadlineRepository {
	return &deadlineRepository{db: db}
}

type deadlineRow struct {
	ID           int       `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	DocumentType string    `db:"document_type"`
	DueDate      null.Time `db:"due_date"`
	IsActive     bool      `db:"is_active"`
	CreatedByID  null.Int  `db:"created_by_id"`
	CreatedAt    null.Time `db:"created_at"`
}

func (r deadlineRow) unpack() document.Deadline {
	return document.Deadline{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		DocumentType: document.Type(r.DocumentType),
		DueDate:      r.DueDate.Time,
		IsActive:     r.IsActive,
		CreatedByID:  r.CreatedByID.Int,
		CreatedAt:    r.CreatedAt.Time,
	}
}

func unpackDeadlines(rows []deadlineRow) []document.Deadline {
	dls := make([]document.Deadline, 0, len(rows))
	for _, r := range rows {
		dls = append(dls, r.unpack())
	}
	return dls
}

const deadlineCols = `id, title, description, document_type, due_date, is_active, created_by_id, created_at`

func (repo deadlineRepository) CreateDeadline(dl document.Deadline, exec ...core.DBExecutor) (document.Deadline, error) {
	q := `INSERT INTO deadlines (title, description, document_type, due_date, is_active, created_by_id, created_at)
		  VALUES ($1, $2, $3, $4, $5, $6, NOW() AT TIME ZONE 'utc') RETURNING id, created_at`
	err := getExec(repo.db, exec).QueryRow(
		q, dl.Title, dl.Description, dl.DocumentType, dl.DueDate, dl.IsActive, dl.CreatedByID,
	).Scan(&dl.ID, &dl.CreatedAt)
	if err != nil {
		return document.Deadline{}, errors.Wrap(err, "inserting deadline")
	}
	return dl, nil
}

func (repo deadlineRepository) QueryAllDeadlines() ([]document.Deadline, error) {
	var rows []deadlineRow
	if err := repo.db.Select(&rows, `SELECT `+deadlineCols+` FROM deadlines ORDER BY due_date`); err != nil {
		return nil, errors.Wrap(err, "querying deadlines")
	}
	return unpackDeadlines(rows), nil
}

func (repo deadlineRepository) FilterActiveDeadlines() ([]document.Deadline, error) {
	var rows []deadlineRow
	q := `SELECT ` + deadlineCols + ` FROM deadlines WHERE is_active ORDER BY due_date`
	if err := repo.db.Select(&rows, q); err != nil {
		return nil, errors.Wrap(err, "filtering active deadlines")
	}
	return unpackDeadlines(rows), nil
}

func (repo deadlineRepository) GetDeadlineByID(id int) (document.Deadline, error) {
	var r deadlineRow
	if err := repo.db.Get(&r, `SELECT `+deadlineCols+` FROM deadlines WHERE id = $1`, id); err != nil {
		return document.Deadline{}, trapNoRowsErr(err, document.ErrDeadlineNotFound, "getting deadline")
	}
	return r.unpack(), nil
}

func (repo deadlineRepository) GetActiveDeadlineByType(typ document.Type) (document.Deadline, error) {
	var r deadlineRow
	q := `SELECT ` + deadlineCols + ` FROM deadlines WHERE is_active AND document_type = $1 ORDER BY due_date LIMIT 1`
	if err := repo.db.Get(&r, q, typ); err != nil {
		return document.Deadline{}, trapNoRowsErr(err, document.ErrDeadlineNotFound, "getting active deadline")
	}
	return r.unpack(), nil
}

func (repo deadlineRepository) UpdateDeadline(dl document.Deadline, exec ...core.DBExecutor) (document.Deadline, error) {
	q := `UPDATE deadlines SET title = $1, description = $2, document_type = $3, due_date = $4, is_active = $5 WHERE id = $6`
	res, err := getExec(repo.db, exec).Exec(q, dl.Title, dl.Description, dl.DocumentType, dl.DueDate, dl.IsActive, dl.ID)
	if err != nil {
		return document.Deadline{}, errors.Wrap(err, "updating deadline")
	}
	if err := checkAffected(res, document.ErrDeadlineNotFound); err != nil {
		return document.Deadline{}, err
	}
	return dl, nil
}

func (repo deadlineRepository) DeleteDeadline(id int) error {
	res, err := repo.db.Exec(`DELETE FROM deadlines WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting deadline")
	}
	return checkAffected(res, document.ErrDeadlineNotFound)
}
