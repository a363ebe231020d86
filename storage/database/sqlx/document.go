package sqlxrepos

import (
	"github.com/friendsofgo/errors"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/document"
)

type documentRepository struct {
	db *sqlx.DB
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(db *sqlx.DB) *documentRepository {
	return &documentRepository{db: db}
}

type documentRow struct {
	ID           int       `db:"id"`
	GroupID      int       `db:"group_id"`
	Title        string    `db:"title"`
	Type         string    `db:"type"`
	Version      int       `db:"version"`
	FilePath     string    `db:"file_path"`
	Status       string    `db:"status"`
	UploadedByID int       `db:"uploaded_by_id"`
	DeadlineID   null.Int  `db:"deadline_id"`
	SubmittedAt  null.Time `db:"submitted_at"`
	IsLate       bool      `db:"is_late"`
	CreatedAt    null.Time `db:"created_at"`
	UpdatedAt    null.Time `db:"updated_at"`
}

func (r documentRow) unpack() document.Document {
	doc := document.Document{
		ID:           r.ID,
		GroupID:      r.GroupID,
		Title:        r.Title,
		Type:         document.Type(r.Type),
		Version:      r.Version,
		FilePath:     r.FilePath,
		Status:       document.Status(r.Status),
		UploadedByID: r.UploadedByID,
		IsLate:       r.IsLate,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
	if r.DeadlineID.Valid {
		did := r.DeadlineID.Int
		doc.DeadlineID = &did
	}
	if r.SubmittedAt.Valid {
		t := r.SubmittedAt.Time
		doc.SubmittedAt = &t
	}
	return doc
}

func unpackDocuments(rows []documentRow) []document.Document {
	docs := make([]document.Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, r.unpack())
	}
	return docs
}

const documentCols = `id, group_id, title, type, version, file_path, status, uploaded_by_id, deadline_id, submitted_at, is_late, created_at, updated_at`

func (repo documentRepository) CreateDocument(doc document.Document, exec ...core.DBExecutor) (document.Document, error) {
	q := `INSERT INTO documents (group_id, title, type, version, file_path, status, uploaded_by_id, deadline_id, submitted_at, is_late, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW() AT TIME ZONE 'utc', NOW() AT TIME ZONE 'utc')
		  RETURNING id, created_at, updated_at`
	err := getExec(repo.db, exec).QueryRow(
		q, doc.GroupID, doc.Title, doc.Type, doc.Version, doc.FilePath, doc.Status,
		doc.UploadedByID, intPtr(doc.DeadlineID), doc.SubmittedAt, doc.IsLate,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return document.Document{}, errors.Wrap(err, "inserting document")
	}
	return doc, nil
}

func (repo documentRepository) GetDocumentByID(id int) (document.Document, error) {
	var r documentRow
	if err := repo.db.Get(&r, `SELECT `+documentCols+` FROM documents WHERE id = $1`, id); err != nil {
		return document.Document{}, trapNoRowsErr(err, document.ErrNotFound, "getting document")
	}
	return r.unpack(), nil
}

func (repo documentRepository) GetDocumentByGroupAndType(groupID int, typ document.Type) (document.Document, error) {
	var r documentRow
	q := `SELECT ` + documentCols + ` FROM documents WHERE group_id = $1 AND type = $2`
	if err := repo.db.Get(&r, q, groupID, typ); err != nil {
		return document.Document{}, trapNoRowsErr(err, document.ErrNotFound, "getting document by group and type")
	}
	return r.unpack(), nil
}

func (repo documentRepository) FilterDocumentsByGroupID(groupID int) ([]document.Document, error) {
	var rows []documentRow
	q := `SELECT ` + documentCols + ` FROM documents WHERE group_id = $1 ORDER BY updated_at DESC`
	if err := repo.db.Select(&rows, q, groupID); err != nil {
		return nil, errors.Wrap(err, "filtering documents by group")
	}
	return unpackDocuments(rows), nil
}

func (repo documentRepository) FilterDocumentsBySupervisorID(supervisorID int) ([]document.Document, error) {
	var rows []documentRow
	q := `SELECT d.id, d.group_id, d.title, d.type, d.version, d.file_path, d.status, d.uploaded_by_id,
		         d.deadline_id, d.submitted_at, d.is_late, d.created_at, d.updated_at
		  FROM documents d JOIN project_groups g ON g.id = d.group_id
		  WHERE g.supervisor_id = $1 ORDER BY d.updated_at DESC`
	if err := repo.db.Select(&rows, q, supervisorID); err != nil {
		return nil, errors.Wrap(err, "filtering documents by supervisor")
	}
	return unpackDocuments(rows), nil
}

func (repo documentRepository) FilterDocumentsByStatus(status document.Status) ([]document.Document, error) {
	var rows []documentRow
	q := `SELECT ` + documentCols + ` FROM documents WHERE status = $1 ORDER BY updated_at DESC`
	if err := repo.db.Select(&rows, q, status); err != nil {
		return nil, errors.Wrap(err, "filtering documents by status")
	}
	return unpackDocuments(rows), nil
}

func (repo documentRepository) UpdateDocument(doc document.Document, exec ...core.DBExecutor) (document.Document, error) {
	q := `UPDATE documents
		  SET title = $1, version = $2, file_path = $3, status = $4, deadline_id = $5, submitted_at = $6, is_late = $7,
		      updated_at = NOW() AT TIME ZONE 'utc'
		  WHERE id = $8`
	res, err := getExec(repo.db, exec).Exec(
		q, doc.Title, doc.Version, doc.FilePath, doc.Status, intPtr(doc.DeadlineID), doc.SubmittedAt, doc.IsLate, doc.ID)
	if err != nil {
		return document.Document{}, errors.Wrap(err, "updating document")
	}
	if err := checkAffected(res, document.ErrNotFound); err != nil {
		return document.Document{}, err
	}
	return doc, nil
}

func (repo documentRepository) CreateVersionHistory(vh document.VersionHistory, exec ...core.DBExecutor) (document.VersionHistory, error) {
	q := `INSERT INTO document_versions (document_id, version_number, file_path, change_description, uploaded_by_id, created_at)
		  VALUES ($1, $2, $3, $4, $5, NOW() AT TIME ZONE 'utc') RETURNING id, created_at`
	err := getExec(repo.db, exec).QueryRow(
		q, vh.DocumentID, vh.VersionNumber, vh.FilePath, vh.ChangeDescription, vh.UploadedByID,
	).Scan(&vh.ID, &vh.CreatedAt)
	if err != nil {
		return document.VersionHistory{}, errors.Wrap(err, "inserting version history")
	}
	return vh, nil
}

func (repo documentRepository) FilterVersionHistoryByDocumentID(documentID int) ([]document.VersionHistory, error) {
	type row struct {
		ID                int       `db:"id"`
		DocumentID        int       `db:"document_id"`
		VersionNumber     int       `db:"version_number"`
		FilePath          string    `db:"file_path"`
		ChangeDescription string    `db:"change_description"`
		UploadedByID      int       `db:"uploaded_by_id"`
		CreatedAt         null.Time `db:"created_at"`
	}
	var rows []row
	q := `SELECT id, document_id, version_number, file_path, change_description, uploaded_by_id, created_at
		  FROM document_versions WHERE document_id = $1 ORDER BY version_number DESC`
	if err := repo.db.Select(&rows, q, documentID); err != nil {
		return nil, errors.Wrap(err, "filtering version history")
	}
	hist := make([]document.VersionHistory, 0, len(rows))
	for _, r := range rows {
		hist = append(hist, document.VersionHistory{
			ID:                r.ID,
			DocumentID:        r.DocumentID,
			VersionNumber:     r.VersionNumber,
			FilePath:          r.FilePath,
			ChangeDescription: r.ChangeDescription,
			UploadedByID:      r.UploadedByID,
			CreatedAt:         r.CreatedAt.Time,
		})
	}
	return hist, nil
}

func (repo documentRepository) CreateReview(rev document.Review, exec ...core.DBExecutor) (document.Review, error) {
	q := `INSERT INTO document_reviews (document_id, reviewer_id, comments, status, reviewed_at)
		  VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := getExec(repo.db, exec).QueryRow(
		q, rev.DocumentID, rev.ReviewerID, rev.Comments, rev.Status, rev.ReviewedAt,
	).Scan(&rev.ID)
	if err != nil {
		return document.Review{}, errors.Wrap(err, "inserting review")
	}
	return rev, nil
}

func (repo documentRepository) FilterReviewsByDocumentID(documentID int) ([]document.Review, error) {
	type row struct {
		ID         int       `db:"id"`
		DocumentID int       `db:"document_id"`
		ReviewerID int       `db:"reviewer_id"`
		Comments   string    `db:"comments"`
		Status     string    `db:"status"`
		ReviewedAt null.Time `db:"reviewed_at"`
	}
	var rows []row
	q := `SELECT id, document_id, reviewer_id, comments, status, reviewed_at
		  FROM document_reviews WHERE document_id = $1 ORDER BY reviewed_at DESC`
	if err := repo.db.Select(&rows, q, documentID); err != nil {
		return nil, errors.Wrap(err, "filtering reviews")
	}
	reviews := make([]document.Review, 0, len(rows))
	for _, r := range rows {
		reviews = append(reviews, document.Review{
			ID:         r.ID,
			DocumentID: r.DocumentID,
			ReviewerID: r.ReviewerID,
			Comments:   r.Comments,
			Status:     document.ReviewStatus(r.Status),
			ReviewedAt: r.ReviewedAt.Time,
		})
	}
	return reviews, nil
}
