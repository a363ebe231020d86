package sqlxrepos

import (
	"github.com/friendsofgo/errors"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/group"
)

type groupRepository struct {
	db *sqlx.DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *sqlx.DB) *groupRepository {
	return &groupRepository{db: db}
}

type groupRow struct {
	ID                 int       `db:"id"`
	Name               string    `db:"name"`
	ProjectTitle       string    `db:"project_title"`
	ProjectDescription string    `db:"project_description"`
	SupervisorID       null.Int  `db:"supervisor_id"`
	CreatedAt          null.Time `db:"created_at"`
	UpdatedAt          null.Time `db:"updated_at"`
}

func (r groupRow) unpack() group.Group {
	grp := group.Group{
		ID:                 r.ID,
		Name:               r.Name,
		ProjectTitle:       r.ProjectTitle,
		ProjectDescription: r.ProjectDescription,
		CreatedAt:          r.CreatedAt.Time,
		UpdatedAt:          r.UpdatedAt.Time,
	}
	if r.SupervisorID.Valid {
		sid := r.SupervisorID.Int
		grp.SupervisorID = &sid
	}
	return grp
}

const groupCols = `id, name, project_title, project_description, supervisor_id, created_at, updated_at`

func (repo groupRepository) CheckNameUniqueness(name string, excludedGroups ...group.Group) error {
	q := `SELECT EXISTS (SELECT 1 FROM project_groups WHERE LOWER(name) = LOWER($1) AND NOT (id = ANY($2)))`
	ids := make([]int, 0, len(excludedGroups))
	for _, g := range excludedGroups {
		ids = append(ids, g.ID)
	}

	var exists bool
	if err := repo.db.Get(&exists, q, name, intArray(ids)); err != nil {
		return errors.Wrap(err, "checking group name uniqueness")
	}
	if exists {
		return group.ErrNameExists
	}
	return nil
}

func (repo groupRepository) CreateGroup(grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	q := `INSERT INTO project_groups (name, project_title, project_description, supervisor_id, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := getExec(repo.db, exec).QueryRow(
		q, grp.Name, grp.ProjectTitle, grp.ProjectDescription, intPtr(grp.SupervisorID), grp.CreatedAt, grp.UpdatedAt,
	).Scan(&grp.ID)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "inserting group")
	}
	return grp, nil
}

func (repo groupRepository) QueryAllGroups() ([]group.Group, error) {
	var rows []groupRow
	if err := repo.db.Select(&rows, `SELECT `+groupCols+` FROM project_groups ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	groups := make([]group.Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, r.unpack())
	}
	return groups, nil
}

func (repo groupRepository) GetGroupByID(id int) (group.Group, error) {
	var r groupRow
	if err := repo.db.Get(&r, `SELECT `+groupCols+` FROM project_groups WHERE id = $1`, id); err != nil {
		return group.Group{}, trapNoRowsErr(err, group.ErrNotFound, "getting group")
	}
	return r.unpack(), nil
}

func (repo groupRepository) FilterGroupsBySupervisorID(supervisorID int) ([]group.Group, error) {
	var rows []groupRow
	q := `SELECT ` + groupCols + ` FROM project_groups WHERE supervisor_id = $1 ORDER BY name`
	if err := repo.db.Select(&rows, q, supervisorID); err != nil {
		return nil, errors.Wrap(err, "filtering groups by supervisor")
	}
	groups := make([]group.Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, r.unpack())
	}
	return groups, nil
}

func (repo groupRepository) UpdateGroup(grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	q := `UPDATE project_groups SET name = $1, project_title = $2, project_description = $3, supervisor_id = $4, updated_at = $5
		  WHERE id = $6`
	res, err := getExec(repo.db, exec).Exec(
		q, grp.Name, grp.ProjectTitle, grp.ProjectDescription, intPtr(grp.SupervisorID), grp.UpdatedAt, grp.ID)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "updating group")
	}
	if err := checkAffected(res, group.ErrNotFound); err != nil {
		return group.Group{}, err
	}
	return grp, nil
}

func (repo groupRepository) DeleteGroup(id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).Exec(`DELETE FROM project_groups WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return checkAffected(res, group.ErrNotFound)
}
