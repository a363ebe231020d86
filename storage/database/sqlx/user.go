package sqlxrepos

import (
	"database/sql"

	"github.com/friendsofgo/errors"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Role         string    `db:"role"`
	GroupID      null.Int  `db:"group_id"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    null.Time `db:"created_at"`
	UpdatedAt    null.Time `db:"updated_at"`
}

func (r userRow) unpack() user.User {
	usr := user.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Role:         user.Role(r.Role),
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
	if r.GroupID.Valid {
		gid := r.GroupID.Int
		usr.GroupID = &gid
	}
	return usr
}

func unpackUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.unpack())
	}
	return users
}

const userCols = `id, name, email, role, group_id, is_active, password_hash, created_at, updated_at`

func (repo userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	q := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND NOT (id = ANY($2)))`
	ids := make([]int, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, u.ID)
	}

	var exists bool
	if err := repo.db.Get(&exists, q, email, intArray(ids)); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(usr user.User, exec ...core.DBExecutor) (user.User, error) {
	q := `INSERT INTO users (name, email, role, group_id, is_active, password_hash, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := getExec(repo.db, exec).QueryRow(
		q, usr.Name, usr.Email, usr.Role, intPtr(usr.GroupID), usr.IsActive, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers() ([]user.User, error) {
	var rows []userRow
	if err := repo.db.Select(&rows, `SELECT `+userCols+` FROM users ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return unpackUsers(rows), nil
}

func (repo userRepository) GetUserByID(id int) (user.User, error) {
	var r userRow
	if err := repo.db.Get(&r, `SELECT `+userCols+` FROM users WHERE id = $1`, id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return r.unpack(), nil
}

func (repo userRepository) GetUserByEmail(email string) (user.User, error) {
	var r userRow
	if err := repo.db.Get(&r, `SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER($1)`, email); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user by email")
	}
	return r.unpack(), nil
}

func (repo userRepository) FilterUsersByRole(role user.Role) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.Select(&rows, `SELECT `+userCols+` FROM users WHERE role = $1 ORDER BY name`, role); err != nil {
		return nil, errors.Wrap(err, "filtering users by role")
	}
	return unpackUsers(rows), nil
}

func (repo userRepository) FilterUsersByGroupID(groupID int) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.Select(&rows, `SELECT `+userCols+` FROM users WHERE group_id = $1 ORDER BY name`, groupID); err != nil {
		return nil, errors.Wrap(err, "filtering users by group")
	}
	return unpackUsers(rows), nil
}

func (repo userRepository) UpdateUser(usr user.User, isActive *bool, exec ...core.DBExecutor) (user.User, error) {
	if isActive != nil {
		usr.IsActive = *isActive
	}
	q := `UPDATE users SET name = $1, email = $2, role = $3, is_active = $4, password_hash = $5, updated_at = $6
		  WHERE id = $7`
	res, err := getExec(repo.db, exec).Exec(q, usr.Name, usr.Email, usr.Role, usr.IsActive, usr.PasswordHash, usr.UpdatedAt, usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if err := checkAffected(res, user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo userRepository) SetUserGroup(id int, groupID *int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).Exec(`UPDATE users SET group_id = $1 WHERE id = $2`, intPtr(groupID), id)
	if err != nil {
		return errors.Wrap(err, "setting user group")
	}
	return checkAffected(res, user.ErrNotFound)
}

func (repo userRepository) DeleteUsersByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.Exec(`DELETE FROM users WHERE id = ANY($1)`, intArray(ids)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

// intPtr adapts *int to a nullable bind value.
func intPtr(p *int) null.Int {
	if p == nil {
		return null.Int{}
	}
	return null.IntFrom(*p)
}

func checkAffected(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "checking affected rows")
	}
	if n == 0 {
		return sentinel
	}
	return nil
}
