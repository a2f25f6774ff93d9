package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/user"
	"github.com/trezcool/markaz/storage/database"
)

type userRow struct {
	ID       int    `db:"id"`
	Username string `db:"username"`
	Password string `db:"password"` // bcrypt hash
}

func (r userRow) toUser() user.User {
	return user.User{ID: r.ID, Username: r.Username, PasswordHash: []byte(r.Password)}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	id, err := insertReturningID(ctx, repo.db,
		`INSERT INTO users (username, password) VALUES (?, ?)`, usr.Username, string(usr.PasswordHash))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	usr.ID = id
	return usr, nil
}

func (repo userRepository) get(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var row userRow
	q := repo.db.Rebind(`SELECT id, username, password FROM users WHERE ` + where)
	if err := repo.db.GetContext(ctx, &row, q, arg); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "selecting user")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.get(ctx, "id = ?", id)
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.get(ctx, "username = ?", username)
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.db.ExecContext(ctx,
		repo.db.Rebind(`UPDATE users SET username = ?, password = ? WHERE id = ?`),
		usr.Username, string(usr.PasswordHash), usr.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if err = checkAffected(res, user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return usr, nil
}
