package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/classpig/backend/core"
	"github.com/classpig/backend/core/user"
)

const userColumns = "id, username, password_hash, created_at"

type userRepository struct {
	db core.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db core.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...user.User) error {
	q := "SELECT COUNT(*) FROM users WHERE username = ?"
	args := []interface{}{username}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		q += " AND id NOT IN (?)"
		args = append(args, ids)
	}
	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "counting users")
	}
	if count > 0 {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO users (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING ` + userColumns
	var created user.User
	if err := repo.db.GetContext(ctx, &created, q, usr.Username, usr.PasswordHash, usr.CreatedAt); err != nil {
		if pqCode(err) == uniqueViolation {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return created, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var conds []string
	var args []interface{}
	if filter.ID != 0 {
		args = append(args, filter.ID)
		conds = append(conds, "id = ?")
	}
	if filter.Username != "" {
		args = append(args, filter.Username)
		conds = append(conds, "username = ?")
	}
	if len(conds) == 0 {
		return user.User{}, user.ErrNotFound
	}

	q := "SELECT " + userColumns + " FROM users WHERE " + strings.Join(conds, " AND ")
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, repo.db.Rebind(q), args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return usr, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE users SET username = $2, password_hash = COALESCE($3, password_hash)
		WHERE id = $1 RETURNING ` + userColumns
	var hash interface{} // NULL keeps the current hash
	if usr.PasswordHash != nil {
		hash = usr.PasswordHash
	}
	var updated user.User
	if err := repo.db.GetContext(ctx, &updated, q, usr.ID, usr.Username, hash); err != nil {
		switch {
		case err == sql.ErrNoRows:
			return user.User{}, user.ErrNotFound
		case pqCode(err) == uniqueViolation:
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return updated, nil
}

// DeleteUsersByID relies on ON DELETE CASCADE for classes and attendance.
func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM users WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
