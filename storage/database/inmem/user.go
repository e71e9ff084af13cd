package inmemdb

import (
	"context"

	"github.com/classpig/backend/core/schedule"
	"github.com/classpig/backend/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Username == username && !isExcluded(usr.ID, excludedUsers) {
			return user.ErrUsernameExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.users {
		if u.Username == usr.Username {
			return user.User{}, user.ErrUsernameExists
		}
	}
	repo.db.userSeq++
	usr.ID = repo.db.userSeq
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != 0 {
		if usr, ok := repo.db.users[filter.ID]; ok && (filter.Username == "" || usr.Username == filter.Username) {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.Username != "" {
		for _, usr := range repo.db.users {
			if usr.Username == filter.Username {
				return *usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origUsr, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	for _, u := range repo.db.users {
		if u.ID != usr.ID && u.Username == usr.Username {
			return user.User{}, user.ErrUsernameExists
		}
	}
	origUsr.Username = usr.Username
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	return *origUsr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	deleted := make(map[int]bool, len(ids))
	for _, id := range ids {
		delete(repo.db.users, id)
		deleted[id] = true
	}
	repo.db.deleteClasses(func(cls *schedule.Class) bool { return deleted[cls.UserID] })
	for id, att := range repo.db.attendance {
		if deleted[att.UserID] {
			delete(repo.db.attendance, id)
		}
	}
	return nil
}

func isExcluded(id int, excludedUsers []user.User) bool {
	for _, u := range excludedUsers {
		if u.ID == id {
			return true
		}
	}
	return false
}
