// Package inmemdb keeps Users in memory, for tests and throwaway runs.
package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/markaz/core/user"
)

type userRepository struct {
	mutex  sync.RWMutex
	pkSeq  int
	table  map[int]user.User
	unames map[string]int
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository() *userRepository {
	return &userRepository{
		table:  make(map[int]user.User),
		unames: make(map[string]int),
	}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	if _, ok := repo.unames[usr.Username]; ok {
		return user.User{}, user.ErrUsernameExists
	}
	repo.pkSeq++
	usr.ID = repo.pkSeq
	repo.table[usr.ID] = usr
	repo.unames[usr.Username] = usr.ID
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id int) (user.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	if usr, ok := repo.table[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	if id, ok := repo.unames[username]; ok {
		return repo.table[id], nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	orig, ok := repo.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if id, taken := repo.unames[usr.Username]; taken && id != usr.ID {
		return user.User{}, user.ErrUsernameExists
	}
	delete(repo.unames, orig.Username)
	repo.table[usr.ID] = usr
	repo.unames[usr.Username] = usr.ID
	return usr, nil
}
