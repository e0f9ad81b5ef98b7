package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email && !isExcluded(*usr, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func isExcluded(usr user.User, excluded []user.User) bool {
	for _, ex := range excluded {
		if ex.ID == usr.ID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.users {
		if u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	repo.db.users[usr.ID] = &usr
	repo.db.broadcast()
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FilterUsers(_ context.Context, filter user.QueryFilter) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.IsEmpty() {
		return repo.query(), nil
	}

	matches := make([]user.User, 0)
	search := strings.ToLower(filter.Search)
	for _, usr := range repo.query() {
		if search != "" && !(strings.Contains(strings.ToLower(usr.Name), search) ||
			strings.Contains(strings.ToLower(usr.Email), search)) {
			continue
		}
		if filter.Role != "" && usr.Role != filter.Role {
			continue
		}
		if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
			continue
		}
		matches = append(matches, usr)
	}
	return matches, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	// Role and Email are immutable
	stored.Name = usr.Name
	stored.IsActive = usr.IsActive
	stored.LastLogin = usr.LastLogin
	stored.UpdatedAt = usr.UpdatedAt
	repo.db.broadcast()
	return *stored, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.users, id)
	}
	repo.db.broadcast()
	return nil
}

type credentialRepository struct {
	db *DB
}

var _ auth.CredentialRepository = (*credentialRepository)(nil)

func NewCredentialRepository(db *DB) auth.CredentialRepository {
	return &credentialRepository{db: db}
}

func (repo *credentialRepository) CreateCredential(_ context.Context, cred auth.Credential) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.credentials[cred.Email]; ok {
		return auth.ErrEmailTaken
	}
	repo.db.credentials[cred.Email] = &cred
	return nil
}

func (repo *credentialRepository) GetCredential(_ context.Context, email string) (auth.Credential, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cred, ok := repo.db.credentials[email]; ok {
		return *cred, nil
	}
	return auth.Credential{}, auth.ErrNoCredential
}

func (repo *credentialRepository) UpdateCredential(_ context.Context, cred auth.Credential) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.credentials[cred.Email]; !ok {
		return auth.ErrNoCredential
	}
	repo.db.credentials[cred.Email] = &cred
	return nil
}

func (repo *credentialRepository) DeleteCredential(_ context.Context, email string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.credentials, email)
	return nil
}
