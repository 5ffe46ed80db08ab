package inmemdb

import (
	"github.com/hatag-tech/elearning/core/user"
)

type userRepository struct {
	db *Table[user.User]
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.users}
}

func (repo *userRepository) get(match func(user.User) bool) (user.User, error) {
	if usr, ok := repo.db.Find(match); ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) CheckEmailUniqueness(email string, excludedIDs ...string) error {
	_, err := repo.get(func(usr user.User) bool {
		return usr.Email == email && !isExcluded(usr, excludedIDs)
	})
	if err == nil {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	var err error
	repo.db.Mutate(func(rows []user.User) []user.User {
		for _, u := range rows {
			if u.Email == usr.Email || u.ID == usr.ID {
				err = user.ErrEmailExists
				return rows
			}
		}
		return append(rows, usr)
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() []user.User {
	return repo.db.All()
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	return repo.get(func(usr user.User) bool { return usr.ID == id })
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	return repo.get(func(usr user.User) bool { return usr.Email == email })
}

func (repo *userRepository) GetUserByEmailAndRole(email string, role user.Role) (user.User, error) {
	return repo.get(func(usr user.User) bool { return usr.Email == email && usr.Role == role })
}

func (repo *userRepository) UpdateUser(usr user.User) (user.User, error) {
	n := repo.db.Update(
		func(u user.User) bool { return u.ID == usr.ID },
		func(u *user.User) { *u = usr },
	)
	if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUserByID(id string) error {
	if repo.db.Delete(func(usr user.User) bool { return usr.ID == id }) == 0 {
		return user.ErrNotFound
	}
	return nil
}

func isExcluded(usr user.User, excludedIDs []string) bool {
	for _, id := range excludedIDs {
		if usr.ID == id {
			return true
		}
	}
	return false
}
