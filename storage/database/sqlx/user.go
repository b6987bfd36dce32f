package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/user"
)

var userColumns = []string{"id", "first_name", "last_name", "email", "hashed_password", "role"}

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repository{exec: exec}}
}

func (repo userRepository) getBy(ctx context.Context, exec []core.DBExecutor, where sq.Eq) (user.User, error) {
	var usr user.User
	err := repo.get(ctx, exec, &usr, psql.Select(userColumns...).From("users").Where(where).Limit(1))
	if err != nil {
		if isNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return usr, nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	b := psql.Insert("users").
		Columns("first_name", "last_name", "email", "hashed_password", "role").
		Values(usr.FirstName, usr.LastName, usr.Email, usr.PasswordHash, usr.Role).
		Suffix("RETURNING id")
	if err := repo.get(ctx, exec, &usr.ID, b); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (user.User, error) {
	return repo.getBy(ctx, exec, sq.Eq{"id": id})
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (user.User, error) {
	return repo.getBy(ctx, exec, sq.Eq{"email": email})
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	b := psql.Update("users").
		SetMap(map[string]interface{}{
			"first_name":      usr.FirstName,
			"last_name":       usr.LastName,
			"email":           usr.Email,
			"hashed_password": usr.PasswordHash,
		}).
		Where(sq.Eq{"id": usr.ID})
	if err := repo.update(ctx, exec, b, user.ErrNotFound); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, err
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return repo.GetUserByID(ctx, usr.ID, exec...)
}
