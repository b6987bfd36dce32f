package user

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (User, error)
		GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (User, error)
		// UpdateUser saves the names, email and password hash of usr. The role is never updated.
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
	}

	Service struct {
		repo     Repository
		tx       core.Transactor
		validate *validator.Validate
	}
)

func NewService(repo Repository, tx core.Transactor, validate *validator.Validate) *Service {
	return &Service{repo: repo, tx: tx, validate: validate}
}

func emailExistsError() error {
	return core.NewValidationError(
		errors.New(core.MsgEmailExists),
		core.FieldError{Field: "email", Error: core.MsgEmailExists},
	)
}

// checkEmailAvailable fails with a validation error when email belongs to a User other than excludedID.
func (svc *Service) checkEmailAvailable(ctx context.Context, exec core.DBExecutor, email string, excludedID int) error {
	usr, err := svc.repo.GetUserByEmail(ctx, email, exec)
	switch {
	case err == nil:
		if usr.ID != excludedID {
			return emailExistsError()
		}
		return nil
	case errors.Cause(err) == ErrNotFound:
		return nil
	default:
		return errors.Wrap(err, "finding user by email")
	}
}

// Register validates nu and stores a new User with a hashed password.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, err
	}

	usr := User{
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Email:     nu.Email,
		Role:      Role(nu.Role),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	err := svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.checkEmailAvailable(ctx, exec, usr.Email, 0); err != nil {
			return err
		}
		var err error
		usr, err = svc.repo.CreateUser(ctx, usr, exec)
		return err
	})
	if errors.Cause(err) == ErrEmailExists {
		return User{}, emailExistsError()
	}
	return usr, err
}

// Authenticate returns the User owning email when password verifies.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if !usr.CheckPassword(password) {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

// UpdateSettings overwrites the first name and email of User id, and its password when s.Password is not empty.
func (svc *Service) UpdateSettings(ctx context.Context, id int, s Settings) (User, error) {
	if err := s.Validate(svc.validate); err != nil {
		return User{}, err
	}

	var usr User
	err := svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		var err error
		if usr, err = svc.repo.GetUserByID(ctx, id, exec); err != nil {
			return errors.Wrap(err, "finding user by ID")
		}
		if err = svc.checkEmailAvailable(ctx, exec, s.Email, usr.ID); err != nil {
			return err
		}

		usr.FirstName = s.Name
		usr.Email = s.Email
		if s.Password != "" {
			if err = usr.SetPassword(s.Password); err != nil {
				return err
			}
		}
		usr, err = svc.repo.UpdateUser(ctx, usr, exec)
		return err
	})
	if errors.Cause(err) == ErrEmailExists {
		return User{}, emailExistsError()
	}
	return usr, err
}

// ResetPassword sets a new password on the User owning rp.Email.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword) (User, error) {
	if err := rp.Validate(svc.validate); err != nil {
		return User{}, err
	}

	var usr User
	err := svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		var err error
		if usr, err = svc.repo.GetUserByEmail(ctx, rp.Email, exec); err != nil {
			return errors.Wrap(err, "finding user by email")
		}
		if err = usr.SetPassword(rp.Password); err != nil {
			return err
		}
		usr, err = svc.repo.UpdateUser(ctx, usr, exec)
		return err
	})
	return usr, err
}

// AddOrUpdate registers nu, or refreshes the names and password of the User already owning nu.Email.
// An existing User keeps their role. The bool result reports whether a User was created.
func (svc *Service) AddOrUpdate(ctx context.Context, nu NewUser) (User, bool, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, false, err
	}

	var (
		usr     User
		created bool
	)
	err := svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		var err error
		usr, err = svc.repo.GetUserByEmail(ctx, nu.Email, exec)
		switch {
		case err == nil:
			usr.FirstName = nu.FirstName
			usr.LastName = nu.LastName
		case errors.Cause(err) == ErrNotFound:
			usr = User{FirstName: nu.FirstName, LastName: nu.LastName, Email: nu.Email, Role: Role(nu.Role)}
			created = true
		default:
			return errors.Wrap(err, "finding user by email")
		}

		if err = usr.SetPassword(nu.Password); err != nil {
			return err
		}
		if created {
			usr, err = svc.repo.CreateUser(ctx, usr, exec)
		} else {
			usr, err = svc.repo.UpdateUser(ctx, usr, exec)
		}
		return err
	})
	return usr, created, err
}
