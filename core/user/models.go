package user

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shkola/core"
)

// Role is closed: a User is either a teacher or a student.
type Role string

// Roles
const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

func (r Role) String() string { return string(r) }

type User struct {
	ID           int    `db:"id"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	Email        string `db:"email"`
	PasswordHash []byte `db:"hashed_password"`
	Role         Role   `db:"role"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// NewUser contains information needed to register a new User.
type NewUser struct {
	FirstName string `form:"first_name" validate:"required,notblank"`
	LastName  string `form:"last_name" validate:"required,notblank"`
	Email     string `form:"email" validate:"required,dotcom_email"`
	Password  string `form:"password" validate:"required,pwdpolicy"`
	Role      string `form:"role" validate:"required,oneof=teacher student"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return validate.Struct(nu)
}

// Settings is what a User may change about their own account.
// An empty Password keeps the current one.
type Settings struct {
	Name     string `form:"name" validate:"required,notblank"`
	Email    string `form:"email" validate:"required,dotcom_email"`
	Password string `form:"password" validate:"omitempty,pwdpolicy"`
}

func (s *Settings) Validate(validate *validator.Validate) error {
	s.Name = core.CleanString(s.Name)
	s.Email = core.CleanString(s.Email, true /* lower */)
	return validate.Struct(s)
}

type ResetUserPassword struct {
	Email    string `validate:"required"`
	Password string `validate:"required,pwdpolicy"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	rp.Email = core.CleanString(rp.Email, true /* lower */)
	return validate.Struct(rp)
}
