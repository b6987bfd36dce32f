package grade

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/user"
)

var ErrStudentNotFound = errors.New("student not found")

type (
	Grade struct {
		ID        int    `db:"id"`
		Subject   string `db:"subject"`
		Grade     string `db:"grade"` // free text
		TeacherID int    `db:"teacher_id"`
		StudentID int    `db:"student_id"`

		// filled by queries
		TeacherName string `db:"teacher_name"`
		StudentName string `db:"student_name"`
	}

	NewGrade struct {
		Subject      string `form:"subject" validate:"required,notblank"`
		Grade        string `form:"grade" validate:"required,notblank"`
		StudentEmail string `form:"student_email" validate:"required,notblank"`
	}

	Repository interface {
		CreateGrade(ctx context.Context, g Grade, exec ...core.DBExecutor) (Grade, error)
		QueryGradesForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]Grade, error)
		QueryGradesByTeacher(ctx context.Context, teacherID int, exec ...core.DBExecutor) ([]Grade, error)
	}

	// UserFinder is the part of user.Repository grades need.
	UserFinder interface {
		GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (user.User, error)
	}

	Service struct {
		repo     Repository
		users    UserFinder
		tx       core.Transactor
		validate *validator.Validate
	}
)

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Subject = core.CleanString(ng.Subject)
	ng.Grade = core.CleanString(ng.Grade)
	ng.StudentEmail = core.CleanString(ng.StudentEmail, true /* lower */)
	return validate.Struct(ng)
}

func NewService(repo Repository, users UserFinder, tx core.Transactor, validate *validator.Validate) *Service {
	return &Service{repo: repo, users: users, tx: tx, validate: validate}
}

// findStudent returns the student owning email, or ErrStudentNotFound.
func findStudent(ctx context.Context, users UserFinder, exec core.DBExecutor, email string) (user.User, error) {
	usr, err := users.GetUserByEmail(ctx, email, exec)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, ErrStudentNotFound
		}
		return user.User{}, errors.Wrap(err, "finding student by email")
	}
	if !usr.IsStudent() {
		return user.User{}, ErrStudentNotFound
	}
	return usr, nil
}

// Record stores a grade given by teacher to the student owning ng.StudentEmail.
func (svc *Service) Record(ctx context.Context, teacher user.User, ng NewGrade) (Grade, error) {
	if !teacher.IsTeacher() {
		return Grade{}, core.ErrForbidden
	}
	if err := ng.Validate(svc.validate); err != nil {
		return Grade{}, err
	}

	var g Grade
	err := svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		student, err := findStudent(ctx, svc.users, exec, ng.StudentEmail)
		if err != nil {
			return err
		}
		g, err = svc.repo.CreateGrade(ctx, Grade{
			Subject:   ng.Subject,
			Grade:     ng.Grade,
			TeacherID: teacher.ID,
			StudentID: student.ID,
		}, exec)
		return errors.Wrap(err, "creating grade")
	})
	return g, err
}

// QueryForStudent returns the grades of student, and only theirs.
func (svc *Service) QueryForStudent(ctx context.Context, student user.User) ([]Grade, error) {
	grades, err := svc.repo.QueryGradesForStudent(ctx, student.ID)
	return grades, errors.Wrap(err, "querying student grades")
}

// QueryByTeacher returns the grades recorded by teacher.
func (svc *Service) QueryByTeacher(ctx context.Context, teacher user.User) ([]Grade, error) {
	grades, err := svc.repo.QueryGradesByTeacher(ctx, teacher.ID)
	return grades, errors.Wrap(err, "querying teacher grades")
}
