package lesson

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/user"
)

// DateTimeLayout is the format of the dt_str form field.
const DateTimeLayout = "2006-01-02T15:04"

type (
	// Lesson is linked to its student by email only, so it survives
	// (and stops matching) when the student changes their email.
	Lesson struct {
		ID           int       `db:"id"`
		Subject      string    `db:"subject"`
		DateTime     time.Time `db:"datetime"`
		TeacherID    int       `db:"teacher_id"`
		StudentEmail string    `db:"student_email"`
	}

	NewLesson struct {
		DateTime     string `form:"dt_str" validate:"required"`
		Subject      string `form:"subject" validate:"required,notblank"`
		StudentEmail string `form:"student_email" validate:"required,notblank"`
	}

	Repository interface {
		CreateLesson(ctx context.Context, l Lesson, exec ...core.DBExecutor) (Lesson, error)
		// QueryLessonsVisibleTo returns, ordered by datetime, the lessons taught by teacherID
		// or scheduled for studentEmail.
		QueryLessonsVisibleTo(ctx context.Context, teacherID int, studentEmail string, exec ...core.DBExecutor) ([]Lesson, error)
	}

	Service struct {
		repo     Repository
		tx       core.Transactor
		validate *validator.Validate
	}
)

func (nl *NewLesson) Validate(validate *validator.Validate) (time.Time, error) {
	nl.DateTime = core.CleanString(nl.DateTime)
	nl.Subject = core.CleanString(nl.Subject)
	nl.StudentEmail = core.CleanString(nl.StudentEmail, true /* lower */)
	if err := validate.Struct(nl); err != nil {
		return time.Time{}, err
	}

	dt, err := time.Parse(DateTimeLayout, nl.DateTime)
	if err != nil {
		return time.Time{}, core.NewValidationError(
			errors.New(core.MsgInvalidDateTime),
			core.FieldError{Field: "dt_str", Error: core.MsgInvalidDateTime},
		)
	}
	return dt, nil
}

func (l Lesson) Formatted() string {
	return l.DateTime.Format(DateTimeLayout)
}

func NewService(repo Repository, tx core.Transactor, validate *validator.Validate) *Service {
	return &Service{repo: repo, tx: tx, validate: validate}
}

// Schedule stores a lesson given by teacher.
func (svc *Service) Schedule(ctx context.Context, teacher user.User, nl NewLesson) (Lesson, error) {
	if !teacher.IsTeacher() {
		return Lesson{}, core.ErrForbidden
	}
	dt, err := nl.Validate(svc.validate)
	if err != nil {
		return Lesson{}, err
	}

	var l Lesson
	err = svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		l, err = svc.repo.CreateLesson(ctx, Lesson{
			Subject:      nl.Subject,
			DateTime:     dt,
			TeacherID:    teacher.ID,
			StudentEmail: nl.StudentEmail,
		}, exec)
		return errors.Wrap(err, "creating lesson")
	})
	return l, err
}

// QueryVisibleTo returns the lessons usr teaches or attends.
func (svc *Service) QueryVisibleTo(ctx context.Context, usr user.User) ([]Lesson, error) {
	lessons, err := svc.repo.QueryLessonsVisibleTo(ctx, usr.ID, usr.Email)
	return lessons, errors.Wrap(err, "querying lessons")
}
