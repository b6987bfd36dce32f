package homework

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/user"
)

// DateLayout is the format of the due_date form field.
const DateLayout = "2006-01-02"

var (
	// errors
	ErrNotFound        = errors.New("homework not found")
	ErrStudentNotFound = errors.New("student not found")
)

type (
	Homework struct {
		ID             int         `db:"id"`
		Title          string      `db:"title"`
		Description    string      `db:"description"`
		DueDate        time.Time   `db:"due_date"`
		TeacherID      int         `db:"teacher_id"`
		StudentID      int         `db:"student_id"`
		SubmissionFile null.String `db:"submission_file"` // name in the upload store

		// filled by queries
		TeacherName string `db:"teacher_name"`
		StudentName string `db:"student_name"`
	}

	NewHomework struct {
		Title        string `form:"title" validate:"required,notblank"`
		Description  string `form:"description"`
		DueDate      string `form:"due_date" validate:"required"`
		StudentEmail string `form:"student_email" validate:"required,notblank"`
	}

	// Submission is a file uploaded by a student for one of their homeworks.
	Submission struct {
		HomeworkID int `form:"homework_id" validate:"required"`
		Filename   string
		Content    io.Reader
	}

	Repository interface {
		CreateHomework(ctx context.Context, hw Homework, exec ...core.DBExecutor) (Homework, error)
		GetHomeworkByID(ctx context.Context, id int, exec ...core.DBExecutor) (Homework, error)
		// GetHomeworkForUpdate is GetHomeworkByID holding a row lock until the transaction of exec ends.
		GetHomeworkForUpdate(ctx context.Context, id int, exec ...core.DBExecutor) (Homework, error)
		QueryHomeworkForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]Homework, error)
		QueryHomeworkByTeacher(ctx context.Context, teacherID int, exec ...core.DBExecutor) ([]Homework, error)
		SetSubmissionFile(ctx context.Context, id int, filename string, exec ...core.DBExecutor) error
	}

	// UserFinder is the part of user.Repository homework needs.
	UserFinder interface {
		GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (user.User, error)
	}

	// FileStore keeps uploaded submissions.
	FileStore interface {
		Save(name string, r io.Reader) error
		Remove(name string) error
	}

	Service struct {
		repo     Repository
		users    UserFinder
		tx       core.Transactor
		files    FileStore
		mailSvc  core.EmailService
		validate *validator.Validate
	}
)

func (nh *NewHomework) Validate(validate *validator.Validate) (time.Time, error) {
	nh.Title = core.CleanString(nh.Title)
	nh.Description = core.CleanString(nh.Description)
	nh.DueDate = core.CleanString(nh.DueDate)
	nh.StudentEmail = core.CleanString(nh.StudentEmail, true /* lower */)
	if err := validate.Struct(nh); err != nil {
		return time.Time{}, err
	}

	due, err := time.Parse(DateLayout, nh.DueDate)
	if err != nil {
		return time.Time{}, core.NewValidationError(
			errors.New(core.MsgInvalidDate),
			core.FieldError{Field: "due_date", Error: core.MsgInvalidDate},
		)
	}
	return due, nil
}

func (sub *Submission) Validate(validate *validator.Validate) error {
	if err := validate.Struct(sub); err != nil {
		return err
	}
	if sub.Content == nil {
		return core.NewValidationError(
			errors.New(core.MsgMissingFile),
			core.FieldError{Field: "file", Error: core.MsgMissingFile},
		)
	}
	return nil
}

func (hw Homework) Due() string {
	return hw.DueDate.Format(DateLayout)
}

func (hw Homework) Submitted() bool {
	return hw.SubmissionFile.Valid && hw.SubmissionFile.String != ""
}

// SanitizeFilename keeps the base name of a client supplied filename, so it can never escape the upload store.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	switch name {
	case ".", "..", "/", "":
		return "file"
	}
	return name
}

// SubmissionName is the name a submission is stored under.
func SubmissionName(studentID, homeworkID int, filename string) string {
	return fmt.Sprintf("%d_%d_%s", studentID, homeworkID, SanitizeFilename(filename))
}

// ParseSubmissionName extracts the IDs encoded by SubmissionName.
func ParseSubmissionName(name string) (studentID, homeworkID int, ok bool) {
	parts := strings.SplitN(name, "_", 3)
	if len(parts) != 3 || parts[2] == "" {
		return 0, 0, false
	}
	var err error
	if studentID, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, false
	}
	if homeworkID, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, false
	}
	return studentID, homeworkID, true
}

func NewService(
	repo Repository,
	users UserFinder,
	tx core.Transactor,
	files FileStore,
	mailSvc core.EmailService,
	validate *validator.Validate,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		tx:       tx,
		files:    files,
		mailSvc:  mailSvc,
		validate: validate,
	}
}

// Assign stores homework given by teacher to the student owning nh.StudentEmail, then emails the student.
func (svc *Service) Assign(ctx context.Context, teacher user.User, nh NewHomework) (Homework, error) {
	if !teacher.IsTeacher() {
		return Homework{}, core.ErrForbidden
	}
	due, err := nh.Validate(svc.validate)
	if err != nil {
		return Homework{}, err
	}

	var (
		hw      Homework
		student user.User
	)
	err = svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		student, err = svc.users.GetUserByEmail(ctx, nh.StudentEmail, exec)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return ErrStudentNotFound
			}
			return errors.Wrap(err, "finding student by email")
		}
		if !student.IsStudent() {
			return ErrStudentNotFound
		}

		hw, err = svc.repo.CreateHomework(ctx, Homework{
			Title:       nh.Title,
			Description: nh.Description,
			DueDate:     due,
			TeacherID:   teacher.ID,
			StudentID:   student.ID,
		}, exec)
		return errors.Wrap(err, "creating homework")
	})
	if err != nil {
		return Homework{}, err
	}

	hw.TeacherName = teacher.FullName()
	hw.StudentName = student.FullName()
	svc.sendAssignedEmail(hw, student)
	return hw, nil
}

func (svc *Service) sendAssignedEmail(hw Homework, student user.User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: student.FullName(), Address: student.Email}},
		Subject:      "New homework: " + hw.Title,
		TemplateName: "homework_assigned",
		TemplateData: map[string]interface{}{
			"StudentName": student.FirstName,
			"TeacherName": hw.TeacherName,
			"Title":       hw.Title,
			"Description": hw.Description,
			"DueDate":     hw.Due(),
		},
	})
}

// Submit stores the uploaded file of student for one of their homeworks.
// A resubmission overwrites the previous file reference.
func (svc *Service) Submit(ctx context.Context, student user.User, sub Submission) (Homework, error) {
	if !student.IsStudent() {
		return Homework{}, core.ErrForbidden
	}
	if err := sub.Validate(svc.validate); err != nil {
		return Homework{}, err
	}

	var (
		hw      Homework
		oldFile null.String
		newFile string
	)
	err := svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		var err error
		if hw, err = svc.repo.GetHomeworkForUpdate(ctx, sub.HomeworkID, exec); err != nil {
			return errors.Wrap(err, "finding homework by ID")
		}
		if hw.StudentID != student.ID {
			return ErrNotFound
		}

		oldFile = hw.SubmissionFile
		newFile = SubmissionName(student.ID, hw.ID, sub.Filename)
		if err = svc.files.Save(newFile, sub.Content); err != nil {
			return errors.Wrap(err, "saving submission")
		}
		if err = svc.repo.SetSubmissionFile(ctx, hw.ID, newFile, exec); err != nil {
			return errors.Wrap(err, "setting submission file")
		}
		hw.SubmissionFile = null.StringFrom(newFile)
		return nil
	})
	if err != nil {
		// the row still points at oldFile; a new name would be left orphaned
		if newFile != "" && newFile != oldFile.String {
			_ = svc.files.Remove(newFile)
		}
		return Homework{}, err
	}

	// best effort: the row already points at the new file
	if oldFile.Valid && oldFile.String != "" && oldFile.String != newFile {
		_ = svc.files.Remove(oldFile.String)
	}
	return hw, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Homework, error) {
	return svc.repo.GetHomeworkByID(ctx, id)
}

// QueryForStudent returns the homework assigned to student.
func (svc *Service) QueryForStudent(ctx context.Context, student user.User) ([]Homework, error) {
	hws, err := svc.repo.QueryHomeworkForStudent(ctx, student.ID)
	return hws, errors.Wrap(err, "querying student homework")
}

// QueryByTeacher returns the homework assigned by teacher.
func (svc *Service) QueryByTeacher(ctx context.Context, teacher user.User) ([]Homework, error) {
	hws, err := svc.repo.QueryHomeworkByTeacher(ctx, teacher.ID)
	return hws, errors.Wrap(err, "querying teacher homework")
}
