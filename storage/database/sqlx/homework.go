package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/homework"
)

type homeworkRepository struct {
	repository
}

var _ homework.Repository = (*homeworkRepository)(nil)

func NewHomeworkRepository(exec core.DBExecutor) *homeworkRepository {
	return &homeworkRepository{repository{exec: exec}}
}

func (repo homeworkRepository) selectBuilder() sq.SelectBuilder {
	return psql.Select(
		"h.id", "h.title", "h.description", "h.due_date", "h.teacher_id", "h.student_id", "h.submission_file",
		fullNameCol("t", "teacher_name"), fullNameCol("s", "student_name"),
	).
		From("homeworks h").
		Join("users t ON t.id = h.teacher_id").
		Join("users s ON s.id = h.student_id")
}

func (repo homeworkRepository) CreateHomework(ctx context.Context, hw homework.Homework, exec ...core.DBExecutor) (homework.Homework, error) {
	b := psql.Insert("homeworks").
		Columns("title", "description", "due_date", "teacher_id", "student_id", "submission_file").
		Values(hw.Title, hw.Description, hw.DueDate, hw.TeacherID, hw.StudentID, hw.SubmissionFile).
		Suffix("RETURNING id")
	if err := repo.get(ctx, exec, &hw.ID, b); err != nil {
		return homework.Homework{}, errors.Wrap(err, "inserting homework")
	}
	return hw, nil
}

func (repo homeworkRepository) GetHomeworkByID(ctx context.Context, id int, exec ...core.DBExecutor) (homework.Homework, error) {
	return repo.getHomework(ctx, exec, repo.selectBuilder().Where(sq.Eq{"h.id": id}))
}

func (repo homeworkRepository) GetHomeworkForUpdate(ctx context.Context, id int, exec ...core.DBExecutor) (homework.Homework, error) {
	return repo.getHomework(ctx, exec, repo.selectBuilder().Where(sq.Eq{"h.id": id}).Suffix("FOR UPDATE OF h"))
}

func (repo homeworkRepository) getHomework(ctx context.Context, exec []core.DBExecutor, b sq.SelectBuilder) (homework.Homework, error) {
	var hw homework.Homework
	if err := repo.get(ctx, exec, &hw, b); err != nil {
		if isNoRows(err) {
			return homework.Homework{}, homework.ErrNotFound
		}
		return homework.Homework{}, errors.Wrap(err, "selecting homework")
	}
	return hw, nil
}

func (repo homeworkRepository) query(ctx context.Context, exec []core.DBExecutor, where sq.Eq) ([]homework.Homework, error) {
	hws := make([]homework.Homework, 0)
	if err := repo.selectAll(ctx, exec, &hws, repo.selectBuilder().Where(where).OrderBy("h.due_date", "h.id")); err != nil {
		return nil, errors.Wrap(err, "selecting homework")
	}
	return hws, nil
}

func (repo homeworkRepository) QueryHomeworkForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]homework.Homework, error) {
	return repo.query(ctx, exec, sq.Eq{"h.student_id": studentID})
}

func (repo homeworkRepository) QueryHomeworkByTeacher(ctx context.Context, teacherID int, exec ...core.DBExecutor) ([]homework.Homework, error) {
	return repo.query(ctx, exec, sq.Eq{"h.teacher_id": teacherID})
}

func (repo homeworkRepository) SetSubmissionFile(ctx context.Context, id int, filename string, exec ...core.DBExecutor) error {
	b := psql.Update("homeworks").Set("submission_file", filename).Where(sq.Eq{"id": id})
	if err := repo.update(ctx, exec, b, homework.ErrNotFound); err != nil {
		if errors.Cause(err) == homework.ErrNotFound {
			return err
		}
		return errors.Wrap(err, "updating submission file")
	}
	return nil
}
