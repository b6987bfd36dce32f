package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/lesson"
)

type lessonRepository struct {
	repository
}

var _ lesson.Repository = (*lessonRepository)(nil)

func NewLessonRepository(exec core.DBExecutor) *lessonRepository {
	return &lessonRepository{repository{exec: exec}}
}

func (repo lessonRepository) CreateLesson(ctx context.Context, l lesson.Lesson, exec ...core.DBExecutor) (lesson.Lesson, error) {
	b := psql.Insert("lessons").
		Columns("subject", "datetime", "teacher_id", "student_email").
		Values(l.Subject, l.DateTime, l.TeacherID, l.StudentEmail).
		Suffix("RETURNING id")
	if err := repo.get(ctx, exec, &l.ID, b); err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return l, nil
}

func (repo lessonRepository) QueryLessonsVisibleTo(
	ctx context.Context,
	teacherID int,
	studentEmail string,
	exec ...core.DBExecutor,
) ([]lesson.Lesson, error) {
	b := psql.Select("id", "subject", "datetime", "teacher_id", "student_email").
		From("lessons").
		Where(sq.Or{sq.Eq{"teacher_id": teacherID}, sq.Eq{"student_email": studentEmail}}).
		OrderBy("datetime", "id")

	lessons := make([]lesson.Lesson, 0)
	if err := repo.selectAll(ctx, exec, &lessons, b); err != nil {
		return nil, errors.Wrap(err, "selecting lessons")
	}
	return lessons, nil
}
