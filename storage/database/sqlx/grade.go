package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/grade"
)

type gradeRepository struct {
	repository
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(exec core.DBExecutor) *gradeRepository {
	return &gradeRepository{repository{exec: exec}}
}

func (repo gradeRepository) CreateGrade(ctx context.Context, g grade.Grade, exec ...core.DBExecutor) (grade.Grade, error) {
	b := psql.Insert("grades").
		Columns("subject", "grade", "teacher_id", "student_id").
		Values(g.Subject, g.Grade, g.TeacherID, g.StudentID).
		Suffix("RETURNING id")
	if err := repo.get(ctx, exec, &g.ID, b); err != nil {
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo gradeRepository) query(ctx context.Context, exec []core.DBExecutor, where sq.Eq) ([]grade.Grade, error) {
	b := psql.Select(
		"g.id", "g.subject", "g.grade", "g.teacher_id", "g.student_id",
		fullNameCol("t", "teacher_name"), fullNameCol("s", "student_name"),
	).
		From("grades g").
		Join("users t ON t.id = g.teacher_id").
		Join("users s ON s.id = g.student_id").
		Where(where).
		OrderBy("g.id")

	grades := make([]grade.Grade, 0)
	if err := repo.selectAll(ctx, exec, &grades, b); err != nil {
		return nil, errors.Wrap(err, "selecting grades")
	}
	return grades, nil
}

func (repo gradeRepository) QueryGradesForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]grade.Grade, error) {
	return repo.query(ctx, exec, sq.Eq{"g.student_id": studentID})
}

func (repo gradeRepository) QueryGradesByTeacher(ctx context.Context, teacherID int, exec ...core.DBExecutor) ([]grade.Grade, error) {
	return repo.query(ctx, exec, sq.Eq{"g.teacher_id": teacherID})
}
