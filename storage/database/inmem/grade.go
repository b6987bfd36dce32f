package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(_ context.Context, g grade.Grade, _ ...core.DBExecutor) (grade.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	g.ID = repo.db.nextPK()
	repo.db.grades[g.ID] = g
	return g, nil
}

func (repo *gradeRepository) filter(keep func(g grade.Grade) bool) []grade.Grade {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grades := make([]grade.Grade, 0)
	for _, g := range repo.db.grades {
		if keep(g) {
			g.TeacherName = repo.db.fullName(g.TeacherID)
			g.StudentName = repo.db.fullName(g.StudentID)
			grades = append(grades, g)
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID < grades[j].ID })
	return grades
}

func (repo *gradeRepository) QueryGradesForStudent(_ context.Context, studentID int, _ ...core.DBExecutor) ([]grade.Grade, error) {
	return repo.filter(func(g grade.Grade) bool { return g.StudentID == studentID }), nil
}

func (repo *gradeRepository) QueryGradesByTeacher(_ context.Context, teacherID int, _ ...core.DBExecutor) ([]grade.Grade, error) {
	return repo.filter(func(g grade.Grade) bool { return g.TeacherID == teacherID }), nil
}
