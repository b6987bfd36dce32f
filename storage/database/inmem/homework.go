package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/homework"
)

type homeworkRepository struct {
	db *DB
}

var _ homework.Repository = (*homeworkRepository)(nil)

func NewHomeworkRepository(db *DB) *homeworkRepository {
	return &homeworkRepository{db: db}
}

func (repo *homeworkRepository) withNames(hw homework.Homework) homework.Homework {
	hw.TeacherName = repo.db.fullName(hw.TeacherID)
	hw.StudentName = repo.db.fullName(hw.StudentID)
	return hw
}

func (repo *homeworkRepository) CreateHomework(_ context.Context, hw homework.Homework, _ ...core.DBExecutor) (homework.Homework, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	hw.ID = repo.db.nextPK()
	hw.TeacherName, hw.StudentName = "", ""
	repo.db.homeworks[hw.ID] = hw
	return hw, nil
}

func (repo *homeworkRepository) GetHomeworkByID(_ context.Context, id int, _ ...core.DBExecutor) (homework.Homework, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if hw, ok := repo.db.homeworks[id]; ok {
		return repo.withNames(hw), nil
	}
	return homework.Homework{}, homework.ErrNotFound
}

// GetHomeworkForUpdate needs no lock of its own: DB.InTx runs one transaction at a time.
func (repo *homeworkRepository) GetHomeworkForUpdate(ctx context.Context, id int, exec ...core.DBExecutor) (homework.Homework, error) {
	return repo.GetHomeworkByID(ctx, id, exec...)
}

func (repo *homeworkRepository) filter(keep func(hw homework.Homework) bool) []homework.Homework {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	hws := make([]homework.Homework, 0)
	for _, hw := range repo.db.homeworks {
		if keep(hw) {
			hws = append(hws, repo.withNames(hw))
		}
	}
	sort.Slice(hws, func(i, j int) bool {
		if hws[i].DueDate.Equal(hws[j].DueDate) {
			return hws[i].ID < hws[j].ID
		}
		return hws[i].DueDate.Before(hws[j].DueDate)
	})
	return hws
}

func (repo *homeworkRepository) QueryHomeworkForStudent(_ context.Context, studentID int, _ ...core.DBExecutor) ([]homework.Homework, error) {
	return repo.filter(func(hw homework.Homework) bool { return hw.StudentID == studentID }), nil
}

func (repo *homeworkRepository) QueryHomeworkByTeacher(_ context.Context, teacherID int, _ ...core.DBExecutor) ([]homework.Homework, error) {
	return repo.filter(func(hw homework.Homework) bool { return hw.TeacherID == teacherID }), nil
}

func (repo *homeworkRepository) SetSubmissionFile(_ context.Context, id int, filename string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	hw, ok := repo.db.homeworks[id]
	if !ok {
		return homework.ErrNotFound
	}
	hw.SubmissionFile = null.StringFrom(filename)
	repo.db.homeworks[id] = hw
	return nil
}
