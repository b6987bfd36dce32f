package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/lesson"
)

type lessonRepository struct {
	db *DB
}

var _ lesson.Repository = (*lessonRepository)(nil)

func NewLessonRepository(db *DB) *lessonRepository {
	return &lessonRepository{db: db}
}

func (repo *lessonRepository) CreateLesson(_ context.Context, l lesson.Lesson, _ ...core.DBExecutor) (lesson.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	l.ID = repo.db.nextPK()
	repo.db.lessons[l.ID] = l
	return l, nil
}

func (repo *lessonRepository) QueryLessonsVisibleTo(
	_ context.Context,
	teacherID int,
	studentEmail string,
	_ ...core.DBExecutor,
) ([]lesson.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lessons := make([]lesson.Lesson, 0)
	for _, l := range repo.db.lessons {
		if l.TeacherID == teacherID || l.StudentEmail == studentEmail {
			lessons = append(lessons, l)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].DateTime.Equal(lessons[j].DateTime) {
			return lessons[i].ID < lessons[j].ID
		}
		return lessons[i].DateTime.Before(lessons[j].DateTime)
	})
	return lessons, nil
}
