package lesson_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/lesson"
	"github.com/trezcool/shkola/core/user"
	"github.com/trezcool/shkola/storage/database/inmem"
	"github.com/trezcool/shkola/tests"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	validate, _ := testutil.NewValidator(t)
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	svc := lesson.NewService(inmemdb.NewLessonRepository(db), db, validate)

	teacher := testutil.CreateUser(t, usrRepo, "Maria", "Ivanova", "maria@school.com", "", user.RoleTeacher)
	other := testutil.CreateUser(t, usrRepo, "Petro", "Sydorenko", "petro@school.com", "", user.RoleTeacher)
	student := testutil.CreateUser(t, usrRepo, "Ivan", "Petrenko", "ivan@school.com", "", user.RoleStudent)
	outsider := testutil.CreateUser(t, usrRepo, "Oksana", "Melnyk", "oksana@school.com", "", user.RoleStudent)

	t.Run("students cannot schedule", func(t *testing.T) {
		_, err := svc.Schedule(ctx, student, lesson.NewLesson{DateTime: "2024-09-01T09:00", Subject: "Math", StudentEmail: student.Email})
		assert.Equal(t, core.ErrForbidden, err)
	})

	t.Run("invalid datetime", func(t *testing.T) {
		for _, dt := range []string{"2024-09-01", "01.09.2024 09:00", "2024-13-01T09:00", "2024-09-01T09:00:00"} {
			_, err := svc.Schedule(ctx, teacher, lesson.NewLesson{DateTime: dt, Subject: "Math", StudentEmail: student.Email})
			assert.True(t, core.IsValidationError(err), dt)
		}
	})

	late, err := svc.Schedule(ctx, teacher, lesson.NewLesson{DateTime: "2024-09-02T10:30", Subject: "History", StudentEmail: "IVAN@school.com"})
	require.NoError(t, err)
	assert.Equal(t, "ivan@school.com", late.StudentEmail)
	assert.Equal(t, time.Date(2024, 9, 2, 10, 30, 0, 0, time.UTC), late.DateTime)
	assert.Equal(t, "2024-09-02T10:30", late.Formatted())

	early, err := svc.Schedule(ctx, teacher, lesson.NewLesson{DateTime: "2024-09-01T09:00", Subject: "Math", StudentEmail: "nobody@school.com"})
	require.NoError(t, err)
	byOther, err := svc.Schedule(ctx, other, lesson.NewLesson{DateTime: "2024-09-01T12:00", Subject: "Art", StudentEmail: student.Email})
	require.NoError(t, err)

	tests := []struct {
		name string
		usr  user.User
		want []lesson.Lesson
	}{
		{name: "teacher sees own lessons", usr: teacher, want: []lesson.Lesson{early, late}},
		{name: "other teacher", usr: other, want: []lesson.Lesson{byOther}},
		{name: "student sees lessons scheduled for their email", usr: student, want: []lesson.Lesson{byOther, late}},
		{name: "nothing for outsider", usr: outsider, want: []lesson.Lesson{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.QueryVisibleTo(ctx, tt.usr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
