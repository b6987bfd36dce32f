package inmemdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/homework"
	"github.com/trezcool/shkola/core/user"
	"github.com/trezcool/shkola/storage/database/inmem"
)

func TestDB_InTx(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	users := inmemdb.NewUserRepository(db)
	hws := inmemdb.NewHomeworkRepository(db)

	teacher, err := users.CreateUser(ctx, user.User{FirstName: "Maria", Email: "maria@school.com", Role: user.RoleTeacher})
	require.NoError(t, err)
	student, err := users.CreateUser(ctx, user.User{FirstName: "Ivan", Email: "ivan@school.com", Role: user.RoleStudent})
	require.NoError(t, err)
	hw, err := hws.CreateHomework(ctx, homework.Homework{Title: "Essay", DueDate: time.Now(), TeacherID: teacher.ID, StudentID: student.ID})
	require.NoError(t, err)

	errAbort := errors.New("abort")

	t.Run("failure rolls every write back", func(t *testing.T) {
		err := db.InTx(ctx, func(exec core.DBExecutor) error {
			if _, err := users.CreateUser(ctx, user.User{FirstName: "Oksana", Email: "oksana@school.com", Role: user.RoleStudent}, exec); err != nil {
				return err
			}
			if err := hws.SetSubmissionFile(ctx, hw.ID, "2_3_essay.pdf", exec); err != nil {
				return err
			}
			return errAbort
		})
		assert.Equal(t, errAbort, err)

		_, err = users.GetUserByEmail(ctx, "oksana@school.com")
		assert.Equal(t, user.ErrNotFound, err, "the created row is gone")
		got, err := hws.GetHomeworkByID(ctx, hw.ID)
		require.NoError(t, err)
		assert.False(t, got.Submitted(), "the updated row is restored")
	})

	t.Run("success commits", func(t *testing.T) {
		err := db.InTx(ctx, func(exec core.DBExecutor) error {
			_, err := users.CreateUser(ctx, user.User{FirstName: "Oksana", Email: "oksana@school.com", Role: user.RoleStudent}, exec)
			return err
		})
		require.NoError(t, err)

		usr, err := users.GetUserByEmail(ctx, "oksana@school.com")
		require.NoError(t, err)
		assert.Equal(t, "Oksana", usr.FirstName)
	})
}
