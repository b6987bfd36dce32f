package homework_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/homework"
	"github.com/trezcool/shkola/core/user"
	"github.com/trezcool/shkola/services/email"
	"github.com/trezcool/shkola/services/files"
	"github.com/trezcool/shkola/storage/database/inmem"
	"github.com/trezcool/shkola/tests"
)

// brokenRepository fails every submission update.
type brokenRepository struct {
	homework.Repository
}

func (brokenRepository) SetSubmissionFile(context.Context, int, string, ...core.DBExecutor) error {
	return errors.New("connection reset")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"essay.pdf", "essay.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\ivan\essay.docx`, "essay.docx"},
		{"dir/", "dir"},
		{"..", "file"},
		{"", "file"},
		{"/", "file"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, homework.SanitizeFilename(tt.in), tt.in)
	}
	assert.Equal(t, "3_7_essay.pdf", homework.SubmissionName(3, 7, "../essay.pdf"))
}

func TestParseSubmissionName(t *testing.T) {
	studentID, hwID, ok := homework.ParseSubmissionName("3_7_my_essay.pdf")
	require.True(t, ok)
	assert.Equal(t, 3, studentID)
	assert.Equal(t, 7, hwID)

	for _, name := range []string{"essay.pdf", "3_essay.pdf", "a_7_essay.pdf", "3_b_essay.pdf", "3_7_"} {
		_, _, ok = homework.ParseSubmissionName(name)
		assert.False(t, ok, name)
	}
}

func TestService(t *testing.T) {
	ctx := context.Background()
	conf := testutil.NewConfig()
	validate, _ := testutil.NewValidator(t)
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	fs := afero.NewMemMapFs()
	store, err := filesvc.NewStore(fs, conf.Storage.UploadDir)
	require.NoError(t, err)
	mailSvc := emailsvc.NewConsoleServiceMock(testutil.NopLogger{}, conf)
	svc := homework.NewService(inmemdb.NewHomeworkRepository(db), usrRepo, db, store, mailSvc, validate)

	teacher := testutil.CreateUser(t, usrRepo, "Maria", "Ivanova", "maria@school.com", "", user.RoleTeacher)
	ivan := testutil.CreateUser(t, usrRepo, "Ivan", "Petrenko", "ivan@school.com", "", user.RoleStudent)
	oksana := testutil.CreateUser(t, usrRepo, "Oksana", "Melnyk", "oksana@school.com", "", user.RoleStudent)

	t.Run("assign", func(t *testing.T) {
		tests := []struct {
			name      string
			by        user.User
			nh        homework.NewHomework
			wantErr   error
			wantValid bool
		}{
			{name: "student cannot assign", by: ivan, nh: homework.NewHomework{Title: "Essay", DueDate: "2024-09-10", StudentEmail: oksana.Email}, wantErr: core.ErrForbidden},
			{name: "unknown student", by: teacher, nh: homework.NewHomework{Title: "Essay", DueDate: "2024-09-10", StudentEmail: "ghost@school.com"}, wantErr: homework.ErrStudentNotFound},
			{name: "bad due date", by: teacher, nh: homework.NewHomework{Title: "Essay", DueDate: "10.09.2024", StudentEmail: ivan.Email}, wantValid: true},
			{name: "missing title", by: teacher, nh: homework.NewHomework{DueDate: "2024-09-10", StudentEmail: ivan.Email}, wantValid: true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Assign(ctx, tt.by, tt.nh)
				if tt.wantValid {
					assert.Error(t, err)
					assert.NotEqual(t, homework.ErrStudentNotFound, err)
					return
				}
				assert.Equal(t, tt.wantErr, err)
			})
		}
		assert.Empty(t, mailSvc.SentMessages())
	})

	hw, err := svc.Assign(ctx, teacher, homework.NewHomework{
		Title:        "Essay",
		Description:  "Write about your summer",
		DueDate:      "2024-09-10",
		StudentEmail: ivan.Email,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-09-10", hw.Due())
	assert.False(t, hw.Submitted())

	t.Run("student is emailed", func(t *testing.T) {
		sent := mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, ivan.Email, sent[0].To[0].Address)
		assert.Contains(t, sent[0].TextContent, "Essay")
		assert.Contains(t, sent[0].TextContent, "2024-09-10")
		assert.Contains(t, sent[0].HTMLContent, "Maria Ivanova")
	})

	t.Run("submit", func(t *testing.T) {
		tests := []struct {
			name    string
			by      user.User
			hwID    int
			wantErr error
		}{
			{name: "teacher cannot submit", by: teacher, hwID: hw.ID, wantErr: core.ErrForbidden},
			{name: "unknown homework", by: ivan, hwID: 999, wantErr: homework.ErrNotFound},
			{name: "homework of someone else", by: oksana, hwID: hw.ID, wantErr: homework.ErrNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Submit(ctx, tt.by, homework.Submission{HomeworkID: tt.hwID, Filename: "x.txt", Content: strings.NewReader("x")})
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			})
		}

		_, err := svc.Submit(ctx, ivan, homework.Submission{HomeworkID: hw.ID, Filename: "x.txt"})
		assert.True(t, core.IsValidationError(err), "a file is required")
	})

	t.Run("resubmission overwrites", func(t *testing.T) {
		first, err := svc.Submit(ctx, ivan, homework.Submission{HomeworkID: hw.ID, Filename: "draft.txt", Content: strings.NewReader("draft")})
		require.NoError(t, err)
		name := homework.SubmissionName(ivan.ID, hw.ID, "draft.txt")
		assert.Equal(t, name, first.SubmissionFile.String)

		second, err := svc.Submit(ctx, ivan, homework.Submission{HomeworkID: hw.ID, Filename: "final.txt", Content: strings.NewReader("final")})
		require.NoError(t, err)
		assert.Equal(t, homework.SubmissionName(ivan.ID, hw.ID, "final.txt"), second.SubmissionFile.String)

		hws, err := svc.QueryForStudent(ctx, ivan)
		require.NoError(t, err)
		require.Len(t, hws, 1, "no duplicate rows")
		assert.Equal(t, second.SubmissionFile, hws[0].SubmissionFile)
		assert.True(t, hws[0].Submitted())

		ok, err := store.Exists(name)
		require.NoError(t, err)
		assert.False(t, ok, "previous file is removed")
		data, err := afero.ReadFile(fs, "uploads/"+second.SubmissionFile.String)
		require.NoError(t, err)
		assert.Equal(t, "final", string(data))
	})

	t.Run("failed update keeps the previous submission", func(t *testing.T) {
		before, err := svc.GetByID(ctx, hw.ID)
		require.NoError(t, err)
		require.True(t, before.Submitted())

		broken := homework.NewService(brokenRepository{inmemdb.NewHomeworkRepository(db)}, usrRepo, db, store, mailSvc, validate)
		_, err = broken.Submit(ctx, ivan, homework.Submission{HomeworkID: hw.ID, Filename: "late.txt", Content: strings.NewReader("late")})
		require.Error(t, err)

		after, err := svc.GetByID(ctx, hw.ID)
		require.NoError(t, err)
		assert.Equal(t, before.SubmissionFile, after.SubmissionFile)

		ok, err := store.Exists(homework.SubmissionName(ivan.ID, hw.ID, "late.txt"))
		require.NoError(t, err)
		assert.False(t, ok, "the uncommitted upload is removed")
		ok, err = store.Exists(before.SubmissionFile.String)
		require.NoError(t, err)
		assert.True(t, ok, "the committed upload is kept")
	})

	t.Run("queries", func(t *testing.T) {
		hws, err := svc.QueryForStudent(ctx, oksana)
		require.NoError(t, err)
		assert.Empty(t, hws)

		hws, err = svc.QueryByTeacher(ctx, teacher)
		require.NoError(t, err)
		require.Len(t, hws, 1)
		assert.Equal(t, "Ivan Petrenko", hws[0].StudentName)

		got, err := svc.GetByID(ctx, hw.ID)
		require.NoError(t, err)
		assert.Equal(t, hw.ID, got.ID)
	})
}
