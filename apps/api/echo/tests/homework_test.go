package tests

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shkola/core/homework"
	"github.com/trezcool/shkola/core/user"
	"github.com/trezcool/shkola/tests"
)

func submission(t *testing.T, hwID int, filename, content string) (string, *bytes.Buffer) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("homework_id", strconv.Itoa(hwID)))
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), &body
}

func Test_homeworkApi(t *testing.T) {
	ctx := context.Background()
	app := setup(t)
	teacher := testutil.CreateUser(t, app.usrRepo, "Maria", "Ivanova", "maria@school.com", testutil.Password, user.RoleTeacher)
	ivan := testutil.CreateUser(t, app.usrRepo, "Ivan", "Petrenko", "ivan@school.com", testutil.Password, user.RoleStudent)
	oksana := testutil.CreateUser(t, app.usrRepo, "Oksana", "Melnyk", "oksana@school.com", testutil.Password, user.RoleStudent)

	tb := app.newBrowser(t)
	tb.login(teacher.Email, testutil.Password)
	ib := app.newBrowser(t)
	ib.login(ivan.Email, testutil.Password)
	ob := app.newBrowser(t)
	ob.login(oksana.Email, testutil.Password)

	hwForm := func(title, due, email string) url.Values {
		return url.Values{"title": {title}, "description": {"Write about your summer"}, "due_date": {due}, "student_email": {email}}
	}

	t.Run("assign", func(t *testing.T) {
		tests := []struct {
			b *browser
			httpTest
		}{
			{ib, httpTest{name: "student cannot assign", method: http.MethodPost, path: "/add_homework", form: hwForm("Essay", "2024-09-10", oksana.Email), wantCode: http.StatusForbidden}},
			{tb, httpTest{name: "unknown student", method: http.MethodPost, path: "/add_homework", form: hwForm("Essay", "2024-09-10", "ghost@school.com"), wantCode: http.StatusNotFound, wantBody: []string{"Student not found"}}},
			{tb, httpTest{name: "bad due date", method: http.MethodPost, path: "/add_homework", form: hwForm("Essay", "10.09.2024", ivan.Email), wantCode: http.StatusOK, wantBody: []string{"РРРР-ММ-ДД"}}},
			{tb, httpTest{name: "success", method: http.MethodPost, path: "/add_homework", form: hwForm("Essay", "2024-09-10", ivan.Email), wantCode: http.StatusFound, wantLocation: "/homework"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tt.b.t = t
				tt.b.run(tt.httpTest)
			})
		}

		sent := app.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, ivan.Email, sent[0].To[0].Address)
	})

	hws, err := app.hwRepo.QueryHomeworkForStudent(ctx, ivan.ID)
	require.NoError(t, err)
	require.Len(t, hws, 1)
	hw := hws[0]

	t.Run("listings", func(t *testing.T) {
		ib.t = t
		ib.run(httpTest{path: "/homework", wantCode: http.StatusOK, wantBody: []string{"Essay", "2024-09-10", "Maria Ivanova", `action="/submit_homework"`}, notInBody: []string{`action="/add_homework"`}})
		ob.t = t
		ob.run(httpTest{path: "/homework", wantCode: http.StatusOK, notInBody: []string{"Essay"}})
		tb.t = t
		tb.run(httpTest{path: "/homework", wantCode: http.StatusOK, wantBody: []string{"Essay", "Ivan Petrenko", `action="/add_homework"`}})
	})

	t.Run("submit", func(t *testing.T) {
		tests := []struct {
			name     string
			b        *browser
			hwID     int
			filename string
			wantCode int
		}{
			{name: "teacher cannot submit", b: tb, hwID: hw.ID, filename: "x.txt", wantCode: http.StatusForbidden},
			{name: "unknown homework", b: ib, hwID: 999, filename: "x.txt", wantCode: http.StatusNotFound},
			{name: "homework of someone else", b: ob, hwID: hw.ID, filename: "x.txt", wantCode: http.StatusNotFound},
			{name: "missing file", b: ib, hwID: hw.ID, wantCode: http.StatusOK},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tt.b.t = t
				ct, body := submission(t, tt.hwID, tt.filename, "x")
				res := tt.b.postMultipart("/submit_homework", ct, body)
				assert.Equal(t, tt.wantCode, res.code)
			})
		}

		got, err := app.hwRepo.GetHomeworkByID(ctx, hw.ID)
		require.NoError(t, err)
		assert.False(t, got.Submitted())
	})

	t.Run("resubmission overwrites", func(t *testing.T) {
		ib.t = t
		for _, f := range []struct{ name, content string }{{"draft.txt", "draft"}, {"../final.txt", "final"}} {
			ct, body := submission(t, hw.ID, f.name, f.content)
			res := ib.postMultipart("/submit_homework", ct, body)
			require.Equal(t, http.StatusFound, res.code, res.body)
			assert.Equal(t, "/homework", res.location)
		}

		hws, err := app.hwRepo.QueryHomeworkForStudent(ctx, ivan.ID)
		require.NoError(t, err)
		require.Len(t, hws, 1, "no duplicate rows")
		want := homework.SubmissionName(ivan.ID, hw.ID, "final.txt")
		assert.Equal(t, want, hws[0].SubmissionFile.String)

		ok, err := afero.Exists(app.fs, "uploads/"+homework.SubmissionName(ivan.ID, hw.ID, "draft.txt"))
		require.NoError(t, err)
		assert.False(t, ok, "previous file is removed")

		tb.t = t
		tb.run(httpTest{path: "/homework", wantCode: http.StatusOK, wantBody: []string{`href="/uploads/` + want + `"`}})
	})

	t.Run("download", func(t *testing.T) {
		name := homework.SubmissionName(ivan.ID, hw.ID, "final.txt")
		tests := []struct {
			b *browser
			httpTest
		}{
			{ib, httpTest{name: "owner", path: "/uploads/" + name, wantCode: http.StatusOK, wantBody: []string{"final"}}},
			{tb, httpTest{name: "assigning teacher", path: "/uploads/" + name, wantCode: http.StatusOK, wantBody: []string{"final"}}},
			{ob, httpTest{name: "other student", path: "/uploads/" + name, wantCode: http.StatusNotFound}},
			{ib, httpTest{name: "replaced file", path: "/uploads/" + homework.SubmissionName(ivan.ID, hw.ID, "draft.txt"), wantCode: http.StatusNotFound}},
			{ib, httpTest{name: "not a submission", path: "/uploads/passwd", wantCode: http.StatusNotFound}},
			{app.newBrowser(t), httpTest{name: "anonymous", path: "/uploads/" + name, wantCode: http.StatusFound, wantLocation: "/"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tt.b.t = t
				tt.b.run(tt.httpTest)
			})
		}
	})
}
