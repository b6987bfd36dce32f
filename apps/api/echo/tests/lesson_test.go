package tests

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/shkola/core/user"
	"github.com/trezcool/shkola/tests"
)

func Test_lessonApi(t *testing.T) {
	app := setup(t)
	teacher := testutil.CreateUser(t, app.usrRepo, "Maria", "Ivanova", "maria@school.com", testutil.Password, user.RoleTeacher)
	student := testutil.CreateUser(t, app.usrRepo, "Ivan", "Petrenko", "ivan@school.com", testutil.Password, user.RoleStudent)
	testutil.CreateUser(t, app.usrRepo, "Oksana", "Melnyk", "oksana@school.com", testutil.Password, user.RoleStudent)

	anon := app.newBrowser(t)
	tb := app.newBrowser(t)
	tb.login(teacher.Email, testutil.Password)
	sb := app.newBrowser(t)
	sb.login(student.Email, testutil.Password)
	ob := app.newBrowser(t)
	ob.login("oksana@school.com", testutil.Password)

	lessonForm := func(dt, subject, email string) url.Values {
		return url.Values{"dt_str": {dt}, "subject": {subject}, "student_email": {email}}
	}

	tests := []struct {
		b *browser
		httpTest
	}{
		{anon, httpTest{name: "anonymous calendar", path: "/calendar", wantCode: http.StatusFound, wantLocation: "/"}},
		{anon, httpTest{name: "anonymous schedule", method: http.MethodPost, path: "/add_schedule", form: lessonForm("2024-09-01T09:00", "Math", student.Email), wantCode: http.StatusFound, wantLocation: "/"}},
		{sb, httpTest{name: "student form", path: "/add_schedule", wantCode: http.StatusForbidden}},
		{sb, httpTest{name: "student schedule", method: http.MethodPost, path: "/add_schedule", form: lessonForm("2024-09-01T09:00", "Math", student.Email), wantCode: http.StatusForbidden}},
		{tb, httpTest{name: "teacher form", path: "/add_schedule", wantCode: http.StatusOK, wantBody: []string{`name="dt_str"`}}},
		{tb, httpTest{name: "bad datetime", method: http.MethodPost, path: "/add_schedule", form: lessonForm("01.09.2024 09:00", "Math", student.Email), wantCode: http.StatusOK, wantBody: []string{"РРРР-ММ-ДДTГГ:ХХ"}}},
		{tb, httpTest{name: "late lesson", method: http.MethodPost, path: "/add_schedule", form: lessonForm("2024-09-02T10:30", "History", student.Email), wantCode: http.StatusFound, wantLocation: "/calendar"}},
		{tb, httpTest{name: "early lesson", method: http.MethodPost, path: "/add_schedule", form: lessonForm("2024-09-01T09:00", "Math", student.Email), wantCode: http.StatusFound, wantLocation: "/calendar"}},
		{tb, httpTest{name: "lesson for a stranger", method: http.MethodPost, path: "/add_schedule", form: lessonForm("2024-09-03T08:00", "Art", "nobody@school.com"), wantCode: http.StatusFound, wantLocation: "/calendar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.b.t = t
			tt.b.run(tt.httpTest)
		})
	}

	t.Run("teacher sees own lessons", func(t *testing.T) {
		tb.t = t
		res := tb.run(httpTest{path: "/calendar", wantCode: http.StatusOK, wantBody: []string{"History", "Math", "Art"}})
		assert.Less(t, strings.Index(res.body, "2024-09-01 09:00"), strings.Index(res.body, "2024-09-02 10:30"), "ordered by datetime")
	})

	t.Run("student sees lessons for their email", func(t *testing.T) {
		sb.t = t
		sb.run(httpTest{path: "/calendar", wantCode: http.StatusOK, wantBody: []string{"History", "Math"}, notInBody: []string{"Art"}})
	})

	t.Run("other student sees nothing", func(t *testing.T) {
		ob.t = t
		ob.run(httpTest{path: "/calendar", wantCode: http.StatusOK, notInBody: []string{`class="lesson"`}})
	})
}
