package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shkola/core/user"
	"github.com/trezcool/shkola/tests"
)

func Test_userApi_register(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, app.usrRepo, "Taken", "User", "taken@school.com", testutil.Password, user.RoleStudent)
	b := app.newBrowser(t)

	form := func(email, pwd, role string) url.Values {
		return url.Values{
			"first_name": {"Olena"},
			"last_name":  {"Koval"},
			"email":      {email},
			"password":   {pwd},
			"role":       {role},
		}
	}

	tests := []httpTest{
		{name: "email without .com", method: http.MethodPost, path: "/register", form: form("olena@school.ua", testutil.Password, "student"), wantCode: http.StatusOK, wantBody: []string{`class="errors"`}},
		{name: "weak password", method: http.MethodPost, path: "/register", form: form("olena@school.com", "password", "student"), wantCode: http.StatusOK, wantBody: []string{`class="errors"`}},
		{name: "unknown role", method: http.MethodPost, path: "/register", form: form("olena@school.com", testutil.Password, "admin"), wantCode: http.StatusOK, wantBody: []string{`class="errors"`}},
		{name: "duplicate email", method: http.MethodPost, path: "/register", form: form("taken@school.com", testutil.Password, "teacher"), wantCode: http.StatusOK, wantBody: []string{"Користувач з таким email вже існує"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.t = t
			res := b.run(tt)
			assert.NotContains(t, res.body, testutil.Password, "password is never echoed")
			_, err := app.usrRepo.GetUserByEmail(context.Background(), "olena@school.com")
			assert.Equal(t, user.ErrNotFound, err, "no user must be stored")
		})
	}

	t.Run("success", func(t *testing.T) {
		b.t = t
		b.run(httpTest{
			method:       http.MethodPost,
			path:         "/register",
			form:         form("Olena@School.com", testutil.Password, "teacher"),
			wantCode:     http.StatusFound,
			wantLocation: "/",
		})
		usr, err := app.usrRepo.GetUserByEmail(context.Background(), "olena@school.com")
		require.NoError(t, err)
		assert.Equal(t, user.RoleTeacher, usr.Role)
		assert.True(t, usr.CheckPassword(testutil.Password))

		// no auto-login
		b.run(httpTest{path: "/dashboard", wantCode: http.StatusFound, wantLocation: "/"})
	})
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, app.usrRepo, "Ivan", "Petrenko", "ivan@school.com", testutil.Password, user.RoleStudent)

	var failures []string
	for _, form := range []url.Values{
		{"email": {"nobody@school.com"}, "password": {testutil.Password}},
		{"email": {"ivan@school.com"}, "password": {"Wr0ngPassword"}},
	} {
		b := app.newBrowser(t)
		res := b.run(httpTest{method: http.MethodPost, path: "/login", form: form, wantCode: http.StatusOK, wantBody: []string{"Невірні дані"}})
		failures = append(failures, res.body)
		b.run(httpTest{path: "/dashboard", wantCode: http.StatusFound, wantLocation: "/"})
	}
	assert.NotContains(t, failures[0], "nobody@school.com", "the email is not echoed")
	assert.Equal(t, failures[0], failures[1], "failures are indistinguishable")

	b := app.newBrowser(t)
	b.login("IVAN@school.com", testutil.Password)
	b.run(httpTest{path: "/dashboard", wantCode: http.StatusOK, wantBody: []string{"Ivan Petrenko", `href="/grades"`}, notInBody: []string{`href="/add_schedule"`}})

	b.run(httpTest{path: "/logout", wantCode: http.StatusFound, wantLocation: "/"})
	b.run(httpTest{path: "/dashboard", wantCode: http.StatusFound, wantLocation: "/"})
}

func Test_userApi_dashboard(t *testing.T) {
	app := setup(t)
	teacher := testutil.CreateUser(t, app.usrRepo, "Maria", "Ivanova", "maria@school.com", testutil.Password, user.RoleTeacher)

	b := app.newBrowser(t)
	b.login(teacher.Email, testutil.Password)
	b.run(httpTest{path: "/dashboard", wantCode: http.StatusOK, wantBody: []string{"Maria Ivanova", `href="/add_schedule"`}})

	t.Run("student", func(t *testing.T) {
		student := testutil.CreateUser(t, app.usrRepo, "Ivan", "Petrenko", "ivan@school.com", testutil.Password, user.RoleStudent)
		sb := app.newBrowser(t)
		sb.login(student.Email, testutil.Password)
		sb.run(httpTest{path: "/dashboard", wantCode: http.StatusOK, wantBody: []string{"Ivan Petrenko", `href="/homework"`}, notInBody: []string{`href="/add_schedule"`}})
	})

	t.Run("session of a vanished user", func(t *testing.T) {
		other := app.newBrowser(t)
		ghost := testutil.CreateUser(t, app.usrRepo, "Ghost", "User", "ghost@school.com", testutil.Password, user.RoleStudent)
		other.login(ghost.Email, testutil.Password)

		// a second app signs with the same key but shares no rows, so the session user is unknown there.
		// Cookies are not port specific: the jar replays the session.
		app2 := setup(t)
		other.base = app2.srv.URL
		other.run(httpTest{path: "/dashboard", wantCode: http.StatusForbidden, wantBody: []string{"Unauthorized"}})
	})
}

func Test_userApi_settings(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Ivan", "Petrenko", "ivan@school.com", testutil.Password, user.RoleStudent)
	testutil.CreateUser(t, app.usrRepo, "Other", "User", "other@school.com", testutil.Password, user.RoleTeacher)

	b := app.newBrowser(t)
	b.run(httpTest{path: "/settings", wantCode: http.StatusFound, wantLocation: "/"})
	b.login(usr.Email, testutil.Password)
	b.run(httpTest{path: "/settings", wantCode: http.StatusOK, wantBody: []string{`value="Ivan"`, `value="ivan@school.com"`}})

	tests := []httpTest{
		{
			name:     "email of another user",
			method:   http.MethodPost,
			path:     "/settings",
			form:     url.Values{"name": {"Ivan"}, "email": {"other@school.com"}, "password": {""}},
			wantCode: http.StatusOK,
			wantBody: []string{"Користувач з таким email вже існує"},
		},
		{
			name:     "blank name and email",
			method:   http.MethodPost,
			path:     "/settings",
			form:     url.Values{"name": {""}, "email": {"   "}, "password": {""}},
			wantCode: http.StatusOK,
			wantBody: []string{"Це поле обов&#39;язкове"},
		},
		{
			name:     "malformed email",
			method:   http.MethodPost,
			path:     "/settings",
			form:     url.Values{"name": {"Ivan"}, "email": {"not-an-email"}, "password": {""}},
			wantCode: http.StatusOK,
			wantBody: []string{"Введіть email з доменом .com"},
		},
		{
			name:         "empty password keeps the old one",
			method:       http.MethodPost,
			path:         "/settings",
			form:         url.Values{"name": {"Ivanko"}, "email": {"ivan@school.com"}, "password": {""}},
			wantCode:     http.StatusSeeOther,
			wantLocation: "/dashboard",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.t = t
			b.run(tt)
		})
	}
	stored, err := app.usrRepo.GetUserByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ivanko", stored.FirstName)
	assert.Equal(t, "ivan@school.com", stored.Email)
	assert.True(t, stored.CheckPassword(testutil.Password))

	t.Run("new password", func(t *testing.T) {
		b.t = t
		b.run(httpTest{
			method:       http.MethodPost,
			path:         "/settings",
			form:         url.Values{"name": {"Ivanko"}, "email": {"ivan@school.com"}, "password": {"N3wPassword"}},
			wantCode:     http.StatusSeeOther,
			wantLocation: "/dashboard",
		})

		fresh := app.newBrowser(t)
		fresh.run(httpTest{method: http.MethodPost, path: "/login", form: url.Values{"email": {"ivan@school.com"}, "password": {testutil.Password}}, wantCode: http.StatusOK})
		fresh.login("ivan@school.com", "N3wPassword")
	})
}

func Test_setLanguage(t *testing.T) {
	app := setup(t)
	b := app.newBrowser(t)

	tests := []struct {
		httpTest
		referer  string
		wantText string
	}{
		{httpTest: httpTest{name: "english", path: "/set_language/en", wantCode: http.StatusFound, wantLocation: "/register?x=1"}, referer: app.srv.URL + "/register?x=1", wantText: "Log in"},
		{httpTest: httpTest{name: "unknown language", path: "/set_language/fr", wantCode: http.StatusFound, wantLocation: "/"}, wantText: "Увійти"},
		{httpTest: httpTest{name: "foreign referer", path: "/set_language/en", wantCode: http.StatusFound, wantLocation: "/calendar"}, referer: "https://evil.example.com/calendar", wantText: "Log in"},
		{httpTest: httpTest{name: "scheme-relative referer", path: "/set_language/uk", wantCode: http.StatusFound, wantLocation: "/"}, referer: "//evil.example.com", wantText: "Увійти"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.t = t
			var res response
			if tt.referer != "" {
				res = b.get(tt.path, "Referer", tt.referer)
			} else {
				res = b.get(tt.path)
			}
			checkResponse(t, tt.httpTest, res)
			b.run(httpTest{path: "/", wantCode: http.StatusOK, wantBody: []string{tt.wantText}})
		})
	}
}

func Test_unknownRoutes(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Ivan", "Petrenko", "ivan@school.com", testutil.Password, user.RoleStudent)

	tests := []httpTest{
		{name: "unknown path", path: "/nope", wantCode: http.StatusNotFound},
		{name: "unknown nested path", path: "/nope/deeper", wantCode: http.StatusNotFound},
		{name: "unsupported method on home", method: http.MethodDelete, path: "/", wantCode: http.StatusMethodNotAllowed},
		{name: "unsupported method on authed route", method: http.MethodPut, path: "/dashboard", wantCode: http.StatusMethodNotAllowed},
	}

	anon := app.newBrowser(t)
	authed := app.newBrowser(t)
	authed.login(usr.Email, testutil.Password)
	for _, b := range []*browser{anon, authed} {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				b.t = t
				res := b.run(tt)
				assert.Empty(t, res.location, "no redirect")
			})
		}
	}
}
