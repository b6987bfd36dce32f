package tests

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/shkola/apps/api/echo"
	"github.com/trezcool/shkola/core/grade"
	"github.com/trezcool/shkola/core/homework"
	"github.com/trezcool/shkola/core/lesson"
	"github.com/trezcool/shkola/core/notify"
	"github.com/trezcool/shkola/core/user"
	"github.com/trezcool/shkola/services/email"
	"github.com/trezcool/shkola/services/files"
	"github.com/trezcool/shkola/storage/database/inmem"
	"github.com/trezcool/shkola/tests"
)

type testApp struct {
	srv     *httptest.Server
	usrRepo user.Repository
	hwRepo  homework.Repository
	fs      afero.Fs
	relay   *notify.Relay
	mailSvc *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) *testApp {
	conf := testutil.NewConfig()
	validate, uni := testutil.NewValidator(t)

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	hwRepo := inmemdb.NewHomeworkRepository(db)

	// set up services
	fs := afero.NewMemMapFs()
	store, err := filesvc.NewStore(fs, conf.Storage.UploadDir)
	require.NoError(t, err)
	mailSvc := emailsvc.NewConsoleServiceMock(testutil.NopLogger{}, conf)
	relay := notify.NewRelay(testutil.NopLogger{}, nil)

	// set up server
	app, err := NewServer(&Options{
		TestMode:       conf.TestMode,
		SecretKey:      conf.SecretKey,
		SessionMaxAge:  conf.Server.SessionMaxAge,
		DefaultLocale:  conf.DefaultLocale,
		DisableReqLogs: conf.Server.DisableReqLogs,
		StaticDir:      t.TempDir(),
		Logger:         testutil.NopLogger{},
		Translator:     uni,
		UserSvc:        user.NewService(usrRepo, db, validate),
		LessonSvc:      lesson.NewService(inmemdb.NewLessonRepository(db), db, validate),
		GradeSvc:       grade.NewService(inmemdb.NewGradeRepository(db), usrRepo, db, validate),
		HomeworkSvc:    homework.NewService(hwRepo, usrRepo, db, store, mailSvc, validate),
		Files:          store,
		Relay:          relay,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(app)
	t.Cleanup(func() {
		relay.Close()
		srv.Close()
	})
	return &testApp{srv: srv, usrRepo: usrRepo, hwRepo: hwRepo, fs: fs, relay: relay, mailSvc: mailSvc}
}

// browser keeps cookies and never follows redirects.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (app *testApp) newBrowser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: app.srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type response struct {
	code     int
	location string
	body     string
}

func (b *browser) do(req *http.Request) response {
	b.t.Helper()
	res, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(b.t, err)
	return response{code: res.StatusCode, location: res.Header.Get("Location"), body: string(body)}
}

func (b *browser) get(path string, header ...string) response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postMultipart(path, contentType string, body io.Reader) response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, body)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", contentType)
	return b.do(req)
}

func (b *browser) login(email, pwd string) {
	b.t.Helper()
	res := b.post("/login", url.Values{"email": {email}, "password": {pwd}})
	require.Equal(b.t, http.StatusFound, res.code, res.body)
	require.Equal(b.t, "/dashboard", res.location)
}

type httpTest struct {
	name         string
	method       string
	path         string
	form         url.Values
	wantCode     int
	wantLocation string
	wantBody     []string
	notInBody    []string
}

func (b *browser) run(tt httpTest) response {
	b.t.Helper()
	var res response
	switch tt.method {
	case http.MethodPost:
		res = b.post(tt.path, tt.form)
	case "", http.MethodGet:
		res = b.get(tt.path)
	default:
		req, err := http.NewRequest(tt.method, b.base+tt.path, nil)
		require.NoError(b.t, err)
		res = b.do(req)
	}
	checkResponse(b.t, tt, res)
	return res
}

func checkResponse(t *testing.T, tt httpTest, res response) {
	t.Helper()
	assert.Equal(t, tt.wantCode, res.code, "code")
	if tt.wantLocation != "" {
		assert.Equal(t, tt.wantLocation, res.location, "location")
	}
	for _, s := range tt.wantBody {
		assert.Contains(t, res.body, s)
	}
	for _, s := range tt.notInBody {
		assert.NotContains(t, res.body, s)
	}
}
