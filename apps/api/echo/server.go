package echoapi

import (
	"context"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/grade"
	"github.com/trezcool/shkola/core/homework"
	"github.com/trezcool/shkola/core/lesson"
	"github.com/trezcool/shkola/core/notify"
	"github.com/trezcool/shkola/core/user"
	"github.com/trezcool/shkola/services/files"
)

type (
	Options struct {
		Address        string
		Debug          bool
		TestMode       bool
		SecretKey      string
		SessionMaxAge  time.Duration
		DefaultLocale  core.Locale
		DisableReqLogs bool
		StaticDir      string

		Logger     core.Logger
		Translator *ut.UniversalTranslator
		Registry   *prometheus.Registry // nil: a new one is created

		UserSvc     *user.Service
		LessonSvc   *lesson.Service
		GradeSvc    *grade.Service
		HomeworkSvc *homework.Service
		Files       *filesvc.Store
		Relay       *notify.Relay

		// Shutdown is called when a handler fails with a core shutdown error.
		Shutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		renderer *renderer
		metrics  *metrics
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) (Server, error) {
	rdr, err := newRenderer(opts.Translator)
	if err != nil {
		return nil, errors.Wrap(err, "parsing templates")
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Shutdown == nil {
		opts.Shutdown = func() {}
	}

	s := &server{
		opts:     opts,
		app:      echo.New(),
		renderer: rdr,
		metrics:  newMetrics(opts.Registry),
	}
	s.setup()
	return s, nil
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.opts.Debug
	s.app.Renderer = s.renderer
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Shutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.opts.Debug || s.opts.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.metrics.middleware)
	s.app.Use(session.Middleware(s.cookieStore()))
	s.app.Use(loadSession(s.opts.DefaultLocale))

	s.app.Static("/static", s.opts.StaticDir)
	s.app.GET("/metrics", echo.WrapHandler(s.metrics.handler()))

	registerUserAPI(s.app, s.opts.UserSvc)
	registerLessonAPI(s.app, s.opts.UserSvc, s.opts.LessonSvc)
	registerGradeAPI(s.app, s.opts.UserSvc, s.opts.GradeSvc)
	registerHomeworkAPI(s.app, s.opts.UserSvc, s.opts.HomeworkSvc, s.opts.Files)
	registerNotificationAPI(s.app, s.opts.Relay, s.opts.Logger)
}

func (s *server) cookieStore() sessions.Store {
	store := sessions.NewCookieStore([]byte(s.opts.SecretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(s.opts.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   !(s.opts.Debug || s.opts.TestMode),
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(store.Options.MaxAge)
	return store
}

func (s *server) Start() error {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "starting server")
	}
	return nil
}

// Stop disconnects the notification clients, then shuts the HTTP server down gracefully.
func (s *server) Stop(ctx context.Context) error {
	if s.opts.Relay != nil {
		s.opts.Relay.Close()
	}
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
