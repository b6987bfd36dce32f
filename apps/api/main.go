package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/trezcool/shkola/apps/api/echo"
	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/grade"
	"github.com/trezcool/shkola/core/homework"
	"github.com/trezcool/shkola/core/lesson"
	"github.com/trezcool/shkola/core/notify"
	"github.com/trezcool/shkola/core/user"
	"github.com/trezcool/shkola/services/email"
	"github.com/trezcool/shkola/services/files"
	"github.com/trezcool/shkola/services/logger"
	"github.com/trezcool/shkola/storage/database"
	"github.com/trezcool/shkola/storage/database/inmem"
	"github.com/trezcool/shkola/storage/database/sqlx"
)

type repositories struct {
	tx       core.Transactor
	users    user.Repository
	lessons  lesson.Repository
	grades   grade.Repository
	homework homework.Repository
	close    func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// set up loggers
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)
	defer logger.Close()
	if conf.SecretGenerated {
		logger.Warn("no secret key configured: sessions will not survive a restart")
	}

	// set up DB
	repos, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err := repos.close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	validate := validator.New()
	uni, err := core.NewTranslator()
	if err != nil {
		logger.Fatal("creating translator", err)
	}
	if err = core.InitValidators(validate, uni); err != nil {
		logger.Fatal("registering validators", err)
	}

	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridAPIKey == "" {
		mailSvc = emailsvc.NewConsoleService(log.New(os.Stdout, "MAIL : ", log.LstdFlags), logger, conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	store, err := filesvc.NewStore(afero.NewOsFs(), conf.Storage.UploadDir)
	if err != nil {
		logger.Fatal("opening upload store", err)
	}

	registry := prometheus.NewRegistry()
	relay := notify.NewRelay(logger, echoapi.NewRelayObserver(registry))

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	if conf.Server.DebugHost != "" {
		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)
		expvar.Publish("notificationClients", expvar.Func(func() interface{} { return relay.Len() }))

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()
	}

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server, err := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Address,
		Debug:          conf.Debug,
		TestMode:       conf.TestMode,
		SecretKey:      conf.SecretKey,
		SessionMaxAge:  conf.Server.SessionMaxAge,
		DefaultLocale:  conf.DefaultLocale,
		DisableReqLogs: conf.Server.DisableReqLogs,
		StaticDir:      conf.Storage.StaticDir,
		Logger:         logger,
		Translator:     uni,
		Registry:       registry,
		UserSvc:        user.NewService(repos.users, repos.tx, validate),
		LessonSvc:      lesson.NewService(repos.lessons, repos.tx, validate),
		GradeSvc:       grade.NewService(repos.grades, repos.users, repos.tx, validate),
		HomeworkSvc:    homework.NewService(repos.homework, repos.users, repos.tx, store, mailSvc, validate),
		Files:          store,
		Relay:          relay,
		Shutdown:       func() { shutdown <- syscall.SIGTERM },
	})
	if err != nil {
		logger.Fatal("creating server", err)
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API listening on " + conf.Server.Address)
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if err != nil {
			logger.Error(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB(conf *core.Config) (repositories, error) {
	if conf.Database.InMemory() {
		db := inmemdb.Open()
		return repositories{
			tx:       db,
			users:    inmemdb.NewUserRepository(db),
			lessons:  inmemdb.NewLessonRepository(db),
			grades:   inmemdb.NewGradeRepository(db),
			homework: inmemdb.NewHomeworkRepository(db),
			close:    func() error { return nil },
		}, nil
	}

	db, err := database.Open(conf)
	if err != nil {
		return repositories{}, err
	}
	if conf.Database.AutoMigrate {
		if err = database.Migrate(context.Background(), db, "up"); err != nil {
			_ = db.Close()
			return repositories{}, err
		}
	}
	return sqlRepositories(db), nil
}

func sqlRepositories(db *sqlx.DB) repositories {
	return repositories{
		tx:       database.NewTransactor(db),
		users:    sqlxrepos.NewUserRepository(db),
		lessons:  sqlxrepos.NewLessonRepository(db),
		grades:   sqlxrepos.NewGradeRepository(db),
		homework: sqlxrepos.NewHomeworkRepository(db),
		close:    db.Close,
	}
}
