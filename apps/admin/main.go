package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/user"
	"github.com/trezcool/shkola/storage/database"
	"github.com/trezcool/shkola/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)
	if conf.Database.InMemory() {
		errAndDie(errors.New("the admin commands need a PostgreSQL database (database.engine=postgres)"))
	}

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	validate := validator.New()
	uni, err := core.NewTranslator()
	errAndDie(err)
	errAndDie(core.InitValidators(validate, uni))

	// start CLI
	cli := commandLine{
		db:     db,
		usrSvc: user.NewService(sqlxrepos.NewUserRepository(db), database.NewTransactor(db), validate),
		trans:  core.Translator(uni, core.LocaleEN),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
