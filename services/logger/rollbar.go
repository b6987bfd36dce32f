package logsvc

import (
	"log"
	"strconv"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/user"
)

// RollbarLogger writes every entry to a standard logger and reports it to Rollbar.
// Reporting is off without a token and in debug or test mode.
//
// Args may hold errors, extra values and at most one user.User: the acting user
// becomes the Rollbar person of the report.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !(conf.Debug || conf.TestMode))
	return &RollbarLogger{std: std}
}

// Close waits for the pending reports to be sent.
func (l RollbarLogger) Close() {
	rollbar.Close()
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.log(rollbar.INFO, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.log(rollbar.WARN, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Close()
	l.std.Fatal(msg)
}

func (l RollbarLogger) log(level, msg string, args []interface{}) {
	usr, extras := splitUser(args)
	if usr.ID != 0 {
		rollbar.SetPerson(strconv.Itoa(usr.ID), usr.FullName(), usr.Email)
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Log(level, append([]interface{}{msg}, extras...)...)

	l.std.Println(strings.ToUpper(level) + ": " + msg)
	if usr.ID != 0 {
		l.std.Printf("user: %d <%s>\n", usr.ID, usr.Email)
	}
	for _, arg := range extras {
		l.std.Printf("%+v\n", arg)
	}
}

// splitUser takes the first known user out of args.
func splitUser(args []interface{}) (user.User, []interface{}) {
	var usr user.User
	extras := make([]interface{}, 0, len(args))
	for _, arg := range args {
		if u, ok := arg.(user.User); ok {
			if usr.ID == 0 {
				usr = u
			}
			continue
		}
		extras = append(extras, arg)
	}
	return usr, extras
}
