// Package logsvc implements core.Logger.
package logsvc

import (
	"log"
	"strconv"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/classpig/backend/core"
	"github.com/classpig/backend/core/user"
)

// RollbarLogger prints to a std logger and reports every entry to Rollbar when enabled.
// Entries may carry an error, a map[string]interface{} of extras and the user.User they relate to.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger configures the Rollbar client. Reporting starts disabled unless a token is set.
func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "")
	return &RollbarLogger{std: std}
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Close blocks until queued reports are sent.
func (l *RollbarLogger) Close() {
	rollbar.Close()
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, msg, args) }
func (l *RollbarLogger) Info(msg string, args ...interface{})  { l.log(rollbar.INFO, msg, args) }
func (l *RollbarLogger) Warn(msg string, args ...interface{})  { l.log(rollbar.WARN, msg, args) }
func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, msg, args) }

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Close()
	l.std.Fatal(msg)
}

func (l *RollbarLogger) log(level, msg string, args []interface{}) {
	usr, rest := splitUser(args)
	if usr.ID != 0 {
		rollbar.SetPerson(strconv.Itoa(usr.ID), usr.Username, "")
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Log(level, append([]interface{}{msg}, rest...)...)

	l.std.Printf("%s: %s", strings.ToUpper(level), msg)
	for _, arg := range rest {
		l.std.Printf("%+v\n", arg)
	}
}

// splitUser pulls the first user.User out of args. Users are reported as the Rollbar person, never printed.
func splitUser(args []interface{}) (user.User, []interface{}) {
	var usr user.User
	rest := make([]interface{}, 0, len(args))
	for _, arg := range args {
		if u, ok := arg.(user.User); ok {
			if usr.ID == 0 {
				usr = u
			}
			continue
		}
		rest = append(rest, arg)
	}
	return usr, rest
}
