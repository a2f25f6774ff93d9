package logsvc

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/user"
)

// RollbarLogger writes to std and reports to Rollbar once enabled.
type RollbarLogger struct {
	std    *log.Logger
	client *rollbar.Client
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	client := rollbar.NewAsync(conf.RollbarToken, conf.Env, conf.Build, conf.Server.Host, "github.com/trezcool/markaz")
	client.SetStackTracer(errors.StackTracer)
	client.SetEnabled(false)
	return &RollbarLogger{std: std, client: client}
}

// Enable turns Rollbar reporting on or off. Reporting without a token is never enabled.
func (l *RollbarLogger) Enable(enabled bool) {
	l.client.SetEnabled(enabled && l.client.Token() != "")
}

// Close flushes pending reports. The logger must not be used afterwards.
func (l *RollbarLogger) Close() {
	_ = l.client.Close()
}

// report carries what one log call sends to Rollbar.
type report struct {
	ctx    context.Context // holds the person, per item so concurrent requests do not mix
	err    error
	extras map[string]interface{}
}

// expected fmt: msg | error, map[string]interface{}, user.User
func (l *RollbarLogger) prepare(msg string, args []interface{}) report {
	rep := report{ctx: context.Background()}
	var usrSet bool
	for _, arg := range args {
		switch a := arg.(type) {
		case user.User:
			if !usrSet && a.ID != 0 { // only set one User
				rep.ctx = rollbar.NewPersonContext(rep.ctx, &rollbar.Person{Id: strconv.Itoa(a.ID), Username: a.Username})
				usrSet = true
			}
		case error:
			if rep.err == nil {
				rep.err = a
			}
		case map[string]interface{}:
			if rep.extras == nil {
				rep.extras = make(map[string]interface{}, len(a)+1)
			}
			for k, v := range a {
				rep.extras[k] = v
			}
		}
	}
	if rep.err != nil {
		if rep.extras == nil {
			rep.extras = make(map[string]interface{}, 1)
		}
		if _, ok := rep.extras["message"]; !ok {
			rep.extras["message"] = msg
		}
	}
	return rep
}

func (l *RollbarLogger) send(level, msg string, args []interface{}) {
	rep := l.prepare(msg, args)
	if rep.err != nil {
		l.client.ErrorWithExtrasAndContext(rep.ctx, level, rep.err, rep.extras)
		return
	}
	l.client.MessageWithExtrasAndContext(rep.ctx, level, msg, rep.extras)
}

func (l *RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s: %s", level, msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case user.User:
			if a.ID != 0 {
				l.std.Printf("\tuser: %d (%s)", a.ID, a.Username)
			}
		case map[string]interface{}:
			keys := make([]string, 0, len(a))
			for k := range a {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				l.std.Printf("\t%s: %s", k, fmt.Sprint(a[k]))
			}
		default:
			l.std.Printf("\t%+v", arg)
		}
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.send(rollbar.DEBUG, msg, args)
	l.print("DEBUG", msg, args)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.send(rollbar.INFO, msg, args)
	l.print("INFO", msg, args)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.send(rollbar.WARN, msg, args)
	l.print("WARN", msg, args)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.send(rollbar.ERR, msg, args)
	l.print("ERROR", msg, args)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.send(rollbar.CRIT, msg, args)
	l.print("FATAL", msg, args)
	l.Close()
	l.std.Fatal(msg)
}
