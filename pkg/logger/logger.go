package logger

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Cron adapts an slog.Logger to cron.Logger. Cron's routine chatter goes to debug.
type Cron struct {
	log *slog.Logger
}

var _ cron.Logger = Cron{}

// NewCron returns a cron logger writing through l; a nil l discards everything.
func NewCron(l *slog.Logger) cron.Logger {
	if l == nil {
		return cron.DiscardLogger
	}
	return Cron{log: l}
}

// Info logs routine scheduling events.
func (c Cron) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug(msg, keysAndValues...)
}

// Error logs failures such as recovered job panics.
func (c Cron) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error(msg, append(keysAndValues, "error", err)...)
}
