package neohub

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type charmLogger struct {
	l *log.Logger
}

// NewCharmLogger wraps a charmbracelet logger. Fields added through WithField are
// rendered as key/value pairs.
func NewCharmLogger(l *log.Logger) Logger {
	return &charmLogger{l: l}
}

func defaultLogger() Logger {
	return NewCharmLogger(log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "neohub",
	}))
}

func (c *charmLogger) WithField(key string, value any) Logger {
	return &charmLogger{l: c.l.With(key, value)}
}

func (c *charmLogger) Debug(args ...any) { c.l.Debug(fmt.Sprint(args...)) }

func (c *charmLogger) Debugf(format string, args ...any) { c.l.Debugf(format, args...) }

func (c *charmLogger) Debugln(args ...any) { c.l.Debug(sprintln(args...)) }

func (c *charmLogger) Info(args ...any) { c.l.Info(fmt.Sprint(args...)) }

func (c *charmLogger) Infof(format string, args ...any) { c.l.Infof(format, args...) }

func (c *charmLogger) Infoln(args ...any) { c.l.Info(sprintln(args...)) }

func (c *charmLogger) Warn(args ...any) { c.l.Warn(fmt.Sprint(args...)) }

func (c *charmLogger) Warnf(format string, args ...any) { c.l.Warnf(format, args...) }

func (c *charmLogger) Warnln(args ...any) { c.l.Warn(sprintln(args...)) }

func (c *charmLogger) Error(args ...any) { c.l.Error(fmt.Sprint(args...)) }

func (c *charmLogger) Errorf(format string, args ...any) { c.l.Errorf(format, args...) }

func (c *charmLogger) Errorln(args ...any) { c.l.Error(sprintln(args...)) }

// sprintln keeps Println spacing but drops the trailing newline, which the
// charm formatter would otherwise print as an empty line.
func sprintln(args ...any) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}
