package format

import (
	"context"
	"time"

	"github.com/containerd/log"
)

// LogEvent describes an evaluation attempt.
type LogEvent struct {
	Engine   string
	Expr     string
	Site     Site
	Duration time.Duration
	Err      error
}

// Logger records evaluation events.
type Logger interface {
	LogEvaluation(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogEvaluation implements Logger.
func (f LoggerFunc) LogEvaluation(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvaluation(LogEvent) {}

// EntryLogger logs failed evaluations at warn level and successful ones at
// trace level through containerd/log.
func EntryLogger(ctx context.Context) Logger {
	return LoggerFunc(func(event LogEvent) {
		entry := log.G(ctx).WithFields(log.Fields{
			"engine":   event.Engine,
			"expr":     event.Expr,
			"scene":    event.Site.Scene,
			"tag":      event.Site.Tag,
			"setting":  event.Site.Setting,
			"duration": event.Duration,
		})
		if event.Err != nil {
			entry.WithError(event.Err).Warn("template evaluation failed")
			return
		}
		entry.Trace("template evaluated")
	})
}
