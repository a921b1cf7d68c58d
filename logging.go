package scenesync

import (
	"context"
	"time"

	"github.com/containerd/log"
)

// SyncLogEvent describes a reconciliation pass for logging.
type SyncLogEvent struct {
	Scene     string
	Group     Tag
	Mode      string
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
	Duration  time.Duration
	Err       error
}

// SyncLogger records pass events.
type SyncLogger interface {
	LogSync(context.Context, SyncLogEvent)
}

// SyncLoggerFunc adapts a function to SyncLogger.
type SyncLoggerFunc func(context.Context, SyncLogEvent)

// LogSync implements SyncLogger.
func (f SyncLoggerFunc) LogSync(ctx context.Context, event SyncLogEvent) {
	if f != nil {
		f(ctx, event)
	}
}

type noopSyncLogger struct{}

func (noopSyncLogger) LogSync(context.Context, SyncLogEvent) {}

// ContainerdLogger writes pass events through github.com/containerd/log,
// using the entry stored in the context when there is one.
type ContainerdLogger struct{}

// LogSync implements SyncLogger.
func (ContainerdLogger) LogSync(ctx context.Context, event SyncLogEvent) {
	entry := log.G(ctx).WithFields(log.Fields{
		"scene":     event.Scene,
		"group":     event.Group.String(),
		"mode":      event.Mode,
		"created":   event.Created,
		"updated":   event.Updated,
		"deleted":   event.Deleted,
		"unchanged": event.Unchanged,
		"duration":  event.Duration,
	})
	if event.Err != nil {
		if IsCancelled(event.Err) {
			entry.Debug("reconciliation pass cancelled")
			return
		}
		entry.WithError(event.Err).Error("reconciliation pass failed")
		return
	}
	if event.Created+event.Updated+event.Deleted == 0 {
		entry.Debug("reconciliation pass converged")
		return
	}
	entry.Info("reconciliation pass applied")
}
