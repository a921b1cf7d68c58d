package fate

import (
	"context"

	"github.com/containerd/log"
)

// NewSceneSetup is the answer to the new-scene prompt.
type NewSceneSetup struct {
	PlayerCount int
	// Keep lists the names of the situation aspects carried over.
	Keep []string
}

// Prompter asks the table owner for input. Returning scenesync.ErrCancelled
// aborts the operation silently.
type Prompter interface {
	NewScene(ctx context.Context, current []SituationAspect) (NewSceneSetup, error)
	Confirm(ctx context.Context, message string) (bool, error)
}

// StaticPrompter answers every prompt with fixed values.
type StaticPrompter struct {
	Setup     NewSceneSetup
	Confirmed bool
	Err       error
}

func (p StaticPrompter) NewScene(context.Context, []SituationAspect) (NewSceneSetup, error) {
	return p.Setup, p.Err
}

func (p StaticPrompter) Confirm(context.Context, string) (bool, error) {
	return p.Confirmed, p.Err
}

// Notifier reports progress to the table owner.
type Notifier interface {
	Info(ctx context.Context, msg string)
	Warn(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// LogNotifier writes notifications to the context logger.
type LogNotifier struct{}

func (LogNotifier) Info(ctx context.Context, msg string)  { log.G(ctx).Info(msg) }
func (LogNotifier) Warn(ctx context.Context, msg string)  { log.G(ctx).Warn(msg) }
func (LogNotifier) Error(ctx context.Context, msg string) { log.G(ctx).Error(msg) }

// Notice is one recorded notification.
type Notice struct {
	Level string
	Msg   string
}

// CaptureNotifier records notifications in memory.
type CaptureNotifier struct {
	Notices []Notice
}

func (c *CaptureNotifier) Info(_ context.Context, msg string) {
	c.Notices = append(c.Notices, Notice{Level: "info", Msg: msg})
}

func (c *CaptureNotifier) Warn(_ context.Context, msg string) {
	c.Notices = append(c.Notices, Notice{Level: "warn", Msg: msg})
}

func (c *CaptureNotifier) Error(_ context.Context, msg string) {
	c.Notices = append(c.Notices, Notice{Level: "error", Msg: msg})
}

// Levels returns the recorded levels in order.
func (c *CaptureNotifier) Levels() []string {
	out := make([]string, len(c.Notices))
	for i, n := range c.Notices {
		out[i] = n.Level
	}
	return out
}
