package scenesync

import (
	"time"

	"github.com/goliatone/go-scenesync/pkg/activity"
)

// Option configures a Syncer.
type Option func(*syncConfig)

type syncConfig struct {
	logger         SyncLogger
	metrics        *Metrics
	activityHooks  activity.Hooks
	activityConfig activity.Config
	now            func() time.Time
}

func applyOptions(opts []Option) syncConfig {
	cfg := syncConfig{
		logger:         noopSyncLogger{},
		activityConfig: activity.Config{Enabled: true},
		now:            time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithLogger attaches a pass logger. A nil logger disables logging.
func WithLogger(logger SyncLogger) Option {
	return func(cfg *syncConfig) {
		if logger == nil {
			cfg.logger = noopSyncLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithMetrics records pass outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(cfg *syncConfig) {
		cfg.metrics = m
	}
}

// WithActivityHooks attaches activity hooks. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	compact := hooks.Compact()
	return func(cfg *syncConfig) {
		cfg.activityHooks = compact
	}
}

// WithActivityConfig overrides the emitter configuration (channel, actor,
// enabled flag). An empty ActorID keeps the actor set by WithActor.
func WithActivityConfig(c activity.Config) Option {
	return func(cfg *syncConfig) {
		if c.ActorID == "" {
			c.ActorID = cfg.activityConfig.ActorID
		}
		cfg.activityConfig = c
	}
}

// WithActor stamps emitted activity events with actorID.
func WithActor(actorID string) Option {
	return func(cfg *syncConfig) {
		cfg.activityConfig.ActorID = actorID
	}
}

// WithClock replaces the time source used for durations and event stamps.
func WithClock(now func() time.Time) Option {
	return func(cfg *syncConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}
