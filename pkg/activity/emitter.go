package activity

import (
	"context"
	"strings"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "scenesync"

// Config controls emitter defaults.
type Config struct {
	Enabled bool
	Channel string
	ActorID string
}

// Emitter forwards events to hooks, filling in configured defaults.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	actorID string
}

// NewEmitter builds an emitter. It is disabled when cfg.Enabled is false or
// no usable hooks are supplied.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	compact := hooks.Compact()
	return &Emitter{
		hooks:   compact,
		enabled: cfg.Enabled && len(compact) > 0,
		channel: channel,
		actorID: strings.TrimSpace(cfg.ActorID),
	}
}

// Enabled reports whether Emit does anything.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit forwards the event after applying the default channel and actor.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.actorID
	}
	return e.hooks.Notify(ctx, event)
}

// EmitAll emits events in order and returns the first failure.
func (e *Emitter) EmitAll(ctx context.Context, events []Event) error {
	if !e.Enabled() {
		return nil
	}
	for _, event := range events {
		if err := e.Emit(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
