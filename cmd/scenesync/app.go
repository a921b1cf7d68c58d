package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/containerd/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-scenesync"
	"github.com/goliatone/go-scenesync/pkg/activity"
	"github.com/goliatone/go-scenesync/pkg/fate"
	"github.com/goliatone/go-scenesync/pkg/format"
	"github.com/goliatone/go-scenesync/pkg/settings"
	"github.com/goliatone/go-scenesync/pkg/store/memory"
	"github.com/goliatone/go-scenesync/pkg/store/sqlite"
)

// app holds the opened stores of one invocation.
type app struct {
	cfg      Config
	table    *fate.Table
	syncer   *scenesync.Syncer
	resolver *settings.Resolver
	registry *prometheus.Registry
	closers  []io.Closer
}

func openApp(ctx context.Context, cfg Config, prompter fate.Prompter) (*app, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}

	var objects scenesync.ObjectStore
	if cfg.Store == memoryStore {
		objects = memory.New()
	} else {
		db, err := sqlite.Open(cfg.Store)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		objects = db
	}

	var pages settings.Store
	if cfg.Settings == memoryStore {
		pages = settings.NewMemoryStore()
	} else {
		bolt, err := settings.OpenBolt(cfg.Settings)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, bolt)
		pages = bolt
	}
	a.resolver = settings.NewResolver(pages, cfg.Journal)

	campaign, err := fate.OpenFileCampaign(cfg.Campaign)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	metrics, err := scenesync.NewMetrics(a.registry)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.syncer = scenesync.NewSyncer(objects,
		scenesync.WithLogger(scenesync.ContainerdLogger{}),
		scenesync.WithMetrics(metrics),
		scenesync.WithActor(cfg.Actor),
		scenesync.WithActivityHooks(activity.Hooks{activity.HookFunc(logActivity)}),
	)

	formatter, err := format.New(
		format.WithEngine(cfg.Engine),
		format.WithLogger(format.EntryLogger(ctx)),
	)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.table, err = fate.NewTable(cfg.Scene, campaign, a.syncer, a.resolver,
		fate.WithFormatter(formatter),
		fate.WithPrompter(prompter),
	)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	return a, nil
}

// Close flushes metrics and closes the stores.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.G(ctx).WithError(err).Warn("close")
		return err
	}
	return nil
}

func logActivity(ctx context.Context, event activity.Event) error {
	log.G(ctx).WithFields(log.Fields{
		"verb":   event.Verb,
		"object": event.ObjectType + ":" + event.ObjectID,
		"scene":  event.Scene,
	}).Debug("activity")
	return nil
}
