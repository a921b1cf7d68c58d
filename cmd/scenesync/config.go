package main

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/goliatone/go-scenesync/pkg/fate"
)

// memoryStore selects the in-process object store.
const memoryStore = "memory"

// Config is read from SCENESYNC_* variables; flags override it.
type Config struct {
	Scene       string `env:"SCENE" envDefault:"default"`
	Store       string `env:"STORE" envDefault:"scene.db"`
	Settings    string `env:"SETTINGS" envDefault:"settings.db"`
	Journal     string `env:"JOURNAL"`
	Campaign    string `env:"CAMPAIGN" envDefault:"campaign.yaml"`
	Engine      string `env:"ENGINE" envDefault:"expr"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	Actor       string `env:"ACTOR"`
	MetricsFile string `env:"METRICS_FILE"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "SCENESYNC_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Journal == "" {
		cfg.Journal = fate.DefaultJournal
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Scene) == "" {
		return fmt.Errorf("scene is required")
	}
	if strings.TrimSpace(c.Store) == "" {
		return fmt.Errorf("store is required")
	}
	return nil
}
