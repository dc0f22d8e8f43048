package main

import (
	"fmt"

	"charm.land/log/v2"

	"github.com/stillhq/sadb-tools/internal/appstream"
	"github.com/stillhq/sadb-tools/internal/config"
	"github.com/stillhq/sadb-tools/internal/fetch"
	"github.com/stillhq/sadb-tools/internal/logging"
)

// env is what most commands need: the loaded config and a logger.
type env struct {
	cfg    *config.Config
	logger *log.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.New(level)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

func (e *env) fetcher() *fetch.Fetcher {
	return fetch.New(
		fetch.WithTimeout(e.cfg.HTTP.Timeout),
		fetch.WithRetries(e.cfg.HTTP.Retries),
		fetch.WithRateLimit(e.cfg.HTTP.RequestsPerSec, 1),
	)
}

// pool loads the configured AppStream collections plus any extra paths.
func (e *env) pool(extra []string) (*appstream.Pool, error) {
	paths := append(append([]string(nil), e.cfg.AppStream.Paths...), extra...)
	pool := appstream.NewPool()
	n, err := pool.Load(paths...)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("no AppStream collections found (looked in %v)", paths)
	}
	e.logger.Debug("loaded appstream", "files", n, "components", pool.Len())
	return pool, nil
}
