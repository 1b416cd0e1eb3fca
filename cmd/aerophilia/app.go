package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/aerophilia/aerophilia-go/internal/client"
	"github.com/aerophilia/aerophilia-go/internal/config"
	"github.com/aerophilia/aerophilia-go/internal/logging"
	"github.com/aerophilia/aerophilia-go/internal/metrics"
	"github.com/aerophilia/aerophilia-go/internal/session"
	"github.com/aerophilia/aerophilia-go/internal/storage"
)

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	store    storage.Store
	api      *client.Client
	registry *prometheus.Registry
	session  *session.Manager
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Dev: cfg.LogDev})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	store, err := storage.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	api := client.New(cfg.APIBaseURL,
		client.WithLogger(log.Named("client")),
		client.WithRateLimit(cfg.AuthRateLimit, cfg.AuthRateBurst),
	)

	registry := prometheus.NewRegistry()
	mgr := session.New(api, store,
		session.WithLogger(log.Named("session")),
		session.WithMetrics(metrics.NewCollector(registry)),
		session.WithTimeout(cfg.RequestTimeout),
	)
	if err := mgr.Init(ctx); err != nil {
		log.Warn("starting without a stored session", zap.Error(err))
	}

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		api:      api,
		registry: registry,
		session:  mgr,
	}, nil
}

// writeMetrics dumps the registry in the Prometheus text format.
func (a *app) writeMetrics(w io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) close() {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("closing store", zap.Error(err))
		}
	}
	a.log.Sync()
}
