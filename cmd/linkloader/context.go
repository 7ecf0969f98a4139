package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Belphemur/MovieLinks/internal/config"
	"github.com/Belphemur/MovieLinks/internal/metrics"
	"github.com/Belphemur/MovieLinks/internal/reporting"
)

// commandContext carries state shared by every subcommand of one invocation.
type commandContext struct {
	configFlag string

	cfg           *config.Config
	metricsServer *http.Server
	flushSentry   func()
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Init(strings.TrimSpace(c.configFlag))
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// start brings up the optional services configured for a run.
func (c *commandContext) start() error {
	cfg := c.cfg
	logger := config.GetLogger()

	flush, err := reporting.Init(cfg.Sentry.DSN, cfg.Sentry.Environment, version)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialise Sentry, continuing without it")
	} else {
		c.flushSentry = flush
	}

	if cfg.Metrics.Enabled {
		srv := metrics.NewHTTPServer(cfg.Metrics.Address, cfg.Metrics.Port)
		c.metricsServer = srv
		go func() {
			logger.Info().Str("address", srv.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Failed to serve metrics")
			}
		}()
	}
	return nil
}

// close stops what start brought up. It is safe to call when start never ran.
func (c *commandContext) close() {
	if c.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			logger := config.GetLogger()
			logger.Error().Err(err).Msg("Failed to shutdown metrics server")
		}
		c.metricsServer = nil
	}
	if c.flushSentry != nil {
		c.flushSentry()
		c.flushSentry = nil
	}
}
