package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/rsned/crafting-optimizer/internal/crafting/engine"
	"github.com/rsned/crafting-optimizer/internal/crafting/httpapi"
	"github.com/rsned/crafting-optimizer/internal/metrics"
	"github.com/rsned/crafting-optimizer/internal/telemetry"
)

func newServeCommand(a *app) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP optimization API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			if address != "" {
				cfg.Server.Address = address
			}

			shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
				Enabled:     cfg.Tracing.Enabled,
				ServiceName: cfg.Tracing.ServiceName,
				Endpoint:    cfg.Tracing.Endpoint,
				Insecure:    cfg.Tracing.Insecure,
			})
			if err != nil {
				return err
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(flushCtx); err != nil {
					a.logger.Warn("failed to flush traces", "error", err)
				}
			}()

			opts := httpapi.Options{
				Address:         cfg.Server.Address,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				IdleTimeout:     cfg.Server.IdleTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				MaxBodyBytes:    cfg.Server.MaxBodyBytes,
				Compression:     cfg.Server.Compression,
				Maintenance:     cfg.Server.Maintenance,
			}
			if cfg.Server.RateLimit.Enabled {
				opts.RequestsPerSecond = cfg.Server.RateLimit.RequestsPerSecond
				opts.Burst = cfg.Server.RateLimit.Burst
			}
			var (
				recorder    engine.Recorder
				httpMetrics httpapi.RequestRecorder
			)
			if cfg.Metrics.Enabled {
				collector := metrics.NewCollector(cfg.Metrics.Namespace)
				if err := collector.Register(); err != nil {
					return err
				}
				recorder, httpMetrics = collector, collector
				opts.MetricsPath = cfg.Metrics.Path
				opts.MetricsHandler = collector.Handler()
			}

			eng, err := a.newEngine(ctx, recorder)
			if err != nil {
				return err
			}

			server := httpapi.NewServer(eng, eng.Catalog().Len(), opts, a.logger, httpMetrics)
			if cfg.Server.Maintenance {
				a.logger.Warn("maintenance mode enabled")
			}
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&address, "addr", "", "Listen address (overrides server.address)")
	return cmd
}
