package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	leven "github.com/canisaugustinus/latin-leven"
	"github.com/canisaugustinus/latin-leven/prommetrics"
	"github.com/canisaugustinus/latin-leven/server"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer search requests on stdin/stdout",
		Long: `Load the dictionary and answer requests read from stdin, writing
responses to stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			collector := prommetrics.New()
			if err := collector.Register(reg); err != nil {
				return err
			}

			alpha, keys, err := loadDictionary(ctx, cfg, logger)
			if err != nil {
				return err
			}
			idx, err := newIndex(cfg, cfg.Costs, alpha, keys, logger, leven.WithMetricsCollector(collector))
			if err != nil {
				return err
			}
			defer idx.Close()
			suggest, err := newIndex(cfg, cfg.Suggest.Costs, alpha, keys, logger, leven.WithMetricsCollector(collector))
			if err != nil {
				return err
			}
			defer suggest.Close()
			collector.SetEntries(idx.Len())

			if metricsAddr != "" {
				shutdown := serveMetrics(metricsAddr, reg, logger)
				defer shutdown()
			}

			srv := server.New(idx, alpha,
				server.WithSuggestIndex(suggest),
				server.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
				server.WithCodec(cfg.Codec()),
				server.WithConfig(cfg.ServerLimits()),
				server.WithLogger(logger.Logger),
			)
			if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("server stopped", "requests", srv.Requests())
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().String("codec", "", "wire codec: json or msgpack")
	_ = v.BindPFlag("codec", cmd.Flags().Lookup("codec"))
	return cmd
}

// serveMetrics exposes reg on /metrics and returns a shutdown func.
func serveMetrics(addr string, reg *prometheus.Registry, logger *leven.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	hs := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(ctx)
	}
}
