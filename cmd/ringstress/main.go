// File: cmd/ringstress/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ringstress hammers one overwrite ring with concurrent writers and checks
// that every completed Add advanced the cursor exactly once.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/momentics/hioload-ring/control"
	"github.com/momentics/hioload-ring/internal/stress"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ringstress:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("ringstress", pflag.ContinueOnError)
	control.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := control.LoadConfig(fs)
	if err != nil {
		return err
	}

	log, err := control.NewLogger(cfg.LogLevel, cfg.Production)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	probes := control.NewDebugProbes()
	control.RegisterPlatformProbes(probes)

	opts := stress.OptionsFromConfig(cfg)
	opts.Registerer = reg
	opts.Probes = probes

	res, err := stress.Run(ctx, opts, log)
	if err != nil {
		return err
	}

	log.Info("result",
		zap.Int64("adds", res.Adds),
		zap.Int64("reservations", res.Reservations),
		zap.Int64("cas_retries", res.Retries),
		zap.Uint64("cursor", res.Cursor),
		zap.Uint64("expected_cursor", res.ExpectedCursor),
		zap.Int64s("snapshot_head", res.Head),
		zap.Any("allocator", res.Allocator),
		zap.Any("executor", res.Executor),
		zap.Float64("adds_per_sec", float64(res.Adds)/res.Duration.Seconds()))
	log.Debug("probes", zap.Any("state", probes.DumpState()))

	return res.Verify()
}
