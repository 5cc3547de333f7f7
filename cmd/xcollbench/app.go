package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/benz9527/xcoll/bench"
	"github.com/benz9527/xcoll/lib/infra"
	"github.com/benz9527/xcoll/observability"
	"github.com/benz9527/xcoll/xlog"
)

const appName = "xcollbench"

// meterShutdown flushes the installed meter provider.
type meterShutdown func(ctx context.Context) error

func newLogger(cfg *bench.Config) xlog.XLogger {
	opts := []xlog.XLoggerOption{
		xlog.WithXLoggerStdOutWriter(),
		xlog.WithXLoggerLevelText(cfg.LogLevel),
		xlog.WithXLoggerContextFieldExtract(bench.ContextKindField, "kind"),
	}
	if cfg.LogPlain {
		opts = append(opts, xlog.WithXLoggerEncoder(xlog.PlainText))
	}
	logger := xlog.NewXLogger(opts...)
	logger.Banner(xcollBanner{})
	return logger
}

func newMeterProvider(lc fx.Lifecycle, cfg *bench.Config, logger xlog.XLogger) (meterShutdown, error) {
	var opts []observability.ExporterOption
	registry := promclient.NewRegistry()
	if cfg.Exporter == observability.PrometheusExporter {
		opts = append(opts, observability.WithPrometheusRegisterer(registry))
	}
	shutdown, err := observability.InstallMeterProvider(cfg.Exporter, opts...)
	if err != nil {
		return nil, err
	}

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := observability.InitAppStats(ctx, appName, nil); err != nil {
				return err
			}
			if srv == nil {
				return nil
			}
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return infra.WrapErrorStackWithMessage(err, "[xcollbench] metrics listen")
			}
			logger.Info("metrics endpoint started", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.ErrorStack(infra.WrapErrorStack(err), "metrics endpoint stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if srv != nil {
				if err := srv.Shutdown(ctx); err != nil {
					logger.Warn("metrics endpoint shutdown", zap.Error(err))
				}
			}
			return shutdown(ctx)
		},
	})
	return shutdown, nil
}

// newRunner depends on meterShutdown so that the workload instruments are
// created on the installed provider.
func newRunner(lc fx.Lifecycle, cfg *bench.Config, logger xlog.XLogger, _ meterShutdown) (*bench.Runner, error) {
	r, err := bench.NewRunner(cfg,
		bench.WithRunnerLogger(logger),
		bench.WithRunnerStats(appName),
	)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(r.Release))
	return r, nil
}

// runBench starts the run in the background and shuts the application down
// once it is over. A failed run exits with code 1.
func runBench(lc fx.Lifecycle, shutdowner fx.Shutdowner, r *bench.Runner, logger xlog.XLogger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				code := 0
				summary, err := r.Run(ctx)
				if err == nil {
					err = summary.Err()
				}
				if err != nil {
					logger.ErrorStack(err, "benchmark failed")
					code = 1
				}
				if err = shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					logger.Warn("unable to shut down", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			return nil
		},
	})
}

func appOptions(cfg *bench.Config) []fx.Option {
	return []fx.Option{
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newMeterProvider,
			newRunner,
		),
		fx.Invoke(runBench),
	}
}
