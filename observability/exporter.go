package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xcoll/lib/infra"
)

type ExporterKind string

const (
	NoneExporter       ExporterKind = "none"
	ConsoleExporter    ExporterKind = "console"
	PrometheusExporter ExporterKind = "prometheus"
)

func (kind ExporterKind) Valid() bool {
	switch kind {
	case NoneExporter, ConsoleExporter, PrometheusExporter:
		return true
	default:
	}
	return false
}

type exporterCfg struct {
	interval time.Duration
	timeout  time.Duration
	writer   io.Writer
	registry promclient.Registerer
}

type ExporterOption func(cfg *exporterCfg)

// WithExportInterval sets the push period of the console exporter.
func WithExportInterval(interval, timeout time.Duration) ExporterOption {
	return func(cfg *exporterCfg) {
		cfg.interval = interval
		cfg.timeout = timeout
	}
}

// WithConsoleWriter redirects the console exporter, os.Stdout by default.
func WithConsoleWriter(w io.Writer) ExporterOption {
	return func(cfg *exporterCfg) {
		cfg.writer = w
	}
}

// WithPrometheusRegisterer registers the prometheus collector on reg instead
// of the prometheus default registerer.
func WithPrometheusRegisterer(reg promclient.Registerer) ExporterOption {
	return func(cfg *exporterCfg) {
		cfg.registry = reg
	}
}

// InstallMeterProvider sets the global otel meter provider backed by the
// exporter of kind. The returned callback flushes and shuts it down.
func InstallMeterProvider(kind ExporterKind, opts ...ExporterOption) (func(ctx context.Context) error, error) {
	cfg := &exporterCfg{
		interval: 10 * time.Second,
		timeout:  5 * time.Second,
	}
	for _, o := range opts {
		o(cfg)
	}
	switch kind {
	case ConsoleExporter:
		stdOpts := []stdoutmetric.Option{stdoutmetric.WithPrettyPrint()}
		if cfg.writer != nil {
			stdOpts = append(stdOpts, stdoutmetric.WithWriter(cfg.writer))
		}
		return newConsoleMetricsExporter(cfg.interval, cfg.timeout, stdOpts...)
	case PrometheusExporter:
		var promOpts []prometheus.Option
		if cfg.registry != nil {
			promOpts = append(promOpts, prometheus.WithRegisterer(cfg.registry))
		}
		return newPrometheusMetricsExporter(promOpts...)
	case NoneExporter:
		return func(ctx context.Context) error { return nil }, nil
	default:
	}
	return nil, infra.NewErrorStack("[observability] unknown metrics exporter " + string(kind))
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] console exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter(opts ...prometheus.Option) (func(ctx context.Context) error, error) {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] prometheus exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}
