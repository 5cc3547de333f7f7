package bench

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/benz9527/xcoll/observability"
)

type Kind string

const (
	OrderedMapKind Kind = "ordered-map"
	OrderedSetKind Kind = "ordered-set"
	HashMapKind    Kind = "hash-map"
	HashSetKind    Kind = "hash-set"
	ArrayListKind  Kind = "array-list"
	LinkedListKind Kind = "linked-list"
)

var AllKinds = []Kind{
	OrderedMapKind,
	OrderedSetKind,
	HashMapKind,
	HashSetKind,
	ArrayListKind,
	LinkedListKind,
}

func (k Kind) String() string {
	return string(k)
}

// Config drives one benchmark run.
type Config struct {
	Kinds       []Kind
	Ops         int
	KeySpace    int
	Seed        uint64
	CheckEvery  int
	Workers     int
	Exporter    observability.ExporterKind
	MetricsAddr string
	LogLevel    string
	LogPlain    bool
}

func DefaultConfig() *Config {
	return &Config{
		Kinds:      AllKinds,
		Ops:        100_000,
		KeySpace:   4096,
		Seed:       1,
		CheckEvery: 1000,
		Workers:    len(AllKinds),
		Exporter:   observability.NoneExporter,
		LogLevel:   "INFO",
	}
}

// NewConfigFromArgs parses args, without the program name, on top of
// DefaultConfig and validates the result.
func NewConfigFromArgs(args []string) (*Config, error) {
	cfg := DefaultConfig()
	fs := pflag.NewFlagSet("xcollbench", pflag.ContinueOnError)
	kinds := fs.StringSlice("kinds", lo.Map(AllKinds, func(k Kind, _ int) string { return k.String() }),
		"containers to exercise: "+strings.Join(lo.Map(AllKinds, func(k Kind, _ int) string { return k.String() }), ", "))
	fs.IntVarP(&cfg.Ops, "ops", "n", cfg.Ops, "operations per container")
	fs.IntVar(&cfg.KeySpace, "key-space", cfg.KeySpace, "keys are drawn from [0, key-space)")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed, a container kind derives its own stream from it")
	fs.IntVar(&cfg.CheckEvery, "check-every", cfg.CheckEvery, "full verification period in operations, 0 disables the periodic check")
	fs.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "worker pool size")
	exporter := fs.String("metrics", string(cfg.Exporter), "metrics exporter: none, console or prometheus")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "prometheus scrape address, like :9464")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "DEBUG, INFO, WARN or ERROR")
	fs.BoolVar(&cfg.LogPlain, "log-plain", cfg.LogPlain, "plain text logs instead of JSON")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Kinds = lo.Uniq(lo.Map(*kinds, func(k string, _ int) Kind {
		return Kind(strings.ToLower(strings.TrimSpace(k)))
	}))
	cfg.Exporter = observability.ExporterKind(strings.ToLower(*exporter))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (cfg *Config) Validate() error {
	var err error
	if len(cfg.Kinds) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: no container kind selected", ErrInvalidConfig))
	}
	for _, k := range cfg.Kinds {
		if !lo.Contains(AllKinds, k) {
			err = multierr.Append(err, fmt.Errorf("%w: unknown container kind %q", ErrInvalidConfig, k))
		}
	}
	if cfg.Ops <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: ops must be positive, got %d", ErrInvalidConfig, cfg.Ops))
	}
	if cfg.KeySpace <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: key space must be positive, got %d", ErrInvalidConfig, cfg.KeySpace))
	}
	if cfg.CheckEvery < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: check period must not be negative, got %d", ErrInvalidConfig, cfg.CheckEvery))
	}
	if cfg.Workers <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, cfg.Workers))
	}
	if !cfg.Exporter.Valid() {
		err = multierr.Append(err, fmt.Errorf("%w: unknown metrics exporter %q", ErrInvalidConfig, cfg.Exporter))
	}
	if cfg.MetricsAddr != "" && cfg.Exporter != observability.PrometheusExporter {
		err = multierr.Append(err, fmt.Errorf("%w: metrics address requires the prometheus exporter", ErrInvalidConfig))
	}
	return err
}
