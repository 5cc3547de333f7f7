package bench

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xcoll/lib/infra"
	"github.com/benz9527/xcoll/xlog"
)

// ContextKindField is the context key the runner stores the container kind
// under. Loggers built with xlog.WithXLoggerContextFieldExtract on it print
// the kind with every workload message.
const ContextKindField = "xcoll.kind"

// Report is the outcome of the workload of one container kind.
type Report struct {
	Kind          Kind
	Ops           int
	Verifications int
	FinalLen      int64
	Elapsed       time.Duration
	Err           error
}

type Summary struct {
	Reports   []Report
	RSSBefore uint64
	RSSAfter  uint64
	Elapsed   time.Duration
}

// Err combines the errors of all the reports.
func (s *Summary) Err() error {
	if s == nil {
		return nil
	}
	return multierr.Combine(lo.Map(s.Reports, func(r Report, _ int) error {
		return r.Err
	})...)
}

// Runner executes one workload per configured container kind on a worker
// pool. Every container is owned by the single task running its workload.
type Runner struct {
	cfg    *Config
	logger xlog.XLogger
	pool   *ants.Pool
	stats  *workloadStats
}

type RunnerOption func(r *Runner)

func WithRunnerLogger(logger xlog.XLogger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithRunnerStats records the operations on the global meter provider
// under the given name.
func WithRunnerStats(name string) RunnerOption {
	return func(r *Runner) {
		r.stats = newWorkloadStats(name)
	}
}

func NewRunner(cfg *Config, opts ...RunnerOption) (*Runner, error) {
	if cfg == nil {
		return nil, infra.WrapErrorStackWithMessage(ErrInvalidConfig, "[xcollbench] nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{cfg: cfg}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = xlog.NewXLogger(
			xlog.WithXLoggerLevelText(cfg.LogLevel),
			xlog.WithXLoggerContextFieldExtract(ContextKindField, "kind"),
		)
	}
	pool, err := ants.NewPool(cfg.Workers, ants.WithLogger(xlog.NewAntsXLogger(r.logger)))
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[xcollbench] worker pool")
	}
	r.pool = pool
	return r, nil
}

// Release stops the worker pool. The runner is unusable afterwards.
func (r *Runner) Release() {
	r.pool.Release()
}

// Run blocks until every workload finished or ctx is done. The returned
// error is about the run itself, the workload failures are in the reports.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		Reports: make([]Report, len(r.cfg.Kinds)),
	}
	rss, err := residentMemory()
	if err != nil {
		r.logger.ErrorStack(err, "unable to read the process memory")
	}
	summary.RSSBefore = rss

	start := time.Now()
	wg := sync.WaitGroup{}
	for i, kind := range r.cfg.Kinds {
		wg.Add(1)
		err = r.pool.Submit(func() {
			defer wg.Done()
			summary.Reports[i] = r.runWorkload(ctx, kind)
		})
		if err != nil {
			wg.Done()
			summary.Reports[i] = Report{Kind: kind, Err: infra.WrapErrorStackWithMessage(err, "[xcollbench] submit")}
		}
	}
	wg.Wait()
	summary.Elapsed = time.Since(start)

	if rss, err = residentMemory(); err != nil {
		r.logger.ErrorStack(err, "unable to read the process memory")
	}
	summary.RSSAfter = rss
	r.logger.Info("benchmark finished",
		zap.Duration("elapsed", summary.Elapsed),
		zap.Uint64("rssBefore", summary.RSSBefore),
		zap.Uint64("rssAfter", summary.RSSAfter),
	)
	return summary, ctx.Err()
}

// seedOf derives the random stream of kind from the configured seed. The
// stream does not depend on which other kinds are selected.
func (r *Runner) seedOf(kind Kind) *rand.Rand {
	return rand.New(rand.NewPCG(r.cfg.Seed, uint64(lo.IndexOf(AllKinds, kind))))
}

func (r *Runner) runWorkload(ctx context.Context, kind Kind) (report Report) {
	ctx = context.WithValue(ctx, xlog.ContextKey(ContextKindField), kind.String())
	report.Kind = kind
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			report.Err = infra.NewErrorStack(fmt.Sprintf("[xcollbench] %s workload panic: %v", kind, p))
		}
		report.Elapsed = time.Since(start)
		if report.Err != nil {
			r.stats.IncreaseMismatchCount(ctx, kind)
			r.logger.ErrorStackContext(ctx, report.Err, "workload failed", zap.Int("ops", report.Ops))
			return
		}
		r.stats.RecordLength(ctx, kind, report.FinalLen)
		r.logger.InfoContext(ctx, "workload finished",
			zap.Int("ops", report.Ops),
			zap.Int("verifications", report.Verifications),
			zap.Int64("len", report.FinalLen),
			zap.Duration("elapsed", report.Elapsed),
		)
	}()

	w, err := newWorkload(kind, r.cfg.KeySpace)
	if err != nil {
		report.Err = err
		return report
	}
	rng := r.seedOf(kind)
	verify := func() error {
		report.Verifications++
		r.stats.IncreaseVerifyCount(ctx, kind)
		return w.verify()
	}
	r.logger.DebugContext(ctx, "workload started", zap.Int("ops", r.cfg.Ops))
	for report.Ops < r.cfg.Ops {
		if report.Ops&1023 == 0 && ctx.Err() != nil {
			report.Err = infra.WrapErrorStackWithMessage(ctx.Err(), "[xcollbench] "+kind.String()+" cancelled")
			return report
		}
		op := nextOp(rng)
		key, val := rng.IntN(r.cfg.KeySpace), rng.Int()
		opStart := time.Now()
		err = w.apply(op, key, val)
		r.stats.RecordOp(ctx, kind, op, time.Since(opStart))
		report.Ops++
		if err == nil && r.cfg.CheckEvery > 0 && report.Ops%r.cfg.CheckEvery == 0 {
			err = verify()
		}
		if err != nil {
			report.Err = infra.WrapErrorStackWithMessage(err, "[xcollbench] "+kind.String())
			return report
		}
	}
	if err = verify(); err != nil {
		report.Err = infra.WrapErrorStackWithMessage(err, "[xcollbench] "+kind.String())
		return report
	}
	report.FinalLen = w.len()
	return report
}
