package bench

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xcoll/lib/infra"
)

const (
	BenchStatsName = "xcoll/bench"
)

// workloadStats records on the global meter provider, install one before
// newWorkloadStats is called.
type workloadStats struct {
	opLatencies     metric.Int64Histogram
	opCount         metric.Int64Counter
	verifyCount     metric.Int64Counter
	mismatchCount   metric.Int64Counter
	containerLength metric.Int64Histogram
}

func (stats *workloadStats) RecordOp(ctx context.Context, kind Kind, op opKind, elapsed time.Duration) {
	if stats == nil {
		return
	}
	as := metric.WithAttributeSet(attribute.NewSet(
		attribute.String("xcoll.kind", kind.String()),
		attribute.String("xcoll.op", op.String()),
	))
	stats.opLatencies.Record(ctx, elapsed.Nanoseconds(), as)
	stats.opCount.Add(ctx, 1, as)
}

func (stats *workloadStats) IncreaseVerifyCount(ctx context.Context, kind Kind) {
	if stats == nil {
		return
	}
	stats.verifyCount.Add(ctx, 1, metric.WithAttributes(attribute.String("xcoll.kind", kind.String())))
}

func (stats *workloadStats) IncreaseMismatchCount(ctx context.Context, kind Kind) {
	if stats == nil {
		return
	}
	stats.mismatchCount.Add(ctx, 1, metric.WithAttributes(attribute.String("xcoll.kind", kind.String())))
}

func (stats *workloadStats) RecordLength(ctx context.Context, kind Kind, length int64) {
	if stats == nil {
		return
	}
	stats.containerLength.Record(ctx, length, metric.WithAttributes(attribute.String("xcoll.kind", kind.String())))
}

func newWorkloadStats(name string) *workloadStats {
	meterName := fmt.Sprintf("%s/%s", BenchStatsName, name)
	meter := otel.Meter(meterName)
	return &workloadStats{
		opLatencies: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			"xcoll.op.latency",
			metric.WithDescription("The latency of one container operation. In nanoseconds."),
			metric.WithUnit("ns"),
		)),
		opCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xcoll.op.count",
			metric.WithDescription("The number of container operations."),
		)),
		verifyCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xcoll.verify.count",
			metric.WithDescription("The number of full verifications against the reference model."),
		)),
		mismatchCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xcoll.mismatch.count",
			metric.WithDescription("The number of disagreements with the reference model."),
		)),
		containerLength: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			"xcoll.container.length",
			metric.WithDescription("The element count of a container after its workload."),
		)),
	}
}

// residentMemory returns the RSS of the current process in bytes.
func residentMemory() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, infra.WrapErrorStackWithMessage(err, "[xcollbench] process")
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, infra.WrapErrorStackWithMessage(err, "[xcollbench] memory info")
	}
	return info.RSS, nil
}
