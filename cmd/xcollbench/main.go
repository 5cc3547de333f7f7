package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xcoll/bench"
	"github.com/benz9527/xcoll/xlog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := bench.NewConfigFromArgs(args)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 2
	}

	bootLogger := xlog.NewXLogger(xlog.WithXLoggerLevelText(cfg.LogLevel))
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		bootLogger.Logf(zapcore.InfoLevel, format, args...)
	}))
	defer undo()
	if err != nil {
		bootLogger.Warn("unable to set GOMAXPROCS from the cpu quota")
	}

	app := fx.New(appOptions(cfg)...)
	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err = app.Start(startCtx); err != nil {
		bootLogger.ErrorStack(err, "unable to start")
		return 1
	}
	sig := <-app.Wait()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err = app.Stop(stopCtx); err != nil {
		bootLogger.ErrorStack(err, "unable to stop")
	}
	return sig.ExitCode
}
