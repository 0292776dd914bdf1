// Package nlog - aisgate logger, a thin leveled facade over uber-go/zap
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar     atomic.Pointer[zap.SugaredLogger]
	verbosity atomic.Int32
)

func init() {
	sugar.Store(zap.NewNop().Sugar())
}

// Init builds the production logger. Called once from main; tests run with
// the no-op default unless they opt in via SetLogger.
func Init(verbose int) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	sugar.Store(logger.Sugar())
	verbosity.Store(int32(verbose))
	return nil
}

func SetLogger(logger *zap.Logger) { sugar.Store(logger.Sugar()) }

// FastV gates verbose logging, e.g.: if nlog.FastV(4) { nlog.Infof(...) }
func FastV(v int) bool { return verbosity.Load() >= int32(v) }

func Infoln(args ...any)                  { sugar.Load().Info(args...) }
func Infof(format string, args ...any)    { sugar.Load().Infof(format, args...) }
func Warningln(args ...any)               { sugar.Load().Warn(args...) }
func Warningf(format string, args ...any) { sugar.Load().Warnf(format, args...) }
func Errorln(args ...any)                 { sugar.Load().Error(args...) }
func Errorf(format string, args ...any)   { sugar.Load().Errorf(format, args...) }

func Flush() { _ = sugar.Load().Sync() }
