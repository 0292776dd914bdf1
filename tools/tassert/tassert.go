// Package tassert provides common asserts for tests
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package tassert

import (
	"fmt"
	"testing"
)

func CheckFatal(tb testing.TB, err error) {
	if err != nil {
		tb.Helper()
		tb.Fatal(err)
	}
}

func CheckError(tb testing.TB, err error) {
	if err != nil {
		tb.Helper()
		tb.Error(err)
	}
}

func Errorf(tb testing.TB, cond bool, msg string, args ...any) {
	if !cond {
		tb.Helper()
		tb.Errorf(msg, args...)
	}
}

func Fatalf(tb testing.TB, cond bool, msg string, args ...any) {
	if !cond {
		tb.Helper()
		tb.Fatalf(msg, args...)
	}
}

func Error(tb testing.TB, cond bool, args ...any) {
	if !cond {
		tb.Helper()
		tb.Error(fmt.Sprint(args...))
	}
}
