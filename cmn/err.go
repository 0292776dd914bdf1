// Package cmn provides common constants, types, and utilities for aisgate
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"errors"
	"fmt"
	"net/http"
)

type (
	// ErrHTTP carries a client-facing status code and message.
	ErrHTTP struct {
		Msg    string
		Status int
	}

	// ErrTooLarge: copy source exceeds the configured maximum object size,
	// or its length cannot be determined at all (Size < 0).
	ErrTooLarge struct {
		Size int64
		Max  int64
	}

	// ErrInitDriver: the requested migration provider is not registered or
	// its implementation is not linked into this build.
	ErrInitDriver struct {
		Provider string
	}

	// ErrMigration wraps driver, connection, and upload failures. The
	// migrator downgrades it to the original 404 so clients keep ordinary
	// not-found semantics.
	ErrMigration struct {
		Provider string
		Object   string
		Err      error
	}
)

func NewErrHTTP(status int, msg string) *ErrHTTP { return &ErrHTTP{Msg: msg, Status: status} }

func NewErrBadRequest(format string, args ...any) *ErrHTTP {
	return &ErrHTTP{Msg: fmt.Sprintf(format, args...), Status: http.StatusBadRequest}
}

func NewErrPrecondition(format string, args ...any) *ErrHTTP {
	return &ErrHTTP{Msg: fmt.Sprintf(format, args...), Status: http.StatusPreconditionFailed}
}

func (e *ErrHTTP) Error() string { return e.Msg }

func NewErrTooLarge(size, maxSize int64) *ErrTooLarge {
	return &ErrTooLarge{Size: size, Max: maxSize}
}

func (e *ErrTooLarge) Error() string {
	if e.Size < 0 {
		return "source content length is indeterminate"
	}
	return fmt.Sprintf("source size %d exceeds maximum object size %d", e.Size, e.Max)
}

func NewErrInitDriver(provider string) *ErrInitDriver { return &ErrInitDriver{Provider: provider} }

func (e *ErrInitDriver) Error() string {
	return fmt.Sprintf("cannot initialize %q migration driver", e.Provider)
}

func NewErrMigration(provider, object string, err error) *ErrMigration {
	return &ErrMigration{Provider: provider, Object: object, Err: err}
}

func (e *ErrMigration) Error() string {
	return fmt.Sprintf("migration[%s] %s: %v", e.Provider, e.Object, e.Err)
}

func (e *ErrMigration) Unwrap() error { return e.Err }

// Status maps an error to the HTTP status surfaced to the client.
func Status(err error) int {
	var (
		errHTTP  *ErrHTTP
		errLarge *ErrTooLarge
	)
	switch {
	case errors.As(err, &errHTTP):
		return errHTTP.Status
	case errors.As(err, &errLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// WriteErr writes the error with its mapped status. Plain-text body, the way
// the storage backend reports client errors.
func WriteErr(w http.ResponseWriter, err error) {
	WriteErrStatus(w, err, Status(err))
}

func WriteErrStatus(w http.ResponseWriter, err error, status int) {
	http.Error(w, err.Error(), status)
}
