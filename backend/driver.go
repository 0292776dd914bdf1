// Package backend contains migration source drivers and their registry.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package backend

import (
	"io"
	"time"

	"github.com/NVIDIA/aisgate/cmn/cos"
)

type (
	// ObjResult is what a driver returns for a single object fetch. A nil
	// Reader with a nil error means the object does not exist at the source.
	ObjResult struct {
		Meta        cos.StrKVs
		Reader      io.ReadCloser
		ContentType string
		Timestamp   time.Time
		Size        int64
	}

	// Driver fetches object data from one class of external source. A driver
	// instance lives for a single migration attempt; Finalize releases
	// whatever GetObject acquired and always runs, whether or not the
	// subsequent upload succeeded.
	Driver interface {
		GetObject(name string) (*ObjResult, error)
		Finalize()
	}

	// Factory constructs a driver for one migration attempt. source is the
	// container/folder/bucket at the external store; params combines the
	// per-driver required keys resolved from container metadata with the
	// registry's static parameters.
	Factory func(source string, params cos.StrKVs) (Driver, error)
)
