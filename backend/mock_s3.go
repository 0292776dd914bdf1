//go:build !aws

// Package backend contains migration source drivers and their registry.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package backend

import (
	"github.com/NVIDIA/aisgate/api/apc"
	"github.com/NVIDIA/aisgate/cmn"
	"github.com/NVIDIA/aisgate/cmn/cos"
)

const s3Linked = false

func NewS3Driver(string, cos.StrKVs) (Driver, error) {
	return nil, cmn.NewErrInitDriver(apc.S3)
}
