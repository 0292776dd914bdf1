// Package apc: gateway API constants - headers, query parameters, providers
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package apc

// Built-in migration source providers. Operator-supplied drivers register
// under their own names (see backend.Register).
const (
	FSystem = "fsystem"
	S3      = "s3"
	GCS     = "gcs"
)

// Gateway API version (the leading path segment: /v1/account/container/object).
const Version = "v1"
