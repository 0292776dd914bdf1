// Package apc: gateway API constants - headers, query parameters, providers
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package apc

// Client-facing copy headers. A PUT that carries HdrCopyFrom, or a COPY that
// carries HdrDestination, triggers a server-side copy. Account override
// headers allow copying across accounts.
const (
	HdrCopyFrom           = "X-Copy-From"
	HdrCopyFromAccount    = "X-Copy-From-Account"
	HdrDestination        = "Destination"
	HdrDestinationAccount = "Destination-Account"
	HdrFreshMetadata      = "X-Fresh-Metadata"
)

// Provenance headers attached to a successful copy response.
const (
	HdrCopiedFrom             = "X-Copied-From"
	HdrCopiedFromAccount      = "X-Copied-From-Account"
	HdrCopiedFromLastModified = "X-Copied-From-Last-Modified"
)

// Headers interpreted by the storage backend.
const (
	HdrNewest             = "X-Newest"
	HdrStoragePolicyIndex = "X-Backend-Storage-Policy-Index"
	HdrStaticLargeObject  = "X-Static-Large-Object"
	HdrTimestamp          = "X-Timestamp"
	HdrDeleteAt           = "X-Delete-At"
)

// Object metadata prefixes. User metadata is client-supplied; system metadata
// is reserved for internal bookkeeping.
const (
	ObjMetaPrefix    = "X-Object-Meta-"
	ObjSysmetaPrefix = "X-Object-Sysmeta-"
)

// Container-level migration setup headers (PUT/POST on a container). The
// three mandatory headers must be present together; per-driver required keys
// arrive as HdrMigrationPrefix + <Key>.
const (
	HdrMigrationPrefix   = "X-Container-Migration-"
	HdrMigrationActive   = HdrMigrationPrefix + "Active"
	HdrMigrationProvider = HdrMigrationPrefix + "Provider"
	HdrMigrationSource   = HdrMigrationPrefix + "Source"

	// persisted twins on the container
	SysmetaMigrationPrefix = "X-Container-Sysmeta-Migration-"

	// diagnostic header on failed migrations
	HdrMigrationStatus = "X-Migration-Status"
)

// Container metadata keys as resolved from persisted sysmeta (lower-case,
// SysmetaMigrationPrefix stripped down to "migration-").
const (
	MDMigrationPrefix   = "migration-"
	MDMigrationActive   = MDMigrationPrefix + "active"
	MDMigrationProvider = MDMigrationPrefix + "provider"
	MDMigrationSource   = MDMigrationPrefix + "source"
)

// Object sysmeta recorded when an object is imported by the migrator.
const (
	HdrImportTime   = ObjSysmetaPrefix + "Migration-Import-Time"
	HdrImportSource = ObjSysmetaPrefix + "Migration-Source"
)

// Query parameters.
const (
	QparamMptManifest = "multipart-manifest" // "get" => manifest itself, not the assembled content
)
