// Package migrator implements on-demand data migration.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package migrator

import (
	"net/http"
	"strings"

	"github.com/NVIDIA/aisgate/api/apc"
	"github.com/NVIDIA/aisgate/cmn"
)

// validateSetup inspects a container PUT/POST for migration-setup headers.
// The three mandatory headers must arrive together (412 naming what is
// missing); the provider must resolve to a registered, loaded driver and
// every driver-declared key must be supplied (400 otherwise). Valid setup
// headers are then mirrored into container sysmeta so they persist.
func (m *Migrator) validateSetup(r *http.Request) error {
	var (
		active   = r.Header.Get(apc.HdrMigrationActive)
		provider = r.Header.Get(apc.HdrMigrationProvider)
		source   = r.Header.Get(apc.HdrMigrationSource)
	)
	if active == "" && provider == "" && source == "" {
		return nil // not a migration setup
	}
	var missing []string
	if active == "" {
		missing = append(missing, apc.HdrMigrationActive)
	}
	if provider == "" {
		missing = append(missing, apc.HdrMigrationProvider)
	}
	if source == "" {
		missing = append(missing, apc.HdrMigrationSource)
	}
	if len(missing) > 0 {
		return cmn.NewErrPrecondition("migration setup header(s) missing: %s", strings.Join(missing, ", "))
	}

	entry, ok := m.registry.Lookup(provider)
	if !ok {
		return cmn.NewErrBadRequest("invalid migration provider %q", provider)
	}
	if !entry.Loaded() {
		return cmn.NewErrBadRequest("invalid access driver %q", provider)
	}
	setupHeaders := []string{apc.HdrMigrationActive, apc.HdrMigrationProvider, apc.HdrMigrationSource}
	for _, key := range entry.Keys() {
		hname := http.CanonicalHeaderKey(apc.HdrMigrationPrefix + key)
		if r.Header.Get(hname) == "" {
			return cmn.NewErrBadRequest("missing required header: %s", hname)
		}
		setupHeaders = append(setupHeaders, hname)
	}
	for k, v := range entry.Params() {
		if strings.TrimSpace(v) == "" {
			return cmn.NewErrBadRequest("missing value for %s", k)
		}
	}

	// persist: X-Container-Migration-* => X-Container-Sysmeta-Migration-*
	for _, hname := range setupHeaders {
		r.Header.Set(apc.SysmetaMigrationPrefix+strings.TrimPrefix(hname, apc.HdrMigrationPrefix),
			r.Header.Get(hname))
	}
	return nil
}
