// Package backend contains migration source drivers and their registry.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package backend

import (
	"strings"

	"github.com/NVIDIA/aisgate/api/apc"
	"github.com/NVIDIA/aisgate/cmn"
	"github.com/NVIDIA/aisgate/cmn/cos"
	"github.com/NVIDIA/aisgate/cmn/nlog"
)

type (
	// Entry is one registered provider. Immutable once the registry is built.
	Entry struct {
		factory Factory
		params  cos.StrKVs
		name    string
		keys    []string
		loaded  bool
	}

	// Registry maps provider names to driver factories. Built once at
	// startup from configuration, read-only afterwards; requests share it
	// without locking.
	Registry struct {
		entries map[string]*Entry
	}
)

// Built-in providers. The s3 and gcs constructors are linked in by the `aws`
// and `gcp` build tags respectively, with stubs otherwise - a provider whose
// implementation is not linked stays registered but cannot be resolved.
var builtin = map[string]struct {
	factory Factory
	loaded  bool
}{
	apc.FSystem: {NewFileDriver, true},
	apc.S3:      {NewS3Driver, s3Linked},
	apc.GCS:     {NewGCSDriver, gcsLinked},
}

// Register adds an operator-supplied driver implementation under the given
// provider name. Must be called before NewRegistry; the name still has to be
// listed in the supported-drivers configuration to become resolvable.
func Register(provider string, factory Factory) {
	builtin[provider] = struct {
		factory Factory
		loaded  bool
	}{factory, true}
}

func NewRegistry(conf *cmn.MigrationConf) *Registry {
	reg := &Registry{entries: make(map[string]*Entry)}
	for _, name := range cos.ParseStrList(conf.SupportedDrivers) {
		name = strings.ToLower(name)
		entry := &Entry{name: name, params: cos.StrKVs{}}
		if dc, ok := conf.Drivers[name]; ok {
			entry.keys = cos.ParseStrList(dc.Keys)
			if dc.Params != nil {
				entry.params = dc.Params.Clone()
			}
		}
		if impl, ok := builtin[name]; ok {
			entry.factory, entry.loaded = impl.factory, impl.loaded
		} else {
			nlog.Warningf("migration provider %q has no driver implementation", name)
		}
		if !entry.loaded {
			nlog.Warningf("migration provider %q is registered but not loaded", name)
		}
		reg.entries[name] = entry
	}
	return reg
}

func (reg *Registry) Lookup(provider string) (*Entry, bool) {
	entry, ok := reg.entries[strings.ToLower(provider)]
	return entry, ok
}

func (e *Entry) Loaded() bool       { return e.loaded }
func (e *Entry) Keys() []string     { return e.keys }
func (e *Entry) Params() cos.StrKVs { return e.params }

// Resolve constructs a driver instance from container migration metadata:
// the provider must be registered and loaded, every required key must be
// present in the metadata, and the registry's static parameters are merged
// in. Called on every migration attempt; never mutates the registry.
func (reg *Registry) Resolve(md cos.StrKVs) (Driver, error) {
	provider := strings.ToLower(md[apc.MDMigrationProvider])
	entry, ok := reg.entries[provider]
	if !ok {
		return nil, cmn.NewErrInitDriver(provider)
	}
	if !entry.loaded || entry.factory == nil {
		return nil, cmn.NewErrInitDriver(provider)
	}
	params := make(cos.StrKVs, len(entry.keys)+len(entry.params))
	for _, key := range entry.keys {
		v, ok := md[apc.MDMigrationPrefix+strings.ToLower(key)]
		if !ok {
			return nil, cmn.NewErrBadRequest("missing required migration key %q for provider %q", key, provider)
		}
		params[key] = v
	}
	for k, v := range entry.params {
		params[k] = v
	}
	return entry.factory(md[apc.MDMigrationSource], params)
}
