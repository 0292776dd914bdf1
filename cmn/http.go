// Package cmn provides common constants, types, and utilities for aisgate
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/NVIDIA/aisgate/api/apc"
	"github.com/NVIDIA/aisgate/cmn/cos"
)

// SplitPath splits a request path of the form
// /<version>/<account>/<container>/<object> into its segments. The object
// segment (the last one) may itself contain slashes. Returns an error when
// fewer than minsegs non-empty segments are present; never returns more than
// maxsegs.
func SplitPath(path string, minsegs, maxsegs int) ([]string, error) {
	path = strings.TrimPrefix(path, "/")
	segs := strings.SplitN(path, "/", maxsegs)
	n := len(segs)
	if n > 0 && segs[n-1] == "" {
		segs = segs[:n-1]
		n--
	}
	if n < minsegs {
		return nil, NewErrBadRequest("invalid path %q: expected at least %d segments", path, minsegs)
	}
	for _, s := range segs {
		if s == "" {
			return nil, NewErrBadRequest("invalid path %q: empty segment", path)
		}
	}
	return segs, nil
}

// JoinPath assembles an absolute request path from segments.
func JoinPath(segs ...string) string { return "/" + strings.Join(segs, "/") }

// CheckAccount validates an account name supplied via an account-override
// header: it must be a single path segment.
func CheckAccount(account string) (string, error) {
	if account == "" || strings.Contains(account, "/") {
		return "", NewErrPrecondition("account name cannot contain slashes")
	}
	return account, nil
}

// ParseContainerObject parses a "/container/object" reference, as carried by
// the X-Copy-From and Destination headers. The leading slash is optional and
// the object part may contain slashes. The value is URL-unescaped first.
func ParseContainerObject(v string) (container, object string, err error) {
	if unescaped, errU := url.PathUnescape(v); errU == nil {
		v = unescaped
	}
	v = strings.TrimPrefix(v, "/")
	container, object, ok := strings.Cut(v, "/")
	if !ok || container == "" || object == "" {
		return "", "", NewErrPrecondition("header value %q must be of the form <container>/<object>", v)
	}
	return container, object, nil
}

// PathQuote URL-escapes a path while preserving the slashes.
func PathQuote(path string) string {
	return (&url.URL{Path: path}).EscapedPath()
}

// MigrationSysmetaKV extracts container migration metadata from response
// headers: X-Container-Sysmeta-Migration-<Key> becomes "migration-<key>".
func MigrationSysmetaKV(h http.Header) cos.StrKVs {
	md := make(cos.StrKVs)
	for k, vv := range h {
		if len(vv) == 0 {
			continue
		}
		if strings.HasPrefix(k, apc.SysmetaMigrationPrefix) {
			key := apc.MDMigrationPrefix + strings.ToLower(k[len(apc.SysmetaMigrationPrefix):])
			md[key] = vv[0]
		}
	}
	return md
}
