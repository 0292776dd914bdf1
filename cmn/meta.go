// Package cmn provides common constants, types, and utilities for aisgate
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"net/http"
	"strings"

	"github.com/NVIDIA/aisgate/api/apc"
)

// Object metadata predicates. Header names are matched case-insensitively;
// callers deal with canonical (net/http) keys but external inputs may not be.

func IsObjUserMeta(hdr string) bool {
	return hasPrefixFold(hdr, apc.ObjMetaPrefix)
}

func IsObjSysMeta(hdr string) bool {
	return hasPrefixFold(hdr, apc.ObjSysmetaPrefix)
}

func IsObjMeta(hdr string) bool { return IsObjUserMeta(hdr) || IsObjSysMeta(hdr) }

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// CopyHeaderSubset copies from src to dst every header matching the
// predicate, overwriting dst's values.
func CopyHeaderSubset(dst, src http.Header, match func(string) bool) {
	for k, vv := range src {
		if match(k) && len(vv) > 0 {
			dst.Set(k, vv[0])
		}
	}
}

// RemoveHeaders deletes from h every header matching the predicate.
func RemoveHeaders(h http.Header, match func(string) bool) {
	for k := range h {
		if match(k) {
			h.Del(k)
		}
	}
}

// MergeObjMeta copies src's object metadata (system and user) onto dst,
// src winning on conflicts. X-Delete-At travels with the metadata.
func MergeObjMeta(dst, src http.Header) {
	CopyHeaderSubset(dst, src, func(k string) bool {
		return IsObjMeta(k) || strings.EqualFold(k, apc.HdrDeleteAt)
	})
}
