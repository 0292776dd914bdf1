// Package cos provides common low-level types and utilities for all aisgate packages
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StrKVs is a string-to-string map used for metadata and driver parameters.
type StrKVs map[string]string

func (kvs StrKVs) Clone() StrKVs {
	clone := make(StrKVs, len(kvs))
	for k, v := range kvs {
		clone[k] = v
	}
	return clone
}

// ParseBool converts string to bool (case-insensitive):
//
//	y, yes, on -> true
//	n, no, off, <empty value> -> false
//
// strconv handles the following:
//
//	1, true, t -> true
//	0, false, f -> false
func ParseBool(s string) (value bool, err error) {
	if s == "" {
		return
	}
	s = strings.ToLower(s)
	switch s {
	case "y", "yes", "on":
		return true, nil
	case "n", "no", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func IsParseBool(s string) (yes bool) { yes, _ = ParseBool(s); return }

// ParseStrList splits a comma-separated list, trimming whitespace and
// dropping empty entries.
func ParseStrList(s string) (lst []string) {
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			lst = append(lst, item)
		}
	}
	return
}

func MinTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// FormatUnixFloat renders a timestamp the way the storage backend expects
// X-Timestamp: seconds since epoch with 5 decimal places, zero-padded to 16
// characters so the values sort lexicographically.
func FormatUnixFloat(t time.Time) string {
	return fmt.Sprintf("%016.5f", float64(t.UnixNano())/float64(time.Second))
}
