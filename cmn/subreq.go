// Package cmn provides common constants, types, and utilities for aisgate
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// SubResponse buffers the result of an internal sub-request: the wrapped
// handler chain writes into it, the issuing orchestrator inspects and either
// translates or replays it. An optional byte cap bounds how much body is
// retained; writes past the cap are counted but discarded, which is how an
// oversized or length-indeterminate source is detected without buffering it
// whole.
type SubResponse struct {
	hdr     http.Header
	body    bytes.Buffer
	written int64
	limit   int64 // <= 0: unbounded
	status  int
}

// interface guard
var _ http.ResponseWriter = (*SubResponse)(nil)

func NewSubResponse(limit int64) *SubResponse {
	return &SubResponse{hdr: make(http.Header), limit: limit}
}

func (sr *SubResponse) Header() http.Header { return sr.hdr }

func (sr *SubResponse) WriteHeader(status int) {
	if sr.status == 0 {
		sr.status = status
	}
}

func (sr *SubResponse) Write(p []byte) (int, error) {
	sr.WriteHeader(http.StatusOK)
	sr.written += int64(len(p))
	if sr.limit > 0 {
		if room := sr.limit - int64(sr.body.Len()); room < int64(len(p)) {
			if room > 0 {
				sr.body.Write(p[:room])
			}
			return len(p), nil
		}
	}
	sr.body.Write(p)
	return len(p), nil
}

func (sr *SubResponse) Status() int {
	if sr.status == 0 {
		return http.StatusOK
	}
	return sr.status
}

func (sr *SubResponse) Success() bool {
	status := sr.Status()
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// Overflowed reports whether the downstream wrote past the configured cap.
func (sr *SubResponse) Overflowed() bool { return sr.limit > 0 && sr.written > sr.limit }

func (sr *SubResponse) Body() []byte { return sr.body.Bytes() }

// ContentLength returns the response length: the explicit Content-Length
// header when present and valid, the number of buffered bytes otherwise.
// Returns -1 when the body overflowed the cap, i.e. when the true length
// cannot be trusted.
func (sr *SubResponse) ContentLength() int64 {
	if v := sr.hdr.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	if sr.Overflowed() {
		return -1
	}
	return int64(sr.body.Len())
}

// WriteTo replays the buffered response onto the outer ResponseWriter,
// appending extra headers first.
func (sr *SubResponse) WriteTo(w http.ResponseWriter, extra http.Header) {
	out := w.Header()
	for k, vv := range sr.hdr {
		out[k] = vv
	}
	for k, vv := range extra {
		for _, v := range vv {
			out.Add(k, v)
		}
	}
	w.WriteHeader(sr.Status())
	if sr.body.Len() > 0 {
		w.Write(sr.body.Bytes()) //nolint:errcheck // client went away
	}
}

// NewSubRequest synthesizes an internal request derived from the original:
// same context and query, cloned headers, overridden method/path/body. The
// original request is left untouched.
func NewSubRequest(r *http.Request, method, path string, body io.ReadCloser, length int64) *http.Request {
	sub := r.Clone(r.Context())
	sub.Method = method
	sub.URL = &url.URL{Path: path, RawQuery: r.URL.RawQuery}
	sub.RequestURI = ""
	sub.Body = body
	sub.ContentLength = length
	if length >= 0 {
		sub.Header.Set("Content-Length", strconv.FormatInt(length, 10))
	} else {
		sub.Header.Del("Content-Length")
	}
	if body == nil {
		sub.Body = http.NoBody
	}
	return sub
}
