// Package copier implements server-side object copy.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package copier

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/NVIDIA/aisgate/api/apc"
	"github.com/NVIDIA/aisgate/cmn"
	"github.com/NVIDIA/aisgate/cmn/cos"
	"github.com/NVIDIA/aisgate/stats"
)

// copy orchestrates one server-side copy: fetch the source via a sub-request,
// synthesize the sink PUT, merge metadata, forward, and translate the result.
// Exactly one fetch and one PUT per operation; any failure at either stage
// surfaces immediately - there are no retries.
func (c *Copier) copy(w http.ResponseWriter, r *http.Request, sourcePath string, rctx *reqCtx) {
	defer c.flushLogInfo(rctx)

	srcResp := c.fetchSource(r, sourcePath, rctx)

	// refuse sources whose length is indeterminate or over the cap; no sink
	// PUT is issued
	length := srcResp.ContentLength()
	if length < 0 || length > c.maxObjSize {
		stats.IncCopyErr()
		cmn.WriteErr(w, cmn.NewErrTooLarge(length, c.maxObjSize))
		return
	}

	// propagate a failed fetch verbatim
	if !srcResp.Success() {
		stats.IncCopyErr()
		srcResp.WriteTo(w, nil)
		return
	}

	sink := c.buildSink(r, srcResp, length, rctx)
	provenance := provenanceHeaders(sourcePath, srcResp, sink)

	sinkResp := c.doSub(sink, 0)
	status := sinkResp.Status()
	if !sinkResp.Success() {
		stats.IncCopyErr()
		provenance = nil
	} else {
		stats.IncCopy()
		// object POSTs used to return 202; keep that for picky clients
		if rctx.origMethod == http.MethodPost && status == http.StatusCreated {
			status = http.StatusAccepted
		}
	}
	out := w.Header()
	for k, vv := range sinkResp.Header() {
		out[k] = vv
	}
	for k, vv := range provenance {
		out[k] = vv
	}
	w.WriteHeader(status)
	if body := sinkResp.Body(); len(body) > 0 {
		w.Write(body) //nolint:errcheck // client went away
	}
}

// fetchSource issues the internal GET for the source object, forcing
// newest-replica semantics and dropping any storage-policy override
// inherited from the destination container.
func (c *Copier) fetchSource(r *http.Request, sourcePath string, rctx *reqCtx) *cmn.SubResponse {
	srcReq := cmn.NewSubRequest(r, http.MethodGet, sourcePath, nil, 0)
	srcReq.Header.Del(apc.HdrStoragePolicyIndex)
	srcReq.Header.Set(apc.HdrNewest, "true")

	srcResp := c.doSub(srcReq, c.maxObjSize+1)
	if rctx.hook != nil {
		srcResp = rctx.hook(srcReq, srcResp, r)
	}
	return srcResp
}

// buildSink synthesizes the PUT that writes the copied object: cloned from
// the original request, body and length from the source, copy-source headers
// dropped, metadata merged per the operating mode.
func (c *Copier) buildSink(r *http.Request, srcResp *cmn.SubResponse, length int64, rctx *reqCtx) *http.Request {
	body := io.NopCloser(bytes.NewReader(srcResp.Body()))
	sink := cmn.NewSubRequest(r, http.MethodPut, r.URL.Path, body, length)
	if etag := srcResp.Header().Get("Etag"); etag != "" {
		sink.Header.Set("Etag", etag)
	}

	// these must not reach the backend
	sink.Header.Del(apc.HdrCopyFrom)
	sink.Header.Del(apc.HdrCopyFromAccount)

	// client-supplied content type wins; the source's is the fallback
	if r.Header.Get("Content-Type") == "" {
		if ct := srcResp.Header().Get("Content-Type"); ct != "" {
			sink.Header.Set("Content-Type", ct)
		}
	}

	if cos.IsParseBool(r.Header.Get(apc.HdrFreshMetadata)) || rctx.postAsCopy {
		// fresh-metadata and post-as-copy: drop whatever metadata the client
		// supplied and carry over the source's system metadata only
		cmn.RemoveHeaders(sink.Header, cmn.IsObjMeta)
		cmn.CopyHeaderSubset(sink.Header, srcResp.Header(), cmn.IsObjSysMeta)
	} else {
		// normal mode: source sys+user metadata first, then the client's new
		// metadata on top (client wins on conflicts)
		cmn.MergeObjMeta(sink.Header, srcResp.Header())
		cmn.MergeObjMeta(sink.Header, r.Header)
	}

	// keep the manifest marker for manifest-only POSTs and copies
	if slo := srcResp.Header().Get(apc.HdrStaticLargeObject); slo != "" {
		if r.URL.Query().Get(apc.QparamMptManifest) == "get" || rctx.postAsCopy {
			sink.Header.Set(apc.HdrStaticLargeObject, slo)
		}
	}
	return sink
}

// provenanceHeaders records where the object was copied from, plus a
// reflection of the sink's final metadata.
func provenanceHeaders(sourcePath string, srcResp *cmn.SubResponse, sink *http.Request) http.Header {
	h := make(http.Header)
	if segs, err := cmn.SplitPath(sourcePath, 4, 4); err == nil {
		h.Set(apc.HdrCopiedFromAccount, url.QueryEscape(segs[1]))
		h.Set(apc.HdrCopiedFrom, cmn.PathQuote(segs[2]+"/"+segs[3]))
	}
	if lm := srcResp.Header().Get("Last-Modified"); lm != "" {
		h.Set(apc.HdrCopiedFromLastModified, lm)
	}
	for k, vv := range sink.Header {
		if (cmn.IsObjMeta(k) || strings.EqualFold(k, apc.HdrDeleteAt)) && len(vv) > 0 {
			h.Set(k, vv[0])
		}
	}
	return h
}
