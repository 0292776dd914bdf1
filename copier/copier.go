// Package copier implements server-side object copy: clients copy objects
// between containers (and accounts) without downloading and re-uploading
// them. A PUT carrying X-Copy-From, a COPY carrying Destination, and - when
// enabled - an object POST are all normalized to the canonical
// PUT-with-copy-source form and satisfied with exactly two internal
// sub-requests: one source fetch, one sink PUT.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package copier

import (
	"context"
	"net/http"
	"strings"

	"github.com/NVIDIA/aisgate/api/apc"
	"github.com/NVIDIA/aisgate/cmn"
	"github.com/NVIDIA/aisgate/cmn/nlog"
)

type (
	// Hook lets an outer layer substitute the fetched source response, e.g.
	// so copying a large-object manifest copies the assembled content rather
	// than the manifest bytes.
	Hook func(srcReq *http.Request, srcResp *cmn.SubResponse, origReq *http.Request) *cmn.SubResponse

	// reqCtx carries per-request orchestration state down the call chain.
	reqCtx struct {
		hook       Hook
		origMethod string
		logInfo    []string
		postAsCopy bool
	}

	Copier struct {
		next       http.Handler
		maxObjSize int64
		postAsCopy bool
	}
)

type hookCtxKey struct{}

// WithHook attaches a copy hook to the request context.
func WithHook(ctx context.Context, hook Hook) context.Context {
	return context.WithValue(ctx, hookCtxKey{}, hook)
}

func hookFromCtx(ctx context.Context) Hook {
	hook, _ := ctx.Value(hookCtxKey{}).(Hook)
	return hook
}

func New(next http.Handler, config *cmn.Config) *Copier {
	return &Copier{
		next:       next,
		maxObjSize: config.MaxObjectSize,
		postAsCopy: config.PostAsCopy(),
	}
}

// interface guard
var _ http.Handler = (*Copier)(nil)

func (c *Copier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// version/account/container/object - anything shorter passes through
	if _, err := cmn.SplitPath(r.URL.Path, 4, 4); err != nil {
		c.next.ServeHTTP(w, r)
		return
	}
	rctx := &reqCtx{origMethod: r.Method, hook: hookFromCtx(r.Context())}
	switch {
	case r.Method == http.MethodPut && r.Header.Get(apc.HdrCopyFrom) != "":
		c.handlePut(w, r, rctx)
	case r.Method == "COPY":
		c.handleCopy(w, r, rctx)
	case r.Method == http.MethodPost && c.postAsCopy:
		c.handlePostAsCopy(w, r, rctx)
	case r.Method == http.MethodOptions:
		c.handleOptions(w, r)
	default:
		c.next.ServeHTTP(w, r)
	}
}

// handleCopy rewrites COPY into the canonical PUT-with-copy-source form:
// the path becomes the destination, X-Copy-From points back at the source.
func (c *Copier) handleCopy(w http.ResponseWriter, r *http.Request, rctx *reqCtx) {
	segs, err := cmn.SplitPath(r.URL.Path, 4, 4)
	if err != nil {
		cmn.WriteErr(w, err)
		return
	}
	if r.Header.Get(apc.HdrDestination) == "" {
		cmn.WriteErr(w, cmn.NewErrPrecondition("Destination header required"))
		return
	}
	if r.ContentLength != 0 {
		cmn.WriteErr(w, cmn.NewErrBadRequest("Copy requests require a zero byte body"))
		return
	}
	destAccount := segs[1]
	if v := r.Header.Get(apc.HdrDestinationAccount); v != "" {
		if destAccount, err = cmn.CheckAccount(v); err != nil {
			cmn.WriteErr(w, err)
			return
		}
		// the source side is now the cross-account one
		r.Header.Set(apc.HdrCopyFromAccount, segs[1])
		r.Header.Del(apc.HdrDestinationAccount)
	}
	destContainer, destObject, err := cmn.ParseContainerObject(r.Header.Get(apc.HdrDestination))
	if err != nil {
		cmn.WriteErr(w, err)
		return
	}
	source := cmn.JoinPath(segs[2], segs[3])

	r.Method = http.MethodPut
	r.URL.Path = cmn.JoinPath(segs[0], destAccount, destContainer, destObject)
	r.URL.RawPath = ""
	r.ContentLength = 0
	r.Header.Set("Content-Length", "0")
	r.Header.Set(apc.HdrCopyFrom, cmn.PathQuote(source))
	r.Header.Del(apc.HdrDestination)
	c.handlePut(w, r, rctx)
}

// handlePostAsCopy rewrites an object POST into a copy onto itself so that
// replication and sync mechanisms observe a fresh write.
func (c *Copier) handlePostAsCopy(w http.ResponseWriter, r *http.Request, rctx *reqCtx) {
	segs, err := cmn.SplitPath(r.URL.Path, 4, 4)
	if err != nil {
		cmn.WriteErr(w, err)
		return
	}
	rctx.postAsCopy = true
	r.Method = http.MethodPut
	r.ContentLength = 0
	r.Body = http.NoBody
	r.Header.Set("Content-Length", "0")
	r.Header.Set(apc.HdrCopyFrom, cmn.PathQuote(cmn.JoinPath(segs[2], segs[3])))
	c.handlePut(w, r, rctx)
}

// handlePut consumes the canonical form: resolves the source path and hands
// off to the copy orchestrator.
func (c *Copier) handlePut(w http.ResponseWriter, r *http.Request, rctx *reqCtx) {
	if r.ContentLength != 0 {
		cmn.WriteErr(w, cmn.NewErrBadRequest("Copy requests require a zero byte body"))
		return
	}
	segs, err := cmn.SplitPath(r.URL.Path, 4, 4)
	if err != nil {
		cmn.WriteErr(w, err)
		return
	}
	srcAccount := segs[1]
	if v := r.Header.Get(apc.HdrCopyFromAccount); v != "" {
		if srcAccount, err = cmn.CheckAccount(v); err != nil {
			cmn.WriteErr(w, err)
			return
		}
	}
	srcContainer, srcObject, err := cmn.ParseContainerObject(r.Header.Get(apc.HdrCopyFrom))
	if err != nil {
		cmn.WriteErr(w, err)
		return
	}
	if rctx.origMethod != http.MethodPost {
		rctx.logInfo = append(rctx.logInfo, "x-copy-from:"+r.Header.Get(apc.HdrCopyFrom))
	}
	sourcePath := cmn.JoinPath(segs[0], srcAccount, srcContainer, srcObject)
	c.copy(w, r, sourcePath, rctx)
}

// handleOptions advertises COPY support: on a successful downstream OPTIONS
// response, COPY is appended to Allow and Access-Control-Allow-Methods
// unless already present.
func (c *Copier) handleOptions(w http.ResponseWriter, r *http.Request) {
	resp := c.doSub(r, 0)
	if resp.Success() {
		augmentMethods(resp.Header(), "Allow")
		augmentMethods(resp.Header(), "Access-Control-Allow-Methods")
	}
	resp.WriteTo(w, nil)
}

func augmentMethods(h http.Header, name string) {
	v := h.Get(name)
	if v == "" || containsMethod(v, "COPY") {
		return
	}
	h.Set(name, v+", COPY")
}

func containsMethod(list, method string) bool {
	for _, m := range strings.Split(list, ",") {
		if strings.TrimSpace(m) == method {
			return true
		}
	}
	return false
}

func (c *Copier) doSub(r *http.Request, limit int64) *cmn.SubResponse {
	resp := cmn.NewSubResponse(limit)
	c.next.ServeHTTP(resp, r)
	return resp
}

func (c *Copier) flushLogInfo(rctx *reqCtx) {
	if len(rctx.logInfo) > 0 && nlog.FastV(4) {
		nlog.Infof("%s: %v", rctx.origMethod, rctx.logInfo)
	}
}
