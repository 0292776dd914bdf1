// Package migrator implements on-demand data migration: a local container is
// linked to a container (or folder) on another storage system, and any
// GET/HEAD that misses locally is satisfied by fetching the object from that
// source, persisting it through a synthesized PUT, and replaying the original
// request - the client never sees the miss.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package migrator

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/NVIDIA/aisgate/api/apc"
	"github.com/NVIDIA/aisgate/backend"
	"github.com/NVIDIA/aisgate/cmn"
	"github.com/NVIDIA/aisgate/cmn/cos"
	"github.com/NVIDIA/aisgate/cmn/nlog"
	"github.com/NVIDIA/aisgate/stats"
)

type (
	// ValidateFunc is the object-creation constraint capability (name and
	// length limits); consumed as an external collaborator, not implemented
	// here.
	ValidateFunc func(objName string, length int64) error

	Migrator struct {
		next     http.Handler
		registry *backend.Registry
		validate ValidateFunc
		now      func() time.Time
	}

	Option func(*Migrator)
)

// WithValidator installs the object-creation validation capability.
func WithValidator(v ValidateFunc) Option {
	return func(m *Migrator) { m.validate = v }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Migrator) { m.now = now }
}

func New(next http.Handler, registry *backend.Registry, opts ...Option) *Migrator {
	m := &Migrator{next: next, registry: registry, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// interface guard
var _ http.Handler = (*Migrator)(nil)

func (m *Migrator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	segs, err := cmn.SplitPath(r.URL.Path, 3, 4)
	if err != nil {
		m.next.ServeHTTP(w, r)
		return
	}
	isContainer := len(segs) == 3
	if isContainer && (r.Method == http.MethodPut || r.Method == http.MethodPost) {
		if err := m.validateSetup(r); err != nil {
			cmn.WriteErr(w, err)
			return
		}
	}
	if !m.isCandidate(r, segs) {
		m.passThrough(w, r)
		return
	}

	// withhold the verdict: only a 404 is buffered, anything else streams
	// straight through to the client
	dw := &deferredWriter{w: w, buf: cmn.NewSubResponse(0)}
	m.next.ServeHTTP(dw, r)
	if dw.streamed {
		return
	}
	original := dw.buf
	if original.Status() != http.StatusNotFound {
		// downstream committed nothing; flush the empty response
		original.WriteTo(w, sysmetaEcho(original.Header()))
		return
	}

	md, err := m.containerMD(r, segs)
	if err != nil || !cos.IsParseBool(md[apc.MDMigrationActive]) {
		original.WriteTo(w, sysmetaEcho(original.Header()))
		return
	}

	provider := md[apc.MDMigrationProvider]
	if err := m.migrate(r, segs[3], md); err != nil {
		stats.IncMigrateErr(provider)
		nlog.Errorf("migration failed for %s: %v", r.URL.Path, err)
		diag := http.Header{apc.HdrMigrationStatus: []string{err.Error()}}
		var errMigration *cmn.ErrMigration
		if errors.As(err, &errMigration) {
			// clients keep ordinary not-found semantics
			original.WriteTo(w, diag)
		} else {
			out := w.Header()
			for k, vv := range diag {
				out[k] = vv
			}
			cmn.WriteErrStatus(w, err, http.StatusBadRequest)
		}
		return
	}
	stats.IncMigrate(provider)

	// the object is local now - replay the original request, streaming
	m.passThrough(w, r)
}

// isCandidate: only a GET/HEAD on an object path that does not itself carry
// migration-setup headers may trigger a migration.
func (m *Migrator) isCandidate(r *http.Request, segs []string) bool {
	if len(segs) != 4 {
		return false
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	return r.Header.Get(apc.HdrMigrationProvider) == ""
}

// migrate fetches the object from the external source and persists it
// locally. Any driver or upload failure comes back as *cmn.ErrMigration.
func (m *Migrator) migrate(r *http.Request, objName string, md cos.StrKVs) error {
	provider := md[apc.MDMigrationProvider]
	driver, err := m.registry.Resolve(md)
	if err != nil {
		return cmn.NewErrMigration(provider, objName, err)
	}
	defer driver.Finalize()

	res, err := driver.GetObject(objName)
	if err != nil {
		return cmn.NewErrMigration(provider, objName, err)
	}
	if res.Reader == nil {
		return cmn.NewErrMigration(provider, objName, errors.New("object does not exist at the source"))
	}
	if m.validate != nil {
		if err := m.validate(objName, res.Size); err != nil {
			return err
		}
	}

	putReq := m.buildUpload(r, res, md)
	putResp := cmn.NewSubResponse(0)
	m.next.ServeHTTP(putResp, putReq)
	if !putResp.Success() {
		err := cmn.NewErrHTTP(putResp.Status(), "failed to create local object")
		return cmn.NewErrMigration(provider, objName, err)
	}
	return nil
}

// buildUpload synthesizes the local PUT: driver metadata becomes object user
// metadata, import provenance goes to sysmeta, and the object timestamp is
// capped at the source's so a migrated object never appears newer than
// intended.
func (m *Migrator) buildUpload(r *http.Request, res *backend.ObjResult, md cos.StrKVs) *http.Request {
	putReq := cmn.NewSubRequest(r, http.MethodPut, r.URL.Path, res.Reader, res.Size)
	hdr := putReq.Header
	cmn.RemoveHeaders(hdr, isConditional)
	if res.ContentType != "" {
		hdr.Set("Content-Type", res.ContentType)
	}
	for k, v := range res.Meta {
		if !cmn.IsObjMeta(k) {
			k = apc.ObjMetaPrefix + k
		}
		hdr.Set(k, v)
	}
	now := m.now()
	ts := now
	if !res.Timestamp.IsZero() {
		ts = cos.MinTime(now, res.Timestamp)
	}
	hdr.Set(apc.HdrTimestamp, cos.FormatUnixFloat(ts))
	hdr.Set(apc.HdrImportTime, cos.FormatUnixFloat(now))
	hdr.Set(apc.HdrImportSource, md[apc.MDMigrationProvider]+":"+md[apc.MDMigrationSource])
	return putReq
}

// containerMD reads the owning container's migration metadata via an
// internal HEAD sub-request.
func (m *Migrator) containerMD(r *http.Request, segs []string) (cos.StrKVs, error) {
	headReq := cmn.NewSubRequest(r, http.MethodHead, cmn.JoinPath(segs[0], segs[1], segs[2]), nil, 0)
	headResp := cmn.NewSubResponse(0)
	m.next.ServeHTTP(headResp, headReq)
	if !headResp.Success() {
		return nil, cmn.NewErrHTTP(headResp.Status(), "cannot stat container")
	}
	return cmn.MigrationSysmetaKV(headResp.Header()), nil
}

// passThrough forwards the request while still echoing persisted migration
// sysmeta back as user-visible headers.
func (m *Migrator) passThrough(w http.ResponseWriter, r *http.Request) {
	m.next.ServeHTTP(&echoWriter{w: w}, r)
}

// sysmetaEcho maps persisted X-Container-Sysmeta-Migration-* response
// headers back to their X-Container-Migration-* form.
func sysmetaEcho(h http.Header) http.Header {
	var echo http.Header
	for k, vv := range h {
		if strings.HasPrefix(k, apc.SysmetaMigrationPrefix) && len(vv) > 0 {
			if echo == nil {
				echo = make(http.Header)
			}
			echo.Set(apc.HdrMigrationPrefix+k[len(apc.SysmetaMigrationPrefix):], vv[0])
		}
	}
	return echo
}

// deferredWriter withholds the verdict on a migration candidate: headers
// accumulate in a side buffer until the downstream commits a status. A 404
// stays buffered for the orchestrator to act on; any other status is flushed
// to the client (with sysmeta echo) and the body streams through without
// being held in memory.
type deferredWriter struct {
	w        http.ResponseWriter
	buf      *cmn.SubResponse
	decided  bool
	streamed bool
}

func (dw *deferredWriter) Header() http.Header { return dw.buf.Header() }

func (dw *deferredWriter) WriteHeader(status int) {
	if dw.decided {
		return
	}
	dw.decided = true
	if status == http.StatusNotFound {
		dw.buf.WriteHeader(status)
		return
	}
	out := dw.w.Header()
	for k, vv := range dw.buf.Header() {
		out[k] = vv
	}
	for k, vv := range sysmetaEcho(dw.buf.Header()) {
		out[k] = vv
	}
	dw.streamed = true
	dw.w.WriteHeader(status)
}

func (dw *deferredWriter) Write(p []byte) (int, error) {
	if !dw.decided {
		dw.WriteHeader(http.StatusOK)
	}
	if dw.streamed {
		return dw.w.Write(p)
	}
	return dw.buf.Write(p)
}

// echoWriter rewrites headers on the fly for streamed (non-buffered)
// responses.
type echoWriter struct {
	w           http.ResponseWriter
	wroteHeader bool
}

func (ew *echoWriter) Header() http.Header { return ew.w.Header() }

func (ew *echoWriter) WriteHeader(status int) {
	if !ew.wroteHeader {
		ew.wroteHeader = true
		for k, vv := range sysmetaEcho(ew.w.Header()) {
			ew.w.Header()[k] = vv
		}
	}
	ew.w.WriteHeader(status)
}

func (ew *echoWriter) Write(p []byte) (int, error) {
	if !ew.wroteHeader {
		ew.WriteHeader(http.StatusOK)
	}
	return ew.w.Write(p)
}

func isConditional(hdr string) bool {
	switch http.CanonicalHeaderKey(hdr) {
	case "Range", "If-Match", "If-None-Match", "If-Modified-Since", "If-Unmodified-Since":
		return true
	}
	return false
}
