// Package copier implements server-side object copy.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package copier

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NVIDIA/aisgate/api/apc"
	"github.com/NVIDIA/aisgate/cmn"
	"github.com/NVIDIA/aisgate/tools/tassert"
)

type (
	stubObj struct {
		body []byte
		hdr  http.Header
	}

	putRecord struct {
		path string
		hdr  http.Header
		body []byte
	}

	// backendStub stands in for the proxied object store: it serves GETs from
	// a canned object map, records PUTs, and answers OPTIONS with a fixed
	// Allow list.
	backendStub struct {
		objects   map[string]stubObj
		puts      []putRecord
		gets      []*http.Request
		putStatus int
		allow     string
	}
)

func (b *backendStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		b.gets = append(b.gets, r.Clone(r.Context()))
		obj, ok := b.objects[r.URL.Path]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		for k, vv := range obj.hdr {
			w.Header()[k] = vv
		}
		w.WriteHeader(http.StatusOK)
		w.Write(obj.body)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		b.puts = append(b.puts, putRecord{path: r.URL.Path, hdr: r.Header.Clone(), body: body})
		status := b.putStatus
		if status == 0 {
			status = http.StatusCreated
		}
		w.WriteHeader(status)
	case http.MethodOptions:
		if b.allow != "" {
			w.Header().Set("Allow", b.allow)
			w.Header().Set("Access-Control-Allow-Methods", b.allow)
		}
		w.WriteHeader(http.StatusOK)
	default:
		http.Error(w, "not allowed", http.StatusMethodNotAllowed)
	}
}

func newTestCopier(b *backendStub, maxSize int64) *Copier {
	return New(b, &cmn.Config{MaxObjectSize: maxSize})
}

func srcHeaders(kv map[string]string) http.Header {
	h := http.Header{}
	for k, v := range kv {
		h.Set(k, v)
	}
	return h
}

func TestCopyPut(t *testing.T) {
	backend := &backendStub{objects: map[string]stubObj{
		"/v1/a/c1/o1": {
			body: []byte("payload"),
			hdr: srcHeaders(map[string]string{
				"Content-Type":        "application/octet-stream",
				"Etag":                "e1",
				"Last-Modified":       "Mon, 02 Jan 2006 15:04:05 GMT",
				"X-Object-Meta-Color": "red",
			}),
		},
	}}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest(http.MethodPut, "/v1/a/c2/o2", nil)
	r.Header.Set(apc.HdrCopyFrom, "c1/o1")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Fatalf(t, rec.Code == http.StatusCreated, "got status %d", rec.Code)
	tassert.Fatalf(t, len(backend.gets) == 1 && len(backend.puts) == 1, "got %d gets, %d puts", len(backend.gets), len(backend.puts))

	get := backend.gets[0]
	tassert.Errorf(t, get.URL.Path == "/v1/a/c1/o1", "source fetched from %q", get.URL.Path)
	tassert.Errorf(t, get.Header.Get(apc.HdrNewest) == "true", "source fetch must request the newest replica")
	tassert.Errorf(t, get.Header.Get(apc.HdrStoragePolicyIndex) == "", "policy override must not reach the source")

	put := backend.puts[0]
	tassert.Errorf(t, put.path == "/v1/a/c2/o2", "sink written to %q", put.path)
	tassert.Errorf(t, string(put.body) == "payload", "sink body %q", put.body)
	tassert.Errorf(t, put.hdr.Get(apc.HdrCopyFrom) == "", "copy-source header leaked to the sink")
	tassert.Errorf(t, put.hdr.Get("Etag") == "e1", "source etag not forwarded")
	tassert.Errorf(t, put.hdr.Get("Content-Type") == "application/octet-stream", "source content type not used as fallback")
	tassert.Errorf(t, put.hdr.Get("X-Object-Meta-Color") == "red", "source metadata not carried")

	tassert.Errorf(t, rec.Header().Get(apc.HdrCopiedFrom) == "c1/o1", "got %q", rec.Header().Get(apc.HdrCopiedFrom))
	tassert.Errorf(t, rec.Header().Get(apc.HdrCopiedFromAccount) == "a", "got %q", rec.Header().Get(apc.HdrCopiedFromAccount))
	tassert.Errorf(t, rec.Header().Get(apc.HdrCopiedFromLastModified) != "", "last-modified provenance missing")
	tassert.Errorf(t, rec.Header().Get("X-Object-Meta-Color") == "red", "final metadata not reflected")
}

func TestCopyPutNonZeroBody(t *testing.T) {
	backend := &backendStub{}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest(http.MethodPut, "/v1/a/c/o", strings.NewReader("abc"))
	r.Header.Set(apc.HdrCopyFrom, "c1/o1")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Errorf(t, rec.Code == http.StatusBadRequest, "got status %d", rec.Code)
	tassert.Errorf(t, len(backend.gets)+len(backend.puts) == 0, "no sub-requests expected")
}

func TestCopyVerbNonZeroBody(t *testing.T) {
	backend := &backendStub{}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest("COPY", "/v1/a/c1/o1", strings.NewReader("abc"))
	r.Header.Set(apc.HdrDestination, "c2/o2")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Errorf(t, rec.Code == http.StatusBadRequest, "got status %d", rec.Code)
	tassert.Errorf(t, len(backend.gets)+len(backend.puts) == 0, "no sub-requests expected")
}

func TestCopyBadCopyFrom(t *testing.T) {
	c := newTestCopier(&backendStub{}, 1<<20)

	for _, v := range []string{"justcontainer", "container/", "/o"} {
		r := httptest.NewRequest(http.MethodPut, "/v1/a/c/o", nil)
		r.Header.Set(apc.HdrCopyFrom, v)
		rec := httptest.NewRecorder()
		c.ServeHTTP(rec, r)
		tassert.Errorf(t, rec.Code == http.StatusPreconditionFailed, "X-Copy-From %q: got status %d", v, rec.Code)
	}
}

func TestCopyVerb(t *testing.T) {
	backend := &backendStub{objects: map[string]stubObj{
		"/v1/a/c1/o1": {body: []byte("x"), hdr: srcHeaders(nil)},
	}}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest("COPY", "/v1/a/c1/o1", nil)
	r.Header.Set(apc.HdrDestination, "c2/o2")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Fatalf(t, rec.Code == http.StatusCreated, "got status %d", rec.Code)
	tassert.Fatalf(t, len(backend.puts) == 1, "got %d puts", len(backend.puts))
	put := backend.puts[0]
	tassert.Errorf(t, put.path == "/v1/a/c2/o2", "sink written to %q", put.path)
	tassert.Errorf(t, put.hdr.Get(apc.HdrDestination) == "", "Destination header leaked to the sink")
}

func TestCopyVerbMissingDestination(t *testing.T) {
	backend := &backendStub{}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest("COPY", "/v1/a/c1/o1", nil)
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Errorf(t, rec.Code == http.StatusPreconditionFailed, "got status %d", rec.Code)
	tassert.Errorf(t, len(backend.gets)+len(backend.puts) == 0, "no sub-requests expected")
}

func TestCopyVerbCrossAccount(t *testing.T) {
	backend := &backendStub{objects: map[string]stubObj{
		"/v1/a1/c1/o1": {body: []byte("x"), hdr: srcHeaders(nil)},
	}}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest("COPY", "/v1/a1/c1/o1", nil)
	r.Header.Set(apc.HdrDestination, "c2/o2")
	r.Header.Set(apc.HdrDestinationAccount, "a2")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Fatalf(t, rec.Code == http.StatusCreated, "got status %d", rec.Code)
	tassert.Fatalf(t, len(backend.gets) == 1 && len(backend.puts) == 1, "got %d gets, %d puts", len(backend.gets), len(backend.puts))
	tassert.Errorf(t, backend.gets[0].URL.Path == "/v1/a1/c1/o1", "source fetched from %q", backend.gets[0].URL.Path)
	tassert.Errorf(t, backend.puts[0].path == "/v1/a2/c2/o2", "sink written to %q", backend.puts[0].path)
	tassert.Errorf(t, rec.Header().Get(apc.HdrCopiedFromAccount) == "a1", "got %q", rec.Header().Get(apc.HdrCopiedFromAccount))
}

func TestCopyTooLarge(t *testing.T) {
	backend := &backendStub{objects: map[string]stubObj{
		"/v1/a/c1/big": {body: []byte("0123456789"), hdr: srcHeaders(nil)},
	}}
	c := newTestCopier(backend, 8)

	r := httptest.NewRequest(http.MethodPut, "/v1/a/c2/o2", nil)
	r.Header.Set(apc.HdrCopyFrom, "c1/big")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Errorf(t, rec.Code == http.StatusRequestEntityTooLarge, "got status %d", rec.Code)
	tassert.Errorf(t, len(backend.puts) == 0, "oversized source must not be written")
}

func TestCopySourceMissing(t *testing.T) {
	backend := &backendStub{}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest(http.MethodPut, "/v1/a/c2/o2", nil)
	r.Header.Set(apc.HdrCopyFrom, "c1/nope")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Errorf(t, rec.Code == http.StatusNotFound, "got status %d", rec.Code)
	tassert.Errorf(t, len(backend.puts) == 0, "failed fetch must not be written")
}

func TestCopySinkFailure(t *testing.T) {
	backend := &backendStub{
		objects: map[string]stubObj{
			"/v1/a/c1/o1": {body: []byte("x"), hdr: srcHeaders(nil)},
		},
		putStatus: http.StatusServiceUnavailable,
	}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest(http.MethodPut, "/v1/a/c2/o2", nil)
	r.Header.Set(apc.HdrCopyFrom, "c1/o1")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Errorf(t, rec.Code == http.StatusServiceUnavailable, "got status %d", rec.Code)
	tassert.Errorf(t, rec.Header().Get(apc.HdrCopiedFrom) == "", "provenance headers on a failed copy")
}

func TestCopyMetadataMerge(t *testing.T) {
	backend := &backendStub{objects: map[string]stubObj{
		"/v1/a/c1/o1": {
			body: []byte("x"),
			hdr: srcHeaders(map[string]string{
				"X-Object-Meta-Color":     "red",
				"X-Object-Meta-Size":      "small",
				"X-Object-Sysmeta-Origin": "src",
			}),
		},
	}}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest(http.MethodPut, "/v1/a/c2/o2", nil)
	r.Header.Set(apc.HdrCopyFrom, "c1/o1")
	r.Header.Set("X-Object-Meta-Color", "blue")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Fatalf(t, len(backend.puts) == 1, "got %d puts", len(backend.puts))
	hdr := backend.puts[0].hdr
	tassert.Errorf(t, hdr.Get("X-Object-Meta-Color") == "blue", "client metadata must win, got %q", hdr.Get("X-Object-Meta-Color"))
	tassert.Errorf(t, hdr.Get("X-Object-Meta-Size") == "small", "source metadata lost")
	tassert.Errorf(t, hdr.Get("X-Object-Sysmeta-Origin") == "src", "source system metadata lost")
}

func TestCopyFreshMetadata(t *testing.T) {
	backend := &backendStub{objects: map[string]stubObj{
		"/v1/a/c1/o1": {
			body: []byte("x"),
			hdr: srcHeaders(map[string]string{
				"X-Object-Meta-Color":     "red",
				"X-Object-Sysmeta-Origin": "src",
			}),
		},
	}}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest(http.MethodPut, "/v1/a/c2/o2", nil)
	r.Header.Set(apc.HdrCopyFrom, "c1/o1")
	r.Header.Set(apc.HdrFreshMetadata, "true")
	r.Header.Set("X-Object-Meta-Client", "c")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Fatalf(t, len(backend.puts) == 1, "got %d puts", len(backend.puts))
	hdr := backend.puts[0].hdr
	tassert.Errorf(t, hdr.Get("X-Object-Meta-Color") == "", "source user metadata must not be carried")
	tassert.Errorf(t, hdr.Get("X-Object-Meta-Client") == "", "client user metadata must be dropped")
	tassert.Errorf(t, hdr.Get("X-Object-Sysmeta-Origin") == "src", "source system metadata must be carried")
}

func TestCopyContentTypePrecedence(t *testing.T) {
	backend := &backendStub{objects: map[string]stubObj{
		"/v1/a/c1/o1": {
			body: []byte("x"),
			hdr:  srcHeaders(map[string]string{"Content-Type": "text/plain"}),
		},
	}}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest(http.MethodPut, "/v1/a/c2/o2", nil)
	r.Header.Set(apc.HdrCopyFrom, "c1/o1")
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Fatalf(t, len(backend.puts) == 1, "got %d puts", len(backend.puts))
	tassert.Errorf(t, backend.puts[0].hdr.Get("Content-Type") == "application/json",
		"client content type must win, got %q", backend.puts[0].hdr.Get("Content-Type"))
}

func TestPostAsCopy(t *testing.T) {
	backend := &backendStub{objects: map[string]stubObj{
		"/v1/a/c/o": {
			body: []byte("x"),
			hdr: srcHeaders(map[string]string{
				"X-Object-Meta-Old":       "v",
				"X-Object-Sysmeta-Origin": "src",
			}),
		},
	}}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest(http.MethodPost, "/v1/a/c/o", nil)
	r.Header.Set("X-Object-Meta-New", "n")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	// clients of the POST form expect 202, not the sink PUT's 201
	tassert.Errorf(t, rec.Code == http.StatusAccepted, "got status %d", rec.Code)
	tassert.Fatalf(t, len(backend.puts) == 1, "got %d puts", len(backend.puts))
	put := backend.puts[0]
	tassert.Errorf(t, put.path == "/v1/a/c/o", "must copy onto itself, got %q", put.path)
	tassert.Errorf(t, put.hdr.Get("X-Object-Sysmeta-Origin") == "src", "system metadata lost")
	tassert.Errorf(t, put.hdr.Get("X-Object-Meta-Old") == "", "stale user metadata carried over")
}

func TestPostAsCopyDisabled(t *testing.T) {
	backend := &backendStub{}
	off := false
	c := New(backend, &cmn.Config{MaxObjectSize: 1 << 20, ObjectPostAsCopy: &off})

	r := httptest.NewRequest(http.MethodPost, "/v1/a/c/o", nil)
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	// plain pass-through: the stub rejects POST
	tassert.Errorf(t, rec.Code == http.StatusMethodNotAllowed, "got status %d", rec.Code)
	tassert.Errorf(t, len(backend.puts) == 0, "no copy expected")
}

func TestOptionsAugment(t *testing.T) {
	backend := &backendStub{allow: "GET, PUT, POST"}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest(http.MethodOptions, "/v1/a/c/o", nil)
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Errorf(t, rec.Header().Get("Allow") == "GET, PUT, POST, COPY", "got %q", rec.Header().Get("Allow"))
	tassert.Errorf(t, rec.Header().Get("Access-Control-Allow-Methods") == "GET, PUT, POST, COPY",
		"got %q", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestOptionsAugmentIdempotent(t *testing.T) {
	backend := &backendStub{allow: "GET, COPY"}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest(http.MethodOptions, "/v1/a/c/o", nil)
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Errorf(t, rec.Header().Get("Allow") == "GET, COPY", "got %q", rec.Header().Get("Allow"))
}

func TestOptionsNoAllow(t *testing.T) {
	backend := &backendStub{}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest(http.MethodOptions, "/v1/a/c/o", nil)
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Errorf(t, rec.Header().Get("Allow") == "", "empty Allow must stay empty, got %q", rec.Header().Get("Allow"))
}

func TestNonObjectPathPassThrough(t *testing.T) {
	backend := &backendStub{}
	c := newTestCopier(backend, 1<<20)

	r := httptest.NewRequest("COPY", "/v1/a/c", nil)
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	// container-level COPY is not ours; the stub rejects it
	tassert.Errorf(t, rec.Code == http.StatusMethodNotAllowed, "got status %d", rec.Code)
}

func TestCopyHookSubstitution(t *testing.T) {
	backend := &backendStub{objects: map[string]stubObj{
		"/v1/a/c1/manifest": {body: []byte("manifest-bytes"), hdr: srcHeaders(nil)},
	}}
	c := newTestCopier(backend, 1<<20)

	hook := Hook(func(_ *http.Request, srcResp *cmn.SubResponse, _ *http.Request) *cmn.SubResponse {
		sub := cmn.NewSubResponse(0)
		sub.WriteHeader(srcResp.Status())
		sub.Write([]byte("assembled-content"))
		return sub
	})
	r := httptest.NewRequest(http.MethodPut, "/v1/a/c2/o2", nil)
	r = r.WithContext(WithHook(r.Context(), hook))
	r.Header.Set(apc.HdrCopyFrom, "c1/manifest")
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, r)

	tassert.Fatalf(t, len(backend.puts) == 1, "got %d puts", len(backend.puts))
	tassert.Errorf(t, string(backend.puts[0].body) == "assembled-content", "got body %q", backend.puts[0].body)
}
