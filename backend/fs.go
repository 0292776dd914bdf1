// Package backend contains migration source drivers and their registry.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package backend

import (
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/NVIDIA/aisgate/cmn/cos"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// FSParentPathParam is the static registry parameter naming the root under
// which every filesystem migration source must live.
const FSParentPathParam = "parent_path"

// fileDriver migrates objects straight from a local (or mounted) filesystem.
// The migration source from container metadata is treated as a sub-folder of
// the configured parent path.
type fileDriver struct {
	dir string
	fh  *os.File
}

// interface guard
var _ Driver = (*fileDriver)(nil)

func NewFileDriver(source string, params cos.StrKVs) (Driver, error) {
	root := params[FSParentPathParam]
	if !isValidPath(root) {
		return nil, errors.Errorf("%s %q is invalid", FSParentPathParam, root)
	}
	if !isValidPath(source) {
		return nil, errors.Errorf("migration source %q is invalid", source)
	}
	return &fileDriver{dir: filepath.Join(root, strings.TrimPrefix(source, "/"))}, nil
}

func isValidPath(path string) bool {
	return strings.TrimSpace(path) != "" && !strings.Contains(path, "..")
}

func (d *fileDriver) GetObject(name string) (*ObjResult, error) {
	fpath := filepath.Join(d.dir, name)
	finfo, err := os.Stat(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to access object in file system")
	}
	if finfo.IsDir() {
		return &ObjResult{Meta: cos.StrKVs{}}, nil
	}
	md := cos.StrKVs{}
	if sys, ok := finfo.Sys().(*syscall.Stat_t); ok {
		md["uid"] = strconv.FormatUint(uint64(sys.Uid), 10)
		md["gid"] = strconv.FormatUint(uint64(sys.Gid), 10)
	}
	readXattrs(fpath, md)
	fh, err := os.Open(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open object in file system")
	}
	d.fh = fh
	return &ObjResult{
		Meta:        md,
		Reader:      fh,
		ContentType: mime.TypeByExtension(filepath.Ext(fpath)),
		Timestamp:   finfo.ModTime(),
		Size:        finfo.Size(),
	}, nil
}

const (
	maxXattrSize    = 4096
	userXattrPrefix = "user."
)

// readXattrs merges the file's user extended attributes into the object
// metadata. Filesystems without xattr support (and unreadable attributes)
// are tolerated silently.
func readXattrs(fpath string, md cos.StrKVs) {
	buf := make([]byte, maxXattrSize)
	n, err := unix.Listxattr(fpath, buf)
	if err != nil || n <= 0 {
		return
	}
	for _, name := range strings.Split(strings.TrimRight(string(buf[:n]), "\x00"), "\x00") {
		if !strings.HasPrefix(name, userXattrPrefix) {
			continue
		}
		val := make([]byte, maxXattrSize)
		vn, err := unix.Getxattr(fpath, name, val)
		if err != nil || vn < 0 {
			continue
		}
		md[strings.TrimPrefix(name, userXattrPrefix)] = string(val[:vn])
	}
}

func (d *fileDriver) Finalize() {
	if d.fh != nil {
		d.fh.Close()
		d.fh = nil
	}
}
