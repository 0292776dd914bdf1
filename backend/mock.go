// Package backend contains migration source drivers and their registry.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package backend

import (
	"bytes"
	"io"
	"time"

	"github.com/NVIDIA/aisgate/cmn/cos"
	"github.com/pkg/errors"
)

// MockDriver is an in-memory Driver for tests. A single instance is shared
// across resolutions so tests can count driver invocations.
type (
	MockObject struct {
		Meta        cos.StrKVs
		ContentType string
		Timestamp   time.Time
		Body        []byte
	}

	MockDriver struct {
		Objects map[string]MockObject
		Err     error // returned by GetObject when set

		// captured at resolution time
		Source string
		Params cos.StrKVs

		GetCalls      int
		FinalizeCalls int
	}
)

// interface guard
var _ Driver = (*MockDriver)(nil)

// NewMockFactory returns a Factory resolving to the given shared instance.
func NewMockFactory(d *MockDriver) Factory {
	return func(source string, params cos.StrKVs) (Driver, error) {
		d.Source, d.Params = source, params
		return d, nil
	}
}

func (d *MockDriver) GetObject(name string) (*ObjResult, error) {
	d.GetCalls++
	if d.Err != nil {
		return nil, errors.WithStack(d.Err)
	}
	obj, ok := d.Objects[name]
	if !ok {
		return &ObjResult{Meta: cos.StrKVs{}}, nil
	}
	return &ObjResult{
		Meta:        obj.Meta,
		Reader:      io.NopCloser(bytes.NewReader(obj.Body)),
		ContentType: obj.ContentType,
		Timestamp:   obj.Timestamp,
		Size:        int64(len(obj.Body)),
	}, nil
}

func (d *MockDriver) Finalize() { d.FinalizeCalls++ }
