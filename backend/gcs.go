//go:build gcp

// Package backend contains migration source drivers and their registry.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package backend

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/NVIDIA/aisgate/cmn/cos"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

const gcsLinked = true

// GCSCredsFileParam optionally points at a service-account JSON key; without
// it the client uses Application Default Credentials.
const GCSCredsFileParam = "credentials-file"

// gcsDriver migrates objects from Google Cloud Storage; the migration source
// is the bucket name.
type gcsDriver struct {
	client *storage.Client
	bucket string
	rc     *storage.Reader
}

// interface guard
var _ Driver = (*gcsDriver)(nil)

func NewGCSDriver(source string, params cos.StrKVs) (Driver, error) {
	if source == "" {
		return nil, errors.New("migration source (bucket) is empty")
	}
	var opts []option.ClientOption
	if creds := params[GCSCredsFileParam]; creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCS client")
	}
	return &gcsDriver{client: client, bucket: source}, nil
}

func (d *gcsDriver) GetObject(name string) (*ObjResult, error) {
	var (
		ctx = context.Background()
		obj = d.client.Bucket(d.bucket).Object(name)
	)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return &ObjResult{Meta: cos.StrKVs{}}, nil
		}
		return nil, errors.Wrapf(err, "failed to HEAD %s/%s", d.bucket, name)
	}
	rc, err := obj.NewReader(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to GET %s/%s", d.bucket, name)
	}
	d.rc = rc
	res := &ObjResult{
		Meta:        make(cos.StrKVs, len(attrs.Metadata)),
		Reader:      rc,
		ContentType: attrs.ContentType,
		Timestamp:   attrs.Updated,
		Size:        attrs.Size,
	}
	for k, v := range attrs.Metadata {
		res.Meta[k] = v
	}
	return res, nil
}

func (d *gcsDriver) Finalize() {
	if d.rc != nil {
		d.rc.Close()
		d.rc = nil
	}
	d.client.Close()
}
