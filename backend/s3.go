//go:build aws

// Package backend contains migration source drivers and their registry.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package backend

import (
	"context"
	"io"
	"strings"

	"github.com/NVIDIA/aisgate/cmn/cos"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
)

const s3Linked = true

// Driver parameters (resolved from container metadata and/or static registry
// configuration). All optional: absent credentials fall back to the default
// chain, absent endpoint means AWS proper.
const (
	S3RegionParam    = "region"
	S3EndpointParam  = "endpoint"
	S3AccessKeyParam = "access-key"
	S3SecretKeyParam = "secret-key"
)

// s3Driver migrates objects from an S3-compatible store; the migration
// source is the bucket name.
type s3Driver struct {
	client *s3.Client
	bucket string
	body   io.ReadCloser
}

// interface guard
var _ Driver = (*s3Driver)(nil)

func NewS3Driver(source string, params cos.StrKVs) (Driver, error) {
	if source == "" {
		return nil, errors.New("migration source (bucket) is empty")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region := params[S3RegionParam]; region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	if ak := params[S3AccessKeyParam]; ak != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(ak, params[S3SecretKeyParam], "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load S3 configuration")
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := params[S3EndpointParam]; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &s3Driver{client: client, bucket: source}, nil
}

func (d *s3Driver) GetObject(name string) (*ObjResult, error) {
	out, err := d.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var errNoKey *types.NoSuchKey
		if errors.As(err, &errNoKey) {
			return &ObjResult{Meta: cos.StrKVs{}}, nil
		}
		return nil, errors.Wrapf(err, "failed to GET %s/%s", d.bucket, name)
	}
	d.body = out.Body
	res := &ObjResult{
		Meta:   make(cos.StrKVs, len(out.Metadata)),
		Reader: out.Body,
	}
	for k, v := range out.Metadata {
		res.Meta[strings.ToLower(k)] = v
	}
	if out.ContentLength != nil {
		res.Size = *out.ContentLength
	}
	if out.ContentType != nil {
		res.ContentType = *out.ContentType
	}
	if out.LastModified != nil {
		res.Timestamp = *out.LastModified
	}
	return res, nil
}

func (d *s3Driver) Finalize() {
	if d.body != nil {
		d.body.Close()
		d.body = nil
	}
}
