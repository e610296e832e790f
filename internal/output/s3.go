package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options configures an S3-compatible destination
type S3Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// Prefix is prepended to every object key, usually <name>/<version>
	Prefix string
	Force  bool
	DryRun bool
}

// S3Writer writes a standalone bindle to an S3-compatible bucket
type S3Writer struct {
	client *minio.Client
	bucket string
	region string
	prefix string
	force  bool
	dryRun bool

	initOnce     sync.Once
	initErr      error
	bucketExists bool
}

// NewS3Writer creates a new S3 writer
func NewS3Writer(opts S3Options) (*S3Writer, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3 endpoint is required")
	}
	access := strings.TrimSpace(opts.AccessKey)
	secret := strings.TrimSpace(opts.SecretKey)
	if access == "" || secret == "" {
		return nil, errors.New("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: opts.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Writer{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(strings.TrimSpace(opts.Prefix), "/"),
		force:  opts.Force,
		dryRun: opts.DryRun,
	}, nil
}

// Location returns the s3:// URL of the bindle root
func (s *S3Writer) Location() string {
	if s.prefix == "" {
		return "s3://" + s.bucket
	}
	return "s3://" + s.bucket + "/" + s.prefix
}

// ensureBucket creates the bucket on first use. Dry runs only look.
func (s *S3Writer) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = fmt.Errorf("ensure bucket: %w", err)
			return
		}
		if exists || s.dryRun {
			s.bucketExists = exists
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			s.initErr = fmt.Errorf("ensure bucket: %w", err)
			return
		}
		s.bucketExists = true
	})
	return s.initErr
}

func (s *S3Writer) objectKey(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *S3Writer) objectExists(ctx context.Context, key string) (bool, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return false, err
	}
	if !s.bucketExists {
		return false, nil
	}

	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return false, nil
	}
	return false, err
}

// HasParcel reports whether the parcel object exists. With force set every
// parcel is re-uploaded.
func (s *S3Writer) HasParcel(ctx context.Context, digest string) (bool, error) {
	if s.force {
		return false, s.ensureBucket(ctx)
	}
	return s.objectExists(ctx, s.objectKey(parcelKey(digest)))
}

// WriteParcel uploads parcel bytes under parcels/<digest>.dat
func (s *S3Writer) WriteParcel(ctx context.Context, digest string, r io.Reader, size int64) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	if s.dryRun {
		return nil
	}

	_, err := s.client.PutObject(ctx, s.bucket, s.objectKey(parcelKey(digest)), r, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("upload parcel %s: %w", digest, err)
	}
	return nil
}

// WriteInvoice uploads invoice.toml. An existing invoice is an error unless
// force is set.
func (s *S3Writer) WriteInvoice(ctx context.Context, data []byte) error {
	key := s.objectKey(InvoiceFileName)
	if !s.force {
		exists, err := s.objectExists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: s3://%s/%s", ErrInvoiceExists, s.bucket, key)
		}
	} else if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	if s.dryRun {
		return nil
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/toml",
	})
	if err != nil {
		return fmt.Errorf("upload invoice: %w", err)
	}
	return nil
}

// Ensure S3Writer implements Sink
var _ Sink = (*S3Writer)(nil)
