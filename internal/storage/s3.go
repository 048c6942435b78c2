package storage

import (
	cfgpkg "bitwise74/drive-api/config"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const (
	multipartChunk       = 6 << 20
	multipartConcurrency = 5
)

// S3 stores blobs in an S3 compatible bucket
type S3 struct {
	C        *s3.Client
	Bucket   *string
	uploader *manager.Uploader
}

// NewS3 connects to AWS S3, or any S3 compatible service when an endpoint is set
func NewS3(ctx context.Context, c cfgpkg.S3Config) (*S3, error) {
	return newS3(ctx, c, func(o *s3.Options) {
		o.Region = c.Region
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
}

// NewR2 connects to a Cloudflare R2 bucket
func NewR2(ctx context.Context, c cfgpkg.S3Config) (*S3, error) {
	return newS3(ctx, c, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID))
		o.Region = "auto"
	})
}

func newS3(ctx context.Context, c cfgpkg.S3Config, opts func(o *s3.Options)) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKeyID,
			c.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(c.Bucket)
	client := s3.NewFromConfig(cfg, opts)

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", c.Bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3{
		C:      client,
		Bucket: bucket,
		// The uploader buffers parts itself so request bodies don't need to be seekable
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.Concurrency = multipartConcurrency
			u.PartSize = multipartChunk
		}),
	}, nil
}

func (s *S3) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) (int64, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}

	body := &countingReader{r: r}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      s.Bucket,
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload object to S3, %w", err)
	}

	return body.n, nil
}

func (s *S3) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	out, err := s.C.GetObject(ctx, &s3.GetObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotExist
		}

		return nil, fmt.Errorf("failed to get object from S3, %w", err)
	}

	return out.Body, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	_, err := s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3, %w", err)
	}

	return nil
}
