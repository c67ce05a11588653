package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"shirodl/src/config"
)

// S3Store implements Store for S3/MinIO storage.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates an S3Store from an alias.
func NewS3Store(ctx context.Context, alias config.Alias) (*S3Store, error) {
	if alias.Bucket == "" {
		return nil, fmt.Errorf("alias has no bucket")
	}

	client, err := createS3Client(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}

	return &S3Store{
		client: client,
		bucket: alias.Bucket,
		prefix: alias.Prefix,
	}, nil
}

func (s3Store *S3Store) objectKey(key string) string {
	return s3Store.prefix + key
}

func createS3Client(ctx context.Context, alias config.Alias) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if alias.Region != "" {
		opts = append(opts, awsconfig.WithRegion(alias.Region))
	}

	if alias.NoSignRequest {
		opts = append(opts, awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	} else if alias.AccessKey != "" && alias.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(alias.AccessKey, alias.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	clientOpts := []func(*s3.Options){}
	if alias.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(alias.Endpoint)
			o.UsePathStyle = true // Required for MinIO.
		})
	}

	return s3.NewFromConfig(cfg, clientOpts...), nil
}

// Put uploads content to S3.
func (s3Store *S3Store) Put(ctx context.Context, key string, reader io.Reader) error {
	_, err := s3Store.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s3Store.bucket),
		Key:    aws.String(s3Store.objectKey(key)),
		Body:   reader,
	})
	if err != nil {
		return fmt.Errorf("putting object: %w", err)
	}

	return nil
}

// Exists checks if the object exists in S3.
func (s3Store *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s3Store.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s3Store.bucket),
		Key:    aws.String(s3Store.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("head object: %w", err)
	}

	return true, nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	// HeadObject errors carry no body, so some backends only expose the status.
	return strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "404")
}
