// Package blobstore provides an optional S3-compatible sink for serialized
// graph streams. The engine itself never touches object storage; a caller
// that wants durable persistence serializes with hnsw.GraphEngine.SerializeGraph
// and pushes the resulting bytes here, or pulls them back before
// hnsw.DeserializeGraph.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/arborist-labs/hnswgraph/pkg/logging"
)

// Store pushes and pulls named objects to an S3-compatible bucket.
type Store struct {
	client *s3.Client
	bucket string
	region string
	log    logging.Logger
}

// Config configures a Store.
type Config struct {
	Bucket          string // S3 bucket name
	Region          string // AWS region
	AccessKeyID     string // optional static credential
	SecretAccessKey string // optional static credential
	Endpoint        string // custom endpoint, for MinIO/LocalStack-compatible backends
}

// DefaultConfig returns a Config pointed at a placeholder bucket; callers
// are expected to override Bucket and Region.
func DefaultConfig() *Config {
	return &Config{
		Bucket: "hnsw-graphs",
		Region: "us-east-1",
	}
}

// New creates a Store and checks whether the bucket is reachable. An
// unreachable bucket is logged as a warning; it does not make New fail.
func New(ctx context.Context, cfg *Config, logger logging.Logger) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	var awsCfg aws.Config
	var err error
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretAccessKey, "",
			)),
		)
	} else {
		awsCfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		logger.Warn("bucket not accessible", logging.Field{Key: "bucket", Value: cfg.Bucket}, logging.Field{Key: "error", Value: err.Error()})
	}

	logger.Info("blobstore initialized", logging.Field{Key: "bucket", Value: cfg.Bucket}, logging.Field{Key: "region", Value: cfg.Region})

	return &Store{client: client, bucket: cfg.Bucket, region: cfg.Region, log: logger}, nil
}

// Push uploads the bytes read from r under key, for a serialized graph
// stream produced by GraphEngine.SerializeGraph.
func (s *Store) Push(ctx context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read serialized graph: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	s.log.Info("graph pushed to blobstore",
		logging.Field{Key: "bucket", Value: s.bucket},
		logging.Field{Key: "key", Value: key},
		logging.Field{Key: "bytes", Value: len(data)},
	)
	return nil
}

// Pull downloads the object named key, for handing to GraphEngine.DeserializeGraph.
func (s *Store) Pull(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}

	s.log.Info("graph pulled from blobstore",
		logging.Field{Key: "bucket", Value: s.bucket},
		logging.Field{Key: "key", Value: key},
	)
	return result.Body, nil
}

// Delete removes a previously pushed graph object.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present in the bucket.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, nil
	}
	return true, nil
}

// ObjectKey builds a time-ordered key for a serialized graph snapshot.
func ObjectKey(prefix string, at time.Time) string {
	return fmt.Sprintf("%s/%s.hnsw", prefix, at.UTC().Format("20060102T150405Z"))
}
