package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// S3API is the part of the S3 client the media store needs
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	Bucket        string
	Region        string
	Prefix        string
	Endpoint      string // S3 compatible endpoint, path-style addressing when set
	PublicBaseURL string // defaults to the virtual-hosted bucket URL
}

// S3Store keeps images in a bucket. Object keys carry no extension so the
// public id read back from a URL is the key suffix.
type S3Store struct {
	client  S3API
	bucket  string
	prefix  string
	baseURL string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, cfg), nil
}

func NewS3StoreWithClient(client S3API, cfg S3Config) *S3Store {
	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *S3Store) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := s.prefix + uuid.NewString()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}

	log.Info().Str("bucket", s.bucket).Str("key", key).Msg("Uploaded image to S3")
	return s.baseURL + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, publicID string) error {
	key := s.prefix + publicID
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}
