// Package publish uploads a build output directory to S3 or an
// S3-compatible store.
//
//	client, _ := publish.NewS3Client(cfg.Publish.S3)
//	p := publish.New(client, cfg.Publish.S3.Bucket, cfg.Publish.S3.Prefix)
//	res, err := p.Publish(ctx, cfg.OutputPath())
//
// Fingerprinted assets are uploaded with a one year immutable cache policy;
// everything else must be revalidated, so new HTML is picked up at once.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/ssg/internal/config"
	"github.com/vango-dev/ssg/pkg/assets"
)

// Cache-Control values.
const (
	CacheImmutable  = "public, max-age=31536000, immutable"
	CacheRevalidate = "public, max-age=0, must-revalidate"
)

// DefaultConcurrency is the number of parallel uploads.
const DefaultConcurrency = 8

// PutObjectAPI is the part of the S3 client Publisher uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads files.
type Publisher struct {
	Client      PutObjectAPI
	Bucket      string
	Prefix      string
	Concurrency int
	Logger      *slog.Logger
}

// New creates a Publisher.
func New(client PutObjectAPI, bucket, prefix string) *Publisher {
	return &Publisher{
		Client:      client,
		Bucket:      bucket,
		Prefix:      strings.Trim(prefix, "/"),
		Concurrency: DefaultConcurrency,
		Logger:      slog.Default(),
	}
}

// Result summarizes an upload.
type Result struct {
	Files int
	Bytes int64
}

// NewS3Client creates a client from cfg. Credentials come from the
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN
// environment variables. A custom endpoint switches to path-style
// addressing for S3-compatible stores.
func NewS3Client(cfg config.S3Config) (*s3.Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("publish: bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(envCredentials()),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts), nil
}

func envCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		id := os.Getenv("AWS_ACCESS_KEY_ID")
		secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
		if id == "" || secret == "" {
			return aws.Credentials{}, errors.New("publish: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}, nil
	})
}

// Key returns the object key for a file relative to the output directory.
func (p *Publisher) Key(rel string) string {
	rel = filepath.ToSlash(rel)
	if p.Prefix == "" {
		return rel
	}
	return path.Join(p.Prefix, rel)
}

// ContentType guesses a file's content type from its extension.
func ContentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// CacheControl returns the cache policy for a file.
func CacheControl(name string) string {
	if assets.IsFingerprinted(name) {
		return CacheImmutable
	}
	return CacheRevalidate
}

// Publish uploads every regular file under dir. The first failed upload
// cancels the rest.
func (p *Publisher) Publish(ctx context.Context, dir string) (Result, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("publish: scan %s: %w", dir, err)
	}

	limit := p.Concurrency
	if limit < 1 {
		limit = DefaultConcurrency
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var count atomic.Int64
	var size atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, file := range files {
		g.Go(func() error {
			rel, err := filepath.Rel(dir, file)
			if err != nil {
				return err
			}
			n, err := p.upload(gctx, file, p.Key(rel))
			if err != nil {
				return fmt.Errorf("publish: upload %s: %w", rel, err)
			}
			count.Add(1)
			size.Add(n)
			logger.Debug("uploaded", "key", p.Key(rel), "bytes", n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{Files: int(count.Load()), Bytes: size.Load()}, err
	}
	return Result{Files: int(count.Load()), Bytes: size.Load()}, nil
}

func (p *Publisher) upload(ctx context.Context, file, key string) (int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	_, err = p.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(ContentType(key)),
		CacheControl:  aws.String(CacheControl(key)),
	})
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
