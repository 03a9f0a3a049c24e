package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config carries the connection settings for S3-compatible storage.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3ConfigFromEnv reads the MESHCLEAN_S3_* environment variables
func S3ConfigFromEnv() S3Config {
	useSSL := true
	if raw := strings.TrimSpace(os.Getenv("MESHCLEAN_S3_USE_SSL")); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			useSSL = parsed
		}
	}

	return S3Config{
		Endpoint:  strings.TrimSpace(os.Getenv("MESHCLEAN_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("MESHCLEAN_S3_REGION")), "us-east-1"),
		AccessKey: strings.TrimSpace(os.Getenv("MESHCLEAN_S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("MESHCLEAN_S3_SECRET_KEY")),
		UseSSL:    useSSL,
	}
}

// Bucket is a FileSet over one prefix of an S3-compatible bucket.
type Bucket struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewBucket connects to S3-compatible object storage
func NewBucket(cfg S3Config, bucket, prefix string) (*Bucket, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required (set MESHCLEAN_S3_ENDPOINT)")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials are required (set MESHCLEAN_S3_ACCESS_KEY and MESHCLEAN_S3_SECRET_KEY)")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &Bucket{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (b *Bucket) key(name string) string {
	return path.Join(b.prefix, name)
}

// List returns the object names directly under the prefix, sorted
func (b *Bucket) List(ctx context.Context) ([]string, error) {
	prefix := ""
	if b.prefix != "" {
		prefix = b.prefix + "/"
	}

	var names []string
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", b.bucket, prefix, obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		// Non-recursive listings report sub-prefixes with a trailing slash.
		if name == "" || strings.HasSuffix(name, "/") || strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

// Open opens the named object for reading
func (b *Bucket) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, b.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject defers the request; surface missing objects here.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("failed to open s3://%s/%s: %w", b.bucket, b.key(name), err)
	}
	return obj, nil
}

// Create starts a streaming upload of the named object. The object becomes
// visible only when Close returns without error.
func (b *Bucket) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	u := &upload{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := b.client.PutObject(ctx, b.bucket, b.key(name), pr, -1, minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
		pr.CloseWithError(err)
		u.done <- err
	}()

	return u, nil
}

// upload pumps writes into a background PutObject
type upload struct {
	pw   *io.PipeWriter
	done chan error
	once sync.Once
	err  error
}

func (u *upload) Write(p []byte) (int, error) {
	return u.pw.Write(p)
}

func (u *upload) Close() error {
	u.once.Do(func() {
		if err := u.pw.Close(); err != nil {
			u.err = err
			return
		}
		u.err = <-u.done
	})
	return u.err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
