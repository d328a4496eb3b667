package archive

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const awsEndpoint = "s3.amazonaws.com"

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool

	// PublicBaseURL, when set, is the prefix for returned object URLs
	// (CDN or custom domain). Otherwise URLs point at the endpoint.
	PublicBaseURL string
}

// MinioArchiver uploads recordings to S3-compatible storage.
type MinioArchiver struct {
	client *minio.Client
	cfg    Config
}

func NewMinioArchiver(cfg Config) (*MinioArchiver, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = awsEndpoint
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return &MinioArchiver{client: client, cfg: cfg}, nil
}

// EnsureBucket creates bucket when it does not exist yet.
func (a *MinioArchiver) EnsureBucket(ctx context.Context, bucket string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := a.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: a.cfg.Region}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// Upload puts the file at localPath under bucket/key and returns its URL.
func (a *MinioArchiver) Upload(ctx context.Context, localPath, bucket, key string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType(key)}
	if _, err := a.client.FPutObject(ctx, bucket, key, localPath, opts); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return PublicURL(a.cfg, bucket, key), nil
}

// PublicURL renders the address of an archived object. AWS gets the
// virtual-hosted form https://<bucket>.s3.amazonaws.com/<key>; other
// endpoints get path style.
func PublicURL(cfg Config, bucket, key string) string {
	escapedKey := escapeKey(key)
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/") + "/" + escapedKey
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = awsEndpoint
	}
	if endpoint == awsEndpoint {
		return fmt.Sprintf("%s://%s.%s/%s", scheme, bucket, endpoint, escapedKey)
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, bucket, escapedKey)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func contentType(key string) string {
	switch ext := strings.ToLower(path.Ext(key)); ext {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}
