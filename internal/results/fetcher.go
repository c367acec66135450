package results

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectNotFound reports a result object that no longer exists in the
// store (expired or deleted).
var ErrObjectNotFound = errors.New("result object not found")

type client interface {
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Downloader retrieves persisted query result objects into local files.
type Downloader struct {
	client client
}

type Config struct {
	// Endpoint defaults to the regional S3 endpoint when empty.
	Endpoint string
	Region   string
	Profile  string
	UseSSL   bool
}

func New(cfg Config) (*Downloader, error) {
	mc, err := newMinioClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Downloader{client: mc}, nil
}

func NewWithClient(c client) (*Downloader, error) {
	if c == nil {
		return nil, fmt.Errorf("client is required")
	}
	return &Downloader{client: c}, nil
}

// Download streams the object at addr into destDir, deriving the local
// filename from the last key segment. The file is written to a temp path
// and renamed into place, so an existing file is either fully replaced
// or left untouched. Returns the absolute path of the written file.
func (d *Downloader) Download(ctx context.Context, addr Address, destDir string) (string, error) {
	filename, err := filenameFromKey(addr.Key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination directory %q: %w", destDir, err)
	}

	body, err := d.client.Get(ctx, addr.Bucket, addr.Key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return "", fmt.Errorf("object %s/%s: %w", addr.Bucket, addr.Key, ErrObjectNotFound)
		}
		return "", fmt.Errorf("get object %s/%s: %w", addr.Bucket, addr.Key, err)
	}
	defer func() { _ = body.Close() }()

	dest := filepath.Join(destDir, filename)
	tmp, err := os.CreateTemp(destDir, "."+filename+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file in %q: %w", destDir, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %q: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("rename into %q: %w", dest, err)
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", dest, err)
	}
	return abs, nil
}

func filenameFromKey(key string) (string, error) {
	if key == "" || strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("%w: key %q has no filename", ErrInvalidResultURI, key)
	}
	name := path.Base(key)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("%w: key %q has no filename", ErrInvalidResultURI, key)
	}
	return name, nil
}

func newMinioClient(cfg Config) (*minioClient, error) {
	endpoint, secure, err := resolveEndpoint(cfg)
	if err != nil {
		return nil, err
	}
	chain := []credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.FileAWSCredentials{Profile: strings.TrimSpace(cfg.Profile)},
		&credentials.IAM{},
	}
	clientImpl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewChainCredentials(chain),
		Secure: secure,
		Region: strings.TrimSpace(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &minioClient{client: clientImpl}, nil
}

func resolveEndpoint(cfg Config) (string, bool, error) {
	raw := strings.TrimSpace(cfg.Endpoint)
	if raw == "" {
		region := strings.TrimSpace(cfg.Region)
		if region == "" {
			return "", false, fmt.Errorf("region or endpoint is required")
		}
		return fmt.Sprintf("s3.%s.amazonaws.com", region), true, nil
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return "", false, fmt.Errorf("parse endpoint URL: %w", err)
		}
		if parsed.Host == "" {
			return "", false, fmt.Errorf("endpoint host is required")
		}
		return parsed.Host, parsed.Scheme == "https", nil
	}
	return raw, cfg.UseSSL, nil
}

type minioClient struct {
	client *minio.Client
}

func (m *minioClient) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, mapMinioErr(err)
	}
	return obj, nil
}

func mapMinioErr(err error) error {
	if err == nil {
		return nil
	}
	var response minio.ErrorResponse
	if errors.As(err, &response) {
		switch response.Code {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return ErrObjectNotFound
		}
	}
	return err
}
