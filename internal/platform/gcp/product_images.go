package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
)

// ImageStore holds product photos. Keys are object names inside the bucket.
type ImageStore interface {
	Upload(dbc dbctx.Context, key string, file io.Reader) error
	Delete(dbc dbctx.Context, key string) error
	PublicURL(key string) string
}

type imageStore struct {
	log    *logger.Logger
	client *storage.Client
	cfg    ImageStoreConfig
}

func NewImageStore(ctx context.Context, log *logger.Logger, cfg ImageStoreConfig) (ImageStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	storeLog := log.With("service", "ProductImageStore")
	if cfg.Mode == ObjectStorageModeDisabled {
		storeLog.Info("Object storage disabled, product image keys are served as-is")
		return &imageStore{log: storeLog, cfg: cfg}, nil
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	storeLog.Info("Object storage initialized", "mode", cfg.Mode, "bucket", cfg.Bucket, "emulator_host", cfg.EmulatorHost)
	return &imageStore{log: storeLog, client: client, cfg: cfg}, nil
}

func newStorageClient(ctx context.Context, cfg ImageStoreConfig) (*storage.Client, error) {
	if cfg.Mode == ObjectStorageModeGCSEmulator {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(cfg.EmulatorHost, "/"))
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := clientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func clientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func (s *imageStore) Upload(dbc dbctx.Context, key string, file io.Reader) error {
	if s.client == nil {
		return fmt.Errorf("object storage disabled")
	}
	ctx, cancel := context.WithTimeout(dbc.Ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.cfg.Bucket).Object(normalizeKey(key)).NewWriter(ctx)
	w.ContentType = contentTypeForKey(key)
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write product image: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close product image writer: %w", err)
	}
	return nil
}

func (s *imageStore) Delete(dbc dbctx.Context, key string) error {
	if s.client == nil {
		return fmt.Errorf("object storage disabled")
	}
	err := s.client.Bucket(s.cfg.Bucket).Object(normalizeKey(key)).Delete(dbc.Ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("failed to delete product image: %w", err)
	}
	return nil
}

// PublicURL maps an object key to a browser-loadable URL. Absolute URLs and
// site-relative paths pass through untouched.
func (s *imageStore) PublicURL(key string) string {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	if s.cfg.Mode == ObjectStorageModeDisabled {
		return key
	}
	key = normalizeKey(key)
	if s.cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cfg.CDNDomain, key)
	}
	if s.cfg.Mode == ObjectStorageModeGCSEmulator {
		base := strings.TrimRight(strings.TrimSpace(s.cfg.PublicBaseURL), "/")
		if base == "" {
			base = strings.TrimRight(strings.TrimSpace(s.cfg.EmulatorHost), "/")
		}
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(s.cfg.Bucket), url.PathEscape(key))
	}
	if s.cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.PublicBaseURL, "/"), s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.cfg.Bucket, key)
}

func normalizeKey(key string) string {
	return strings.TrimLeft(strings.TrimSpace(key), "/")
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
