package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
	// ObjectStorageModeDisabled keeps product image keys as plain URLs.
	ObjectStorageModeDisabled ObjectStorageMode = "disabled"
)

type ImageStoreConfig struct {
	Mode          ObjectStorageMode
	Bucket        string
	CDNDomain     string
	EmulatorHost  string
	PublicBaseURL string
}

func ParseObjectStorageMode(raw string, emulatorHost string) (ObjectStorageMode, error) {
	switch mode := ObjectStorageMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		if strings.TrimSpace(emulatorHost) != "" {
			return ObjectStorageModeGCSEmulator, nil
		}
		return ObjectStorageModeDisabled, nil
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator, ObjectStorageModeDisabled:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q)", raw, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator, ObjectStorageModeDisabled)
	}
}

func (cfg ImageStoreConfig) Validate() error {
	if cfg.Mode == ObjectStorageModeDisabled {
		return nil
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return fmt.Errorf("object storage mode %q requires PRODUCT_IMAGE_BUCKET", cfg.Mode)
	}
	if cfg.Mode != ObjectStorageModeGCSEmulator {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(cfg.EmulatorHost))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", cfg.EmulatorHost)
	}
	return nil
}
