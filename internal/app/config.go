package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teecraft/storefront/internal/data/db"
	"github.com/teecraft/storefront/internal/platform/envutil"
	"github.com/teecraft/storefront/internal/platform/gcp"
	"github.com/teecraft/storefront/internal/platform/logger"
	"github.com/teecraft/storefront/internal/snapshot"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port        string `yaml:"port"`
	LogMode     string `yaml:"log_mode"`
	ServiceName string `yaml:"service_name"`
	AutoMigrate bool   `yaml:"auto_migrate"`

	JWTSecretKey    string        `yaml:"jwt_secret_key"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`

	DB DBConfig `yaml:"db"`

	SnapshotMode string        `yaml:"snapshot_mode"`
	SnapshotPath string        `yaml:"snapshot_path"`
	SnapshotTTL  time.Duration `yaml:"snapshot_ttl"`

	RedisAddr    string `yaml:"redis_addr"`
	RedisChannel string `yaml:"redis_channel"`

	ProfileRetryAttempts int           `yaml:"profile_retry_attempts"`
	ProfileRetryDelay    time.Duration `yaml:"profile_retry_delay"`

	ObjectStorageMode     string `yaml:"object_storage_mode"`
	ProductImageBucket    string `yaml:"product_image_bucket"`
	ProductImageCDNDomain string `yaml:"product_image_cdn_domain"`
	StorageEmulatorHost   string `yaml:"storage_emulator_host"`
	StoragePublicBaseURL  string `yaml:"storage_public_base_url"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	SecureCookies      bool     `yaml:"secure_cookies"`
}

type DBConfig struct {
	Driver           string `yaml:"driver"`
	SQLitePath       string `yaml:"sqlite_path"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresName     string `yaml:"postgres_name"`
}

func (c DBConfig) ToDB() db.Config {
	return db.Config{
		Driver:           c.Driver,
		SQLitePath:       c.SQLitePath,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
	}
}

func DefaultConfig() Config {
	return Config{
		Port:            "8080",
		LogMode:         "development",
		ServiceName:     "storefront",
		AutoMigrate:     true,
		JWTSecretKey:    defaultJWTSecret,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		DB: DBConfig{
			Driver:       db.DriverSQLite,
			SQLitePath:   "storefront.db",
			PostgresHost: "localhost",
			PostgresPort: "5432",
			PostgresUser: "postgres",
			PostgresName: "storefront",
		},
		SnapshotMode:         snapshot.ModeBolt,
		SnapshotPath:         "snapshots.db",
		RedisChannel:         "storefront.auth",
		ProfileRetryAttempts: 3,
		ProfileRetryDelay:    time.Second,
	}
}

// LoadConfig layers defaults, the YAML file named by STOREFRONT_CONFIG (or
// path when set) and environment variables, in that order.
func LoadConfig(log *logger.Logger, path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = envutil.String("STOREFRONT_CONFIG", "", log)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg, log)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, log *logger.Logger) {
	cfg.Port = envutil.String("PORT", cfg.Port, log)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode, log)
	cfg.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.ServiceName, log)
	cfg.AutoMigrate = envutil.Bool("AUTO_MIGRATE", cfg.AutoMigrate)

	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey, log)
	cfg.AccessTokenTTL = envutil.Seconds("ACCESS_TOKEN_TTL", cfg.AccessTokenTTL, log)
	cfg.RefreshTokenTTL = envutil.Seconds("REFRESH_TOKEN_TTL", cfg.RefreshTokenTTL, log)

	cfg.DB.Driver = envutil.String("DB_DRIVER", cfg.DB.Driver, log)
	cfg.DB.SQLitePath = envutil.String("SQLITE_PATH", cfg.DB.SQLitePath, log)
	cfg.DB.PostgresHost = envutil.String("POSTGRES_HOST", cfg.DB.PostgresHost, log)
	cfg.DB.PostgresPort = envutil.String("POSTGRES_PORT", cfg.DB.PostgresPort, log)
	cfg.DB.PostgresUser = envutil.String("POSTGRES_USER", cfg.DB.PostgresUser, log)
	cfg.DB.PostgresPassword = envutil.String("POSTGRES_PASSWORD", cfg.DB.PostgresPassword, log)
	cfg.DB.PostgresName = envutil.String("POSTGRES_NAME", cfg.DB.PostgresName, log)

	cfg.SnapshotMode = envutil.String("SNAPSHOT_MODE", cfg.SnapshotMode, log)
	cfg.SnapshotPath = envutil.String("SNAPSHOT_PATH", cfg.SnapshotPath, log)
	cfg.SnapshotTTL = envutil.Seconds("SNAPSHOT_TTL", cfg.SnapshotTTL, log)
	cfg.RedisAddr = envutil.String("REDIS_ADDR", cfg.RedisAddr, log)
	cfg.RedisChannel = envutil.String("REDIS_CHANNEL", cfg.RedisChannel, log)

	cfg.ProfileRetryAttempts = envutil.Int("PROFILE_RETRY_ATTEMPTS", cfg.ProfileRetryAttempts, log)
	cfg.ProfileRetryDelay = time.Duration(envutil.Int("PROFILE_RETRY_DELAY_MS", int(cfg.ProfileRetryDelay/time.Millisecond), log)) * time.Millisecond

	cfg.ObjectStorageMode = envutil.String("OBJECT_STORAGE_MODE", cfg.ObjectStorageMode, log)
	cfg.ProductImageBucket = envutil.String("PRODUCT_IMAGE_BUCKET", cfg.ProductImageBucket, log)
	cfg.ProductImageCDNDomain = envutil.String("PRODUCT_IMAGE_CDN_DOMAIN", cfg.ProductImageCDNDomain, log)
	cfg.StorageEmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", cfg.StorageEmulatorHost, log)
	cfg.StoragePublicBaseURL = envutil.String("STORAGE_PUBLIC_BASE_URL", cfg.StoragePublicBaseURL, log)

	if origins := envutil.List("CORS_ALLOWED_ORIGINS"); len(origins) > 0 {
		cfg.CORSAllowedOrigins = origins
	}
	cfg.SecureCookies = envutil.Bool("SECURE_COOKIES", cfg.SecureCookies)
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER=%q (allowed: %q, %q)", c.DB.Driver, db.DriverPostgres, db.DriverSQLite)
	}
	switch c.SnapshotMode {
	case snapshot.ModeBolt, snapshot.ModeMemory:
	case snapshot.ModeRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("SNAPSHOT_MODE=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("invalid SNAPSHOT_MODE=%q (allowed: %q, %q, %q)", c.SnapshotMode, snapshot.ModeBolt, snapshot.ModeRedis, snapshot.ModeMemory)
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY must not be empty")
	}
	if c.LogMode == "production" && c.JWTSecretKey == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET_KEY must be set in production")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.ProfileRetryAttempts < 1 {
		return fmt.Errorf("PROFILE_RETRY_ATTEMPTS must be at least 1")
	}
	if c.ProfileRetryDelay < 0 {
		return fmt.Errorf("PROFILE_RETRY_DELAY_MS must not be negative")
	}
	_, err := c.ImageStore()
	return err
}

// ImageStore resolves the product image bucket settings.
func (c Config) ImageStore() (gcp.ImageStoreConfig, error) {
	mode, err := gcp.ParseObjectStorageMode(c.ObjectStorageMode, c.StorageEmulatorHost)
	if err != nil {
		return gcp.ImageStoreConfig{}, err
	}
	cfg := gcp.ImageStoreConfig{
		Mode:          mode,
		Bucket:        strings.TrimSpace(c.ProductImageBucket),
		CDNDomain:     strings.TrimSpace(c.ProductImageCDNDomain),
		EmulatorHost:  strings.TrimSpace(c.StorageEmulatorHost),
		PublicBaseURL: strings.TrimSpace(c.StoragePublicBaseURL),
	}
	return cfg, cfg.Validate()
}
