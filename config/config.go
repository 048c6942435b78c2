// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers    = []string{"sqlite", "postgres"}
	validAlgorithms = []string{"HS256", "HS384", "HS512"}
)

// ErrMissingSecret is returned when no JWT secret was configured. The
// error message contains a freshly generated secret the operator can use.
var ErrMissingSecret = errors.New("no jwt secret configured")

type Config struct {
	App      AppConfig
	Host     HostConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Storage  StorageConfig
	S3       S3Config
	Minio    MinioConfig
	Upload   UploadConfig
	Security SecurityConfig
	Redis    RedisConfig
	Trash    TrashConfig
	Folders  FoldersConfig
}

type AppConfig struct {
	LogLevel string
	Env      string
}

type HostConfig struct {
	Address string
	Port    int
	CORS    []string
}

// Addr returns the address the HTTP server should bind to
func (h HostConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Address, h.Port)
}

type DatabaseConfig struct {
	Driver string
	URL    string
}

type JWTConfig struct {
	Secret    string
	Algorithm string
	Expire    time.Duration
}

type StorageConfig struct {
	Type      string
	LocalPath string
	// MaxUsage is the per-user quota in bytes. Zero disables the quota.
	MaxUsage int64
}

type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	// AccountID is only used by the r2 storage type
	AccountID string
}

type MinioConfig struct {
	Endpoint string
	UseSSL   bool
}

type UploadConfig struct {
	// MaxSize in bytes
	MaxSize int64
}

type SecurityConfig struct {
	RateLimit int
}

type RedisConfig struct {
	URL string
}

type TrashConfig struct {
	Retention time.Duration
}

type FoldersConfig struct {
	StrictTrash bool
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Load prepares everything config-related so that the app can
// start working. It reads flags from args, an optional config.toml
// file and the environment. An error is returned if something
// is critically wrong and the application can't run because of
// that.
func Load(args []string) (*Config, error) {
	v := viper.New()

	flags := pflag.NewFlagSet("drive-api", pflag.ContinueOnError)
	configPath := flags.String("config", ".", "Directory containing config.toml")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags, %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "LOG_LEVEL")
	v.BindEnv("app.env", "APP_ENV")

	v.BindEnv("host.address", "HOST")
	v.BindEnv("host.port", "PORT")
	v.BindEnv("host.cors", "FRONTEND_URL")

	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.url", "DATABASE_URL")

	v.BindEnv("jwt.secret", "SECRET_KEY")
	v.BindEnv("jwt.algorithm", "ALGORITHM")
	v.BindEnv("jwt.expire_minutes", "ACCESS_TOKEN_EXPIRE_MINUTES")

	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.local_path", "UPLOAD_DIR")
	v.BindEnv("storage.max_usage", "STORAGE_MAX_USAGE")

	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("s3.endpoint", "S3_ENDPOINT")

	v.BindEnv("cloudflare.account_id", "CLOUDFLARE_ACCOUNT_ID")

	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.use_ssl", "MINIO_USE_SSL")

	v.BindEnv("upload.max_size", "UPLOAD_MAX_SIZE")

	v.BindEnv("security.rate_limit", "RATE_LIMIT")

	v.BindEnv("redis.url", "REDIS_URL")

	v.BindEnv("trash.retention_days", "TRASH_RETENTION_DAYS")

	v.BindEnv("folders.strict_trash", "FOLDERS_STRICT_TRASH")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.env", "development")

	v.SetDefault("host.address", "0.0.0.0")
	v.SetDefault("host.port", 8000)
	v.SetDefault("host.cors", "http://localhost:3000")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "database.db")

	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.expire_minutes", 30)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("storage.max_usage", 0)

	v.SetDefault("s3.region", "us-east-1")

	v.SetDefault("upload.max_size", 100)

	v.SetDefault("security.rate_limit", 20)

	v.SetDefault("trash.retention_days", 0)

	v.SetDefault("folders.strict_trash", false)

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional, everything can come from the environment
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			LogLevel: v.GetString("app.log_level"),
			Env:      v.GetString("app.env"),
		},
		Host: HostConfig{
			Address: v.GetString("host.address"),
			Port:    v.GetInt("host.port"),
			CORS:    splitList(v.GetString("host.cors")),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("database.driver"),
			URL:    v.GetString("database.url"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("jwt.secret"),
			Algorithm: strings.ToUpper(v.GetString("jwt.algorithm")),
			Expire:    time.Duration(v.GetInt("jwt.expire_minutes")) * time.Minute,
		},
		Storage: StorageConfig{
			Type:      v.GetString("storage.type"),
			LocalPath: v.GetString("storage.local_path"),
			MaxUsage:  v.GetInt64("storage.max_usage") << 20,
		},
		S3: S3Config{
			Bucket:          v.GetString("s3.bucket"),
			Region:          v.GetString("s3.region"),
			AccessKeyID:     v.GetString("s3.access_key_id"),
			SecretAccessKey: v.GetString("s3.secret_access_key"),
			Endpoint:        v.GetString("s3.endpoint"),
			AccountID:       v.GetString("cloudflare.account_id"),
		},
		Minio: MinioConfig{
			Endpoint: v.GetString("minio.endpoint"),
			UseSSL:   v.GetBool("minio.use_ssl"),
		},
		Upload: UploadConfig{
			MaxSize: v.GetInt64("upload.max_size") << 20,
		},
		Security: SecurityConfig{
			RateLimit: v.GetInt("security.rate_limit"),
		},
		Redis: RedisConfig{
			URL: v.GetString("redis.url"),
		},
		Trash: TrashConfig{
			Retention: time.Duration(v.GetInt("trash.retention_days")) * 24 * time.Hour,
		},
		Folders: FoldersConfig{
			StrictTrash: v.GetBool("folders.strict_trash"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.Database.URL == "" {
		return errors.New("database url can't be empty")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("%w. Set SECRET_KEY or jwt.secret in config.toml, for example:\n\n%s", ErrMissingSecret, genSecret())
	}

	if !slices.Contains(validAlgorithms, c.JWT.Algorithm) {
		return errors.New("invalid jwt algorithm provided")
	}

	if c.JWT.Expire <= 0 {
		return errors.New("jwt.expire_minutes must be bigger than 0")
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if c.Storage.MaxUsage < 0 {
		return errors.New("storage.max_usage can't be negative")
	}

	if c.Security.RateLimit <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if c.Trash.Retention < 0 {
		return errors.New("trash.retention_days can't be negative")
	}

	switch c.Storage.Type {
	case "local":
		if c.Storage.LocalPath == "" {
			return errors.New("storage.local_path can't be empty")
		}
	case "s3", "r2", "minio":
		if c.S3.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
		if c.S3.AccessKeyID == "" {
			return errors.New("access key id can't be empty")
		}
		if c.S3.SecretAccessKey == "" {
			return errors.New("secret access key can't be empty")
		}
		if c.Storage.Type == "r2" && c.S3.AccountID == "" {
			return errors.New("account id can't be empty")
		}
		if c.Storage.Type == "minio" && c.Minio.Endpoint == "" {
			return errors.New("minio endpoint can't be empty")
		}
	default:
		return errors.New("invalid storage type provided")
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
